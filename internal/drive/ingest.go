package drive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IngestService parses sales and inventory exports pulled from Drive and
// writes them through the ingest repository.
type IngestService struct {
	driveService *Service
	repo         repository.IngestRepository
	onIngest     func(context.Context)
}

func NewIngestService(driveService *Service, repo repository.IngestRepository) *IngestService {
	return &IngestService{
		driveService: driveService,
		repo:         repo,
	}
}

// OnIngest registers a callback invoked after any successful ingest, e.g. to
// invalidate cached plans. Must be set before the service is used.
func (s *IngestService) OnIngest(fn func(context.Context)) {
	s.onIngest = fn
}

func (s *IngestService) notifyIngest(ctx context.Context) {
	if s.onIngest != nil {
		s.onIngest(ctx)
	}
}

// IngestSalesFile streams one sales CSV (columns: sku, date, quantity) from
// Drive into historical_sales.
func (s *IngestService) IngestSalesFile(ctx context.Context, fileID string) error {
	err := s.withFile(ctx, fileID, func(r *csv.Reader) error {
		return s.ingestSalesCSV(ctx, r)
	})
	if err != nil {
		return err
	}
	s.notifyIngest(ctx)
	return nil
}

// IngestInventoryFile streams one inventory CSV from Drive into
// inventory_items.
func (s *IngestService) IngestInventoryFile(ctx context.Context, fileID string) error {
	err := s.withFile(ctx, fileID, func(r *csv.Reader) error {
		return s.ingestInventoryCSV(ctx, r)
	})
	if err != nil {
		return err
	}
	s.notifyIngest(ctx)
	return nil
}

// SyncFolder downloads every CSV/XLSX export in the folder and ingests each
// one by filename convention: sales_*.csv into the sales log, inventory_*.csv
// into the item catalog. Unrecognized files are skipped with a warning.
func (s *IngestService) SyncFolder(ctx context.Context, folderID, downloadDir string) error {
	downloader := NewDownloader(s.driveService)
	paths, err := downloader.DownloadFolderCSV(ctx, DownloadOptions{
		FolderID:    folderID,
		DownloadDir: downloadDir,
	})
	if err != nil {
		return fmt.Errorf("download folder: %w", err)
	}

	for _, path := range paths {
		name := strings.ToLower(filepath.Base(path))
		switch {
		case strings.HasPrefix(name, "sales"):
			err = s.ingestLocalCSV(ctx, path, s.ingestSalesCSV)
		case strings.HasPrefix(name, "inventory"):
			err = s.ingestLocalCSV(ctx, path, s.ingestInventoryCSV)
		default:
			log.Warn().Str("file", name).Msg("unrecognized export, skipped")
			continue
		}
		if err != nil {
			return fmt.Errorf("ingest %s: %w", name, err)
		}
		log.Info().Str("file", name).Msg("export ingested")
	}

	s.notifyIngest(ctx)
	return nil
}

func (s *IngestService) withFile(ctx context.Context, fileID string, fn func(*csv.Reader) error) error {
	pr, pw := io.Pipe()
	go func() {
		err := s.driveService.DownloadFile(ctx, fileID, pw)
		pw.CloseWithError(err)
	}()

	return fn(csv.NewReader(pr))
}

func (s *IngestService) ingestLocalCSV(ctx context.Context, path string, fn func(context.Context, *csv.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return fn(ctx, csv.NewReader(f))
}

func (s *IngestService) ingestSalesCSV(ctx context.Context, reader *csv.Reader) error {
	cols, err := readHeader(reader, []string{"sku", "date", "quantity"})
	if err != nil {
		return err
	}

	const batchSize = 500
	batch := make([]domain.HistoricalSale, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertHistoricalSales(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := newRow(record, cols)
		date, err := time.Parse("2006-01-02", row.str("date"))
		if err != nil {
			return fmt.Errorf("bad sale date %q: %w", row.str("date"), err)
		}

		batch = append(batch, domain.HistoricalSale{
			SKU:      row.str("sku"),
			Date:     date,
			Quantity: row.float("quantity"),
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func (s *IngestService) ingestInventoryCSV(ctx context.Context, reader *csv.Reader) error {
	cols, err := readHeader(reader, []string{"sku", "name", "stock"})
	if err != nil {
		return err
	}

	var items []domain.InventoryItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := newRow(record, cols)
		item := domain.InventoryItem{
			SKU:              row.str("sku"),
			Name:             row.str("name"),
			Stock:            row.int("stock"),
			OnOrder:          row.int("on_order"),
			SalesLast30Days:  row.float("sales_last_30_days"),
			SalesLast90Days:  row.float("sales_last_90_days"),
			SalesLast180Days: row.float("sales_last_180_days"),
			LeadTimeDays:     row.int("lead_time_days"),
			ReorderPoint:     row.float("reorder_point"),
			MOQ:              row.int("moq"),
			VendorID:         row.str("vendor_id"),
		}
		if raw := row.str("unit_cost"); raw != "" {
			cost, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("bad unit cost %q for %s: %w", raw, item.SKU, err)
			}
			item.UnitCost = cost
		}
		items = append(items, item)
	}

	return s.repo.UpsertInventoryItems(ctx, items)
}

// row wraps one CSV record with typed, column-name access.
type row struct {
	record []string
	cols   map[string]int
}

func newRow(record []string, cols map[string]int) row {
	return row{record: record, cols: cols}
}

func (r row) str(col string) string {
	if idx, ok := r.cols[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) float(col string) float64 {
	val := r.str(col)
	if val == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(val, 64)
	return f
}

func (r row) int(col string) int {
	// Handle float strings like "1.0"
	return int(r.float(col))
}

func readHeader(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return cols, nil
}
