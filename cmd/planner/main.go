// cmd/planner/main.go
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/planning"
	"github.com/andresuchdata/stockcast/internal/report"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/repository/memory"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planner",
		Usage: "Compute a replenishment plan and export it as a workbook",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the planning engine against the database or a CSV snapshot directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Load the snapshot from CSV files in this directory instead of the database",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Plan as of this date (YYYY-MM-DD), defaults to today",
					},
					&cli.IntFlag{
						Name:    "horizon",
						Usage:   "Forecast horizon in days",
						Value:   planning.PlanningHorizonDays,
						EnvVars: []string{"PLAN_HORIZON_DAYS"},
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Path of the xlsx report to write",
						Value: "./plan.xlsx",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Also upload the report to the configured object storage",
					},
				},
				Action: runPlan,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runPlan(c *cli.Context) error {
	ctx := c.Context

	today := time.Now().UTC()
	if raw := c.String("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", raw, err)
		}
		today = parsed
	}

	cfg := config.Load()

	repo, cleanup, err := buildSnapshotRepo(c, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := repo.LoadSnapshot(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	engine := planning.NewEngine(planning.Config{
		HorizonDays:     c.Int("horizon"),
		ForecastOptions: forecast.DefaultOptions(),
	})
	plan, err := engine.Run(ctx, snap, today)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	log.Printf("plan computed: %d risks, %d actions, %d vendors, %d warnings",
		len(plan.Risks), len(plan.Actions), len(plan.Vendors), len(plan.Warnings))

	outPath := c.String("output")
	if err := report.WritePlanWorkbook(plan, outPath); err != nil {
		return err
	}
	log.Printf("report written to %s", outPath)

	if c.Bool("upload") {
		if err := uploadReport(ctx, cfg, plan, outPath); err != nil {
			return err
		}
	}

	return nil
}

func buildSnapshotRepo(c *cli.Context, cfg *config.Config) (repository.SnapshotRepository, func(), error) {
	if dir := c.String("data-dir"); dir != "" {
		repo, err := loadCSVSnapshot(dir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewSnapshotRepository(db), func() { db.Close() }, nil
}

func uploadReport(ctx context.Context, cfg *config.Config, plan *domain.PlanResult, outPath string) error {
	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage unavailable: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	key := fmt.Sprintf("plans/%s/%s", plan.Today.Format("2006-01-02"), filepath.Base(outPath))
	if err := store.UploadObject(ctx, key, data); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	log.Printf("report uploaded as %s", key)
	return nil
}

// loadCSVSnapshot reads a full snapshot from a directory of CSV exports.
// Only inventory.csv is required; the other files enrich the plan when
// present.
func loadCSVSnapshot(dir string) (*memory.SnapshotRepository, error) {
	repo := memory.NewSnapshotRepository()
	ctx := context.Background()

	items, err := readInventoryCSV(filepath.Join(dir, "inventory.csv"))
	if err != nil {
		return nil, err
	}
	if err := repo.UpsertInventoryItems(ctx, items); err != nil {
		return nil, err
	}

	if sales, err := readSalesCSV(filepath.Join(dir, "sales.csv")); err != nil {
		return nil, err
	} else if sales != nil {
		if err := repo.UpsertHistoricalSales(ctx, sales); err != nil {
			return nil, err
		}
	}

	boms, err := readBOMCSV(filepath.Join(dir, "bom.csv"))
	if err != nil {
		return nil, err
	}
	repo.SetBOMs(boms)

	vendors, err := readVendorsCSV(filepath.Join(dir, "vendors.csv"))
	if err != nil {
		return nil, err
	}
	repo.SetVendors(vendors)

	orders, err := readPurchaseOrdersCSV(filepath.Join(dir, "purchase_orders.csv"))
	if err != nil {
		return nil, err
	}
	repo.SetPurchaseOrders(orders)

	return repo, nil
}

func readInventoryCSV(path string) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := readCSV(path, true, func(row csvRow) error {
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
		return nil
	})
	return items, err
}

func readSalesCSV(path string) ([]domain.HistoricalSale, error) {
	var sales []domain.HistoricalSale
	err := readCSV(path, false, func(row csvRow) error {
		date, err := time.Parse("2006-01-02", row.str("date"))
		if err != nil {
			return fmt.Errorf("bad sale date %q: %w", row.str("date"), err)
		}
		sales = append(sales, domain.HistoricalSale{
			SKU:      row.str("sku"),
			Date:     date,
			Quantity: row.float("quantity"),
		})
		return nil
	})
	return sales, err
}

// readBOMCSV expects one component per line: finished_sku, component_sku,
// quantity. Lines are grouped into per-finished-good BOMs preserving file
// order.
func readBOMCSV(path string) ([]domain.BillOfMaterials, error) {
	var (
		order []string
		bySKU = make(map[string][]domain.BOMComponent)
	)
	err := readCSV(path, false, func(row csvRow) error {
		finished := row.str("finished_sku")
		if _, seen := bySKU[finished]; !seen {
			order = append(order, finished)
		}
		bySKU[finished] = append(bySKU[finished], domain.BOMComponent{
			SKU:      row.str("component_sku"),
			Quantity: row.float("quantity"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	boms := make([]domain.BillOfMaterials, 0, len(order))
	for _, sku := range order {
		boms = append(boms, domain.BillOfMaterials{
			FinishedSKU: sku,
			Components:  bySKU[sku],
		})
	}
	return boms, nil
}

func readVendorsCSV(path string) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	err := readCSV(path, false, func(row csvRow) error {
		vendors = append(vendors, domain.Vendor{
			ID:           row.str("id"),
			Name:         row.str("name"),
			LeadTimeDays: row.int("lead_time_days"),
		})
		return nil
	})
	return vendors, err
}

func readPurchaseOrdersCSV(path string) ([]domain.PurchaseOrder, error) {
	var orders []domain.PurchaseOrder
	err := readCSV(path, false, func(row csvRow) error {
		order, err := parsePurchaseOrder(row)
		if err != nil {
			return err
		}
		orders = append(orders, order)
		return nil
	})
	return orders, err
}

func parsePurchaseOrder(row csvRow) (domain.PurchaseOrder, error) {
	orderDate, err := time.Parse("2006-01-02", row.str("order_date"))
	if err != nil {
		return domain.PurchaseOrder{}, fmt.Errorf("bad order date %q: %w", row.str("order_date"), err)
	}

	order := domain.PurchaseOrder{
		ID:        row.str("id"),
		VendorID:  row.str("vendor_id"),
		Status:    row.str("status"),
		OrderDate: orderDate,
	}
	if raw := row.str("expected_date"); raw != "" {
		expected, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.PurchaseOrder{}, fmt.Errorf("bad expected date %q: %w", raw, err)
		}
		order.ExpectedDate = &expected
	}
	if raw := row.str("actual_receive_date"); raw != "" {
		actual, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.PurchaseOrder{}, fmt.Errorf("bad actual receive date %q: %w", raw, err)
		}
		order.ActualReceiveDate = &actual
	}
	if raw := row.str("total_amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.PurchaseOrder{}, fmt.Errorf("bad total amount %q: %w", raw, err)
		}
		order.TotalAmount = amount
	}
	return order, nil
}

// csvRow provides column-name access to one CSV record.
type csvRow struct {
	record []string
	cols   map[string]int
}

func (r csvRow) str(col string) string {
	if idx, ok := r.cols[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r csvRow) float(col string) float64 {
	val := r.str(col)
	if val == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(val, 64)
	return f
}

func (r csvRow) int(col string) int {
	return int(r.float(col))
}

// readCSV streams path through fn row by row. A missing file is an error only
// when required is set.
func readCSV(path string, required bool, fn func(csvRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read record of %s: %w", path, err)
		}
		if err := fn(csvRow{record: record, cols: cols}); err != nil {
			return err
		}
	}
}
