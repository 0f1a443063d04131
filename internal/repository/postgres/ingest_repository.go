package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
)

type ingestRepository struct {
	db *DB
}

// NewIngestRepository creates the postgres writer used by sync jobs.
func NewIngestRepository(db *DB) repository.IngestRepository {
	return &ingestRepository{db: db}
}

var _ repository.IngestRepository = (*ingestRepository)(nil)

func (r *ingestRepository) UpsertInventoryItems(ctx context.Context, items []domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (
			sku, name, stock, on_order,
			sales_last_30_days, sales_last_90_days, sales_last_180_days,
			lead_time_days, reorder_point, moq, vendor_id, unit_cost, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			stock = EXCLUDED.stock,
			on_order = EXCLUDED.on_order,
			sales_last_30_days = EXCLUDED.sales_last_30_days,
			sales_last_90_days = EXCLUDED.sales_last_90_days,
			sales_last_180_days = EXCLUDED.sales_last_180_days,
			lead_time_days = EXCLUDED.lead_time_days,
			reorder_point = EXCLUDED.reorder_point,
			moq = EXCLUDED.moq,
			vendor_id = EXCLUDED.vendor_id,
			unit_cost = EXCLUDED.unit_cost,
			updated_at = NOW()
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			if _, err := tx.ExecContext(ctx, query,
				item.SKU, item.Name, item.Stock, item.OnOrder,
				item.SalesLast30Days, item.SalesLast90Days, item.SalesLast180Days,
				item.LeadTimeDays, item.ReorderPoint, item.MOQ, item.VendorID, item.UnitCost,
			); err != nil {
				return fmt.Errorf("failed to upsert inventory item %s: %w", item.SKU, err)
			}
		}
		return nil
	})
}

// UpsertHistoricalSales writes daily sale totals. Re-ingesting the same
// export is idempotent: the (sku, sale_date) row is replaced, not added to.
func (r *ingestRepository) UpsertHistoricalSales(ctx context.Context, sales []domain.HistoricalSale) error {
	query := `
		INSERT INTO historical_sales (sku, sale_date, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (sku, sale_date)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, sale := range sales {
			if _, err := tx.ExecContext(ctx, query, sale.SKU, sale.Date, sale.Quantity); err != nil {
				return fmt.Errorf("failed to upsert sale %s/%s: %w",
					sale.SKU, sale.Date.Format("2006-01-02"), err)
			}
		}
		return nil
	})
}
