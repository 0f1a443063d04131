package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
)

// Sales older than this never influence the forecast, so the snapshot query
// does not load them.
const salesWindowDays = 180

type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates the postgres-backed snapshot loader.
func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

var _ repository.SnapshotRepository = (*snapshotRepository)(nil)

func (r *snapshotRepository) LoadSnapshot(ctx context.Context, today time.Time) (*domain.Snapshot, error) {
	if err := r.db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer r.db.sem.Release(1)

	snap := &domain.Snapshot{TakenAt: today}

	itemsQuery := `
		SELECT sku, name, stock, on_order,
		       sales_last_30_days, sales_last_90_days, sales_last_180_days,
		       lead_time_days, reorder_point, moq, vendor_id, unit_cost
		FROM inventory_items
		ORDER BY sku
	`
	if err := r.db.SelectContext(ctx, &snap.Items, itemsQuery); err != nil {
		return nil, fmt.Errorf("error loading inventory items: %w", err)
	}

	salesQuery := `
		SELECT sku, sale_date, quantity
		FROM historical_sales
		WHERE sale_date > $1 AND sale_date <= $2
		ORDER BY sku, sale_date
	`
	cutoff := today.AddDate(0, 0, -salesWindowDays)
	if err := r.db.SelectContext(ctx, &snap.Sales, salesQuery, cutoff, today); err != nil {
		return nil, fmt.Errorf("error loading historical sales: %w", err)
	}

	boms, err := r.loadBOMs(ctx)
	if err != nil {
		return nil, err
	}
	snap.BOMs = boms

	vendorsQuery := `SELECT id, name, lead_time_days FROM vendors ORDER BY id`
	if err := r.db.SelectContext(ctx, &snap.Vendors, vendorsQuery); err != nil {
		return nil, fmt.Errorf("error loading vendors: %w", err)
	}

	posQuery := `
		SELECT id, vendor_id, status, order_date, expected_date, actual_receive_date, total_amount
		FROM purchase_orders
		ORDER BY order_date, id
	`
	if err := r.db.SelectContext(ctx, &snap.PurchaseOrders, posQuery); err != nil {
		return nil, fmt.Errorf("error loading purchase orders: %w", err)
	}

	return snap, nil
}

// loadBOMs reads the flat component table and regroups it into per-finished
// BOM structs, preserving component order.
func (r *snapshotRepository) loadBOMs(ctx context.Context) ([]domain.BillOfMaterials, error) {
	query := `
		SELECT finished_sku, component_sku, quantity
		FROM bom_components
		ORDER BY finished_sku, position
	`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error loading bom components: %w", err)
	}
	defer rows.Close()

	var boms []domain.BillOfMaterials
	index := make(map[string]int)
	for rows.Next() {
		var finished, component string
		var quantity float64
		if err := rows.Scan(&finished, &component, &quantity); err != nil {
			return nil, fmt.Errorf("error scanning bom component: %w", err)
		}

		i, ok := index[finished]
		if !ok {
			i = len(boms)
			index[finished] = i
			boms = append(boms, domain.BillOfMaterials{FinishedSKU: finished})
		}
		boms[i].Components = append(boms[i].Components, domain.BOMComponent{
			SKU:      component,
			Quantity: quantity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bom components: %w", err)
	}

	return boms, nil
}
