package memory

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
)

// SnapshotRepository is an in-memory implementation backing tests and the
// CSV mode of the planner CLI.
type SnapshotRepository struct {
	mu   sync.RWMutex
	snap domain.Snapshot
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)
var _ repository.IngestRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates an empty in-memory repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

// NewSnapshotRepositoryFrom seeds the repository with a prepared snapshot.
func NewSnapshotRepositoryFrom(snap domain.Snapshot) *SnapshotRepository {
	return &SnapshotRepository{snap: snap}
}

func (r *SnapshotRepository) LoadSnapshot(_ context.Context, today time.Time) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Copy so callers can treat the snapshot as immutable.
	out := domain.Snapshot{
		Items:          append([]domain.InventoryItem(nil), r.snap.Items...),
		Sales:          append([]domain.HistoricalSale(nil), r.snap.Sales...),
		BOMs:           append([]domain.BillOfMaterials(nil), r.snap.BOMs...),
		Vendors:        append([]domain.Vendor(nil), r.snap.Vendors...),
		PurchaseOrders: append([]domain.PurchaseOrder(nil), r.snap.PurchaseOrders...),
		TakenAt:        today,
	}
	return &out, nil
}

func (r *SnapshotRepository) UpsertInventoryItems(_ context.Context, items []domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		replaced := false
		for i := range r.snap.Items {
			if r.snap.Items[i].SKU == item.SKU {
				r.snap.Items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			r.snap.Items = append(r.snap.Items, item)
		}
	}
	return nil
}

func (r *SnapshotRepository) UpsertHistoricalSales(_ context.Context, sales []domain.HistoricalSale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sale := range sales {
		replaced := false
		for i := range r.snap.Sales {
			if r.snap.Sales[i].SKU == sale.SKU && r.snap.Sales[i].Date.Equal(sale.Date) {
				r.snap.Sales[i] = sale
				replaced = true
				break
			}
		}
		if !replaced {
			r.snap.Sales = append(r.snap.Sales, sale)
		}
	}
	return nil
}

// SetBOMs replaces the BOM set.
func (r *SnapshotRepository) SetBOMs(boms []domain.BillOfMaterials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.BOMs = boms
}

// SetVendors replaces the vendor set.
func (r *SnapshotRepository) SetVendors(vendors []domain.Vendor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Vendors = vendors
}

// SetPurchaseOrders replaces the PO set.
func (r *SnapshotRepository) SetPurchaseOrders(orders []domain.PurchaseOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.PurchaseOrders = orders
}
