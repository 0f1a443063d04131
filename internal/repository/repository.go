// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// SnapshotRepository loads the immutable input set for one planning run.
// today bounds the sales history window.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, today time.Time) (*domain.Snapshot, error)
}

// IngestRepository persists rows arriving from sync jobs (Drive exports,
// CSV seeds). The planning engine never writes; only ingestion does.
type IngestRepository interface {
	UpsertInventoryItems(ctx context.Context, items []domain.InventoryItem) error
	UpsertHistoricalSales(ctx context.Context, sales []domain.HistoricalSale) error
}
