package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/planning"
	"github.com/andresuchdata/stockcast/internal/repository/memory"
)

// recordingCache counts hits and misses around a single stored plan.
type recordingCache struct {
	stored *domain.PlanResult
	gets   int
	sets   int
}

func (c *recordingCache) GetPlan(_ context.Context, _ string) (*domain.PlanResult, bool, error) {
	c.gets++
	if c.stored == nil {
		return nil, false, nil
	}
	return c.stored, true, nil
}

func (c *recordingCache) SetPlan(_ context.Context, _ string, result *domain.PlanResult) error {
	c.sets++
	c.stored = result
	return nil
}

func (c *recordingCache) InvalidateAll(_ context.Context) error {
	c.stored = nil
	return nil
}

func testSnapshot() domain.Snapshot {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var sales []domain.HistoricalSale
	for d := 1; d <= 60; d++ {
		sales = append(sales, domain.HistoricalSale{
			SKU:      "WIDGET",
			Date:     today.AddDate(0, 0, -d),
			Quantity: 3,
		})
	}
	return domain.Snapshot{
		Items: []domain.InventoryItem{
			{
				SKU:             "WIDGET",
				Name:            "Widget",
				Stock:           30,
				SalesLast30Days: 90,
				SalesLast90Days: 180,
				LeadTimeDays:    10,
				ReorderPoint:    20,
				VendorID:        "V1",
			},
		},
		Sales:   sales,
		Vendors: []domain.Vendor{{ID: "V1", Name: "Acme", LeadTimeDays: 10}},
	}
}

func newTestService(cache *recordingCache) *PlanningService {
	repo := memory.NewSnapshotRepositoryFrom(testSnapshot())
	engine := planning.NewEngine(planning.Config{Workers: 1})
	return NewPlanningService(repo, cache, engine, 0)
}

func TestCurrentPlanComputesAndCaches(t *testing.T) {
	cache := &recordingCache{}
	svc := newTestService(cache)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	plan, err := svc.CurrentPlan(context.Background(), today)
	if err != nil {
		t.Fatalf("CurrentPlan: %v", err)
	}
	if !plan.Today.Equal(today) {
		t.Errorf("plan today = %v, want %v", plan.Today, today)
	}
	if len(plan.Risks) == 0 {
		t.Error("expected at least one risk for a consuming item")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	again, err := svc.CurrentPlan(context.Background(), today)
	if err != nil {
		t.Fatalf("CurrentPlan (cached): %v", err)
	}
	if again != plan {
		t.Error("second call should return the cached plan")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets after hit = %d, want 1", cache.sets)
	}
}

func TestForecastLookup(t *testing.T) {
	svc := newTestService(&recordingCache{})
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	fc, ok, err := svc.Forecast(context.Background(), "WIDGET", today)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !ok {
		t.Fatal("expected forecast for known sku")
	}
	if len(fc) != planning.PlanningHorizonDays {
		t.Errorf("forecast length = %d, want %d", len(fc), planning.PlanningHorizonDays)
	}

	_, ok, err = svc.Forecast(context.Background(), "NOPE", today)
	if err != nil {
		t.Fatalf("Forecast unknown: %v", err)
	}
	if ok {
		t.Error("expected no forecast for unknown sku")
	}
}

func TestInvalidateDropsCachedPlan(t *testing.T) {
	cache := &recordingCache{}
	svc := newTestService(cache)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CurrentPlan(context.Background(), today); err != nil {
		t.Fatalf("CurrentPlan: %v", err)
	}
	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if cache.stored != nil {
		t.Error("expected cache to be emptied")
	}

	if _, err := svc.CurrentPlan(context.Background(), today); err != nil {
		t.Fatalf("CurrentPlan after invalidate: %v", err)
	}
	if cache.sets != 2 {
		t.Errorf("cache sets = %d, want 2 (recomputed after invalidate)", cache.sets)
	}
}
