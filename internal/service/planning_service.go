package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/planning"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/rs/zerolog/log"
)

// PlanningService loads a snapshot, runs the planning engine over it, and
// caches the result. The engine itself stays pure; all I/O lives here.
type PlanningService struct {
	repo        repository.SnapshotRepository
	cache       cache.PlanCache
	engine      *planning.Engine
	horizonDays int
}

func NewPlanningService(repo repository.SnapshotRepository, cacheImpl cache.PlanCache, engine *planning.Engine, horizonDays int) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	if horizonDays <= 0 {
		horizonDays = planning.PlanningHorizonDays
	}
	return &PlanningService{
		repo:        repo,
		cache:       cacheImpl,
		engine:      engine,
		horizonDays: horizonDays,
	}
}

// CurrentPlan returns the plan for today's snapshot, computing it on a cache
// miss.
func (s *PlanningService) CurrentPlan(ctx context.Context, today time.Time) (*domain.PlanResult, error) {
	snap, err := s.repo.LoadSnapshot(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	fingerprint := cache.Fingerprint(snap, today, s.horizonDays)
	if plan, ok, err := s.cache.GetPlan(ctx, fingerprint); err == nil && ok {
		return plan, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("plan cache get failed")
	}

	plan, err := s.engine.Run(ctx, snap, today)
	if err != nil {
		return nil, fmt.Errorf("run planning engine: %w", err)
	}

	if err := s.cache.SetPlan(ctx, fingerprint, plan); err != nil {
		log.Warn().Err(err).Msg("plan cache set failed")
	}

	return plan, nil
}

// Forecast returns the forecast series for one SKU, or false when the SKU is
// unknown to the current plan.
func (s *PlanningService) Forecast(ctx context.Context, sku string, today time.Time) ([]domain.ForecastPoint, bool, error) {
	plan, err := s.CurrentPlan(ctx, today)
	if err != nil {
		return nil, false, err
	}
	fc, ok := plan.Forecasts[sku]
	return fc, ok, nil
}

// Invalidate drops every cached plan, e.g. after an ingest run changes the
// underlying data.
func (s *PlanningService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
