package planning

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"golang.org/x/sync/errgroup"
)

// Config controls one engine instance.
type Config struct {
	// HorizonDays is the forecast length per SKU. Defaults to the planning
	// horizon.
	HorizonDays int
	// Workers bounds the per-SKU fan-out. Defaults to GOMAXPROCS.
	Workers         int
	ForecastOptions forecast.Options
}

// Engine runs the full forecasting and requirements-planning pipeline over
// one immutable snapshot. It holds no mutable state between runs; identical
// inputs produce identical outputs regardless of worker scheduling.
type Engine struct {
	generator   *forecast.Generator
	horizonDays int
	workers     int
}

// NewEngine creates an engine from the config, filling in defaults.
func NewEngine(cfg Config) *Engine {
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = PlanningHorizonDays
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		generator:   forecast.NewGenerator(cfg.ForecastOptions),
		horizonDays: horizon,
		workers:     workers,
	}
}

// Run computes risks, forecasts, suggested actions and vendor performance
// from the snapshot, relative to the injected today.
func (e *Engine) Run(ctx context.Context, snap *domain.Snapshot, today time.Time) (*domain.PlanResult, error) {
	today = startOfDay(today)

	items := snap.ItemBySKU()
	salesBySKU := snap.SalesBySKU()
	vendors := snap.VendorByID()

	skus := sortedItemSKUs(snap.Items)

	type skuResult struct {
		fc   []domain.ForecastPoint
		risk *domain.StockoutRisk
	}
	perSKU := make([]skuResult, len(skus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, sku := range skus {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := items[sku]
			trend := forecast.AnalyzeTrend(item.SalesLast30Days, item.SalesLast90Days, item.SalesLast180Days)
			perSKU[i].fc = e.generator.Generate(salesBySKU[sku], today, e.horizonDays)
			if risk, ok := ClassifyRisk(item, trend); ok {
				perSKU[i].risk = &risk
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	forecasts := make(map[string][]domain.ForecastPoint, len(skus))
	riskBySKU := make(map[string]domain.StockoutRisk)
	var risks []domain.StockoutRisk
	for i, sku := range skus {
		forecasts[sku] = perSKU[i].fc
		if r := perSKU[i].risk; r != nil {
			risks = append(risks, *r)
			riskBySKU[sku] = *r
		}
	}
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].DaysUntilStockout != risks[j].DaysUntilStockout {
			return risks[i].DaysUntilStockout < risks[j].DaysUntilStockout
		}
		return risks[i].SKU < risks[j].SKU
	})

	exploder := NewExploder(snap.BOMs)
	planner := NewPlanner(items, vendors, riskBySKU)

	finishedSKUs := sortedFinishedSKUs(snap.BOMs)

	type fgResult struct {
		requirements map[string][]domain.RequirementPoint
		warnings     []domain.PlanWarning
		build        *domain.SuggestedAction
	}
	perFG := make([]fgResult, len(finishedSKUs))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, fg := range finishedSKUs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fc := forecasts[fg]
			if fc == nil {
				// A finished good can have sales history without a catalog row.
				fc = e.generator.Generate(salesBySKU[fg], today, e.horizonDays)
			}
			perFG[i].requirements, perFG[i].warnings = exploder.Explode(fg, 1, fc)
			if item, ok := items[fg]; ok {
				if build, ok := planner.PlanFinishedGood(today, item, fc); ok {
					perFG[i].build = &build
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge requirement curves across finished goods so a shared component
	// triggers at most one requisition for its combined demand.
	merged := make(map[string][]domain.RequirementPoint)
	var warnings []domain.PlanWarning
	for _, fg := range perFG {
		warnings = append(warnings, fg.warnings...)
		for sku, curve := range fg.requirements {
			if existing, ok := merged[sku]; ok && len(existing) == len(curve) {
				for j := range curve {
					existing[j].Quantity += curve[j].Quantity
				}
				continue
			}
			copied := make([]domain.RequirementPoint, len(curve))
			copy(copied, curve)
			merged[sku] = copied
		}
	}

	actions, planWarnings := planner.PlanRawMaterials(today, merged)
	warnings = append(warnings, planWarnings...)
	for _, fg := range perFG {
		if fg.build != nil {
			actions = append(actions, *fg.build)
		}
	}
	SortActions(actions)

	return &domain.PlanResult{
		Today:     today,
		Risks:     risks,
		Forecasts: forecasts,
		Actions:   actions,
		Vendors:   ScoreVendors(snap.Vendors, snap.PurchaseOrders),
		Warnings:  warnings,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sortedItemSKUs(items []domain.InventoryItem) []string {
	skus := make([]string, 0, len(items))
	for _, it := range items {
		skus = append(skus, it.SKU)
	}
	sort.Strings(skus)
	return skus
}

func sortedFinishedSKUs(boms []domain.BillOfMaterials) []string {
	skus := make([]string, 0, len(boms))
	for _, b := range boms {
		skus = append(skus, b.FinishedSKU)
	}
	sort.Strings(skus)
	return skus
}
