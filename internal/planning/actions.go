package planning

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// PlanningHorizonDays bounds every depletion day-walk.
	PlanningHorizonDays = 90

	// Fallback look-back when a vendor's lead time is unknown, and the fixed
	// look-back for internal build orders.
	defaultVendorLeadTimeDays = 7
	buildLeadTimeDays         = 7

	// Replenishment targets 1.5x the reorder point.
	reorderCoverFactor = 1.5
)

// Planner turns requirement curves and forecasts into suggested purchase and
// build actions.
type Planner struct {
	items   map[string]domain.InventoryItem
	vendors map[string]domain.Vendor
	risks   map[string]domain.StockoutRisk
}

// NewPlanner creates an action planner over the snapshot lookups. risks is
// the classified risk per SKU and feeds action priorities.
func NewPlanner(items map[string]domain.InventoryItem, vendors map[string]domain.Vendor, risks map[string]domain.StockoutRisk) *Planner {
	return &Planner{items: items, vendors: vendors, risks: risks}
}

// PlanRawMaterials walks each raw material's requirement curve day by day
// and emits at most one REQUISITION per SKU, at the first day projected
// stock falls below the reorder point. SKUs are processed in sorted order so
// output never depends on map iteration.
func (p *Planner) PlanRawMaterials(today time.Time, requirements map[string][]domain.RequirementPoint) ([]domain.SuggestedAction, []domain.PlanWarning) {
	skus := make([]string, 0, len(requirements))
	for sku := range requirements {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var actions []domain.SuggestedAction
	var warnings []domain.PlanWarning

	for _, sku := range skus {
		item, ok := p.items[sku]
		if !ok {
			warnings = append(warnings, domain.PlanWarning{
				Code:    domain.WarnMissingItem,
				SKU:     sku,
				Message: fmt.Sprintf("no inventory record for required component %s; skipped", sku),
			})
			continue
		}

		if action, ok := p.planRequisition(today, item, requirements[sku]); ok {
			actions = append(actions, action)
		}
	}

	return actions, warnings
}

func (p *Planner) planRequisition(today time.Time, item domain.InventoryItem, curve []domain.RequirementPoint) (domain.SuggestedAction, bool) {
	if !item.HasVendor() {
		return domain.SuggestedAction{}, false
	}

	triggerDay, ok := firstShortfallDay(today, item, requirementByDate(curve))
	if !ok {
		return domain.SuggestedAction{}, false
	}
	triggerDate := today.AddDate(0, 0, triggerDay)

	quantity := item.MOQ
	if quantity <= 0 {
		quantity = int(math.Ceil(item.ReorderPoint * reorderCoverFactor))
	}
	if quantity <= 0 {
		return domain.SuggestedAction{}, false
	}

	lead := defaultVendorLeadTimeDays
	if vendor, ok := p.vendors[item.VendorID]; ok && vendor.LeadTimeDays > 0 {
		lead = vendor.LeadTimeDays
	}

	action := domain.SuggestedAction{
		Type:     domain.ActionRequisition,
		SKU:      item.SKU,
		Name:     item.Name,
		Quantity: quantity,
		Reason: fmt.Sprintf("projected stock falls below reorder point (%.0f) on %s",
			item.ReorderPoint, triggerDate.Format("2006-01-02")),
		ActionDate:    triggerDate.AddDate(0, 0, -lead),
		VendorID:      item.VendorID,
		Priority:      domain.RiskMedium,
		EstimatedCost: item.UnitCost.Mul(decimal.NewFromInt(int64(quantity))),
	}

	if risk, ok := p.risks[item.SKU]; ok {
		action.Priority = risk.RiskLevel
		action.LinkedRisk = risk.SKU
	}

	return action, true
}

// PlanFinishedGood runs the same depletion walk against the finished good's
// own forecast and emits a BUILD that replenishes to 1.5x the reorder point.
func (p *Planner) PlanFinishedGood(today time.Time, item domain.InventoryItem, fc []domain.ForecastPoint) (domain.SuggestedAction, bool) {
	demand := make(map[time.Time]float64, len(fc))
	for _, point := range fc {
		demand[point.Date] = point.Quantity
	}

	stock := float64(item.Stock)
	triggerDay := -1
	// Forecast points are dated from the day after today, so the walk runs
	// through day PlanningHorizonDays inclusive.
	for day := 0; day <= PlanningHorizonDays; day++ {
		stock -= demand[today.AddDate(0, 0, day)]
		if stock < item.ReorderPoint {
			triggerDay = day
			break
		}
	}
	if triggerDay < 0 {
		return domain.SuggestedAction{}, false
	}
	triggerDate := today.AddDate(0, 0, triggerDay)

	quantity := int(math.Ceil(item.ReorderPoint*reorderCoverFactor - stock))
	if quantity <= 0 {
		return domain.SuggestedAction{}, false
	}

	action := domain.SuggestedAction{
		Type:     domain.ActionBuild,
		SKU:      item.SKU,
		Name:     item.Name,
		Quantity: quantity,
		Reason: fmt.Sprintf("forecast depletes stock below reorder point (%.0f) on %s",
			item.ReorderPoint, triggerDate.Format("2006-01-02")),
		ActionDate:    triggerDate.AddDate(0, 0, -buildLeadTimeDays),
		Priority:      domain.RiskMedium,
		EstimatedCost: item.UnitCost.Mul(decimal.NewFromInt(int64(quantity))),
	}

	if risk, ok := p.risks[item.SKU]; ok {
		action.Priority = risk.RiskLevel
		action.LinkedRisk = risk.SKU
	}

	return action, true
}

// SortActions orders actions by priority rank, most urgent first, preserving
// generation order within a rank.
func SortActions(actions []domain.SuggestedAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority.Rank() < actions[j].Priority.Rank()
	})
}

func requirementByDate(curve []domain.RequirementPoint) map[time.Time]float64 {
	byDate := make(map[time.Time]float64, len(curve))
	for _, point := range curve {
		byDate[point.Date] += point.Quantity
	}
	return byDate
}

// firstShortfallDay finds the first day within the horizon on which depleting
// stock by the requirement curve drops below the reorder point. The walk
// stops at the first hit. Requirement curves are dated from the day after
// today, so the last day examined is PlanningHorizonDays itself.
func firstShortfallDay(today time.Time, item domain.InventoryItem, demand map[time.Time]float64) (int, bool) {
	stock := float64(item.Stock)
	for day := 0; day <= PlanningHorizonDays; day++ {
		stock -= demand[today.AddDate(0, 0, day)]
		if stock < item.ReorderPoint {
			return day, true
		}
	}
	return 0, false
}
