package planning

import (
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/shopspring/decimal"
)

var planToday = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// flatCurve is a requirement of qty units per day starting tomorrow.
func flatCurve(qty float64, days int) []domain.RequirementPoint {
	curve := make([]domain.RequirementPoint, days)
	for d := range curve {
		curve[d] = domain.RequirementPoint{
			Date:     planToday.AddDate(0, 0, d+1),
			Quantity: qty,
		}
	}
	return curve
}

func flatForecast(qty float64, days int) []domain.ForecastPoint {
	fc := make([]domain.ForecastPoint, days)
	for d := range fc {
		fc[d] = domain.ForecastPoint{
			Date:     planToday.AddDate(0, 0, d+1),
			Quantity: qty,
		}
	}
	return fc
}

func testPlanner(items []domain.InventoryItem, vendors []domain.Vendor, risks map[string]domain.StockoutRisk) *Planner {
	itemMap := make(map[string]domain.InventoryItem)
	for _, it := range items {
		itemMap[it.SKU] = it
	}
	vendorMap := make(map[string]domain.Vendor)
	for _, v := range vendors {
		vendorMap[v.ID] = v
	}
	if risks == nil {
		risks = map[string]domain.StockoutRisk{}
	}
	return NewPlanner(itemMap, vendorMap, risks)
}

func TestPlanRawMaterials_RequisitionTiming(t *testing.T) {
	item := domain.InventoryItem{
		SKU:          "RAW",
		Name:         "Raw Material",
		Stock:        10,
		ReorderPoint: 5,
		VendorID:     "V1",
		UnitCost:     decimal.NewFromInt(4),
	}
	vendor := domain.Vendor{ID: "V1", Name: "Acme", LeadTimeDays: 3}

	planner := testPlanner([]domain.InventoryItem{item}, []domain.Vendor{vendor}, nil)
	actions, warnings := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"RAW": flatCurve(1, PlanningHorizonDays),
	})

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(actions) != 1 {
		t.Fatalf("expected exactly one requisition, got %d", len(actions))
	}

	a := actions[0]
	if a.Type != domain.ActionRequisition {
		t.Errorf("type = %s, want REQUISITION", a.Type)
	}
	// Stock hits 4 (< reorder point 5) on day 6; vendor lead time 3 pulls
	// the action date back to day 3.
	wantDate := planToday.AddDate(0, 0, 3)
	if !a.ActionDate.Equal(wantDate) {
		t.Errorf("actionDate = %v, want %v", a.ActionDate, wantDate)
	}
	// No MOQ: ceil(5 * 1.5) = 8.
	if a.Quantity != 8 {
		t.Errorf("quantity = %d, want 8", a.Quantity)
	}
	if a.Priority != domain.RiskMedium {
		t.Errorf("priority = %s, want medium fallback", a.Priority)
	}
	if !a.EstimatedCost.Equal(decimal.NewFromInt(32)) {
		t.Errorf("estimatedCost = %s, want 32", a.EstimatedCost)
	}
}

func TestPlanRawMaterials_HorizonEndShortfall(t *testing.T) {
	item := domain.InventoryItem{SKU: "RAW", Stock: 10, ReorderPoint: 5, VendorID: "V1"}
	planner := testPlanner([]domain.InventoryItem{item}, nil, nil)

	// The only requirement sits on the last day of the horizon.
	curve := []domain.RequirementPoint{{
		Date:     planToday.AddDate(0, 0, PlanningHorizonDays),
		Quantity: 6,
	}}
	actions, _ := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"RAW": curve,
	})
	if len(actions) != 1 {
		t.Fatalf("expected a requisition for a horizon-end shortfall, got %d actions", len(actions))
	}
	wantDate := planToday.AddDate(0, 0, PlanningHorizonDays-defaultVendorLeadTimeDays)
	if !actions[0].ActionDate.Equal(wantDate) {
		t.Errorf("actionDate = %v, want %v", actions[0].ActionDate, wantDate)
	}
}

func TestPlanRawMaterials_MOQWins(t *testing.T) {
	item := domain.InventoryItem{
		SKU:          "RAW",
		Stock:        2,
		ReorderPoint: 5,
		MOQ:          50,
		VendorID:     "V1",
	}
	planner := testPlanner([]domain.InventoryItem{item}, nil, nil)

	actions, _ := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"RAW": flatCurve(1, 10),
	})
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0].Quantity != 50 {
		t.Errorf("quantity = %d, want MOQ 50", actions[0].Quantity)
	}
	// Unknown vendor record: fall back to a 7 day look-back.
	wantDate := planToday.AddDate(0, 0, -7)
	if !actions[0].ActionDate.Equal(wantDate) {
		t.Errorf("actionDate = %v, want %v", actions[0].ActionDate, wantDate)
	}
}

func TestPlanRawMaterials_SentinelVendorSkipped(t *testing.T) {
	items := []domain.InventoryItem{
		{SKU: "NOVENDOR", Stock: 0, ReorderPoint: 5, VendorID: domain.NoVendor},
		{SKU: "BLANK", Stock: 0, ReorderPoint: 5},
	}
	planner := testPlanner(items, nil, nil)

	actions, _ := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"NOVENDOR": flatCurve(1, 10),
		"BLANK":    flatCurve(1, 10),
	})
	if len(actions) != 0 {
		t.Errorf("items without an actionable vendor must not emit actions, got %+v", actions)
	}
}

func TestPlanRawMaterials_MissingItemWarns(t *testing.T) {
	planner := testPlanner(nil, nil, nil)
	actions, warnings := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"GHOST": flatCurve(1, 10),
	})
	if len(actions) != 0 {
		t.Errorf("expected no actions, got %+v", actions)
	}
	if len(warnings) != 1 || warnings[0].Code != domain.WarnMissingItem {
		t.Errorf("expected a missing-item warning, got %+v", warnings)
	}
}

func TestPlanRawMaterials_PriorityFromRisk(t *testing.T) {
	item := domain.InventoryItem{SKU: "RAW", Stock: 0, ReorderPoint: 5, VendorID: "V1"}
	risks := map[string]domain.StockoutRisk{
		"RAW": {SKU: "RAW", RiskLevel: domain.RiskCritical},
	}
	planner := testPlanner([]domain.InventoryItem{item}, nil, risks)

	actions, _ := planner.PlanRawMaterials(planToday, map[string][]domain.RequirementPoint{
		"RAW": flatCurve(1, 10),
	})
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0].Priority != domain.RiskCritical {
		t.Errorf("priority = %s, want critical from linked risk", actions[0].Priority)
	}
	if actions[0].LinkedRisk != "RAW" {
		t.Errorf("linkedRisk = %q, want RAW", actions[0].LinkedRisk)
	}
}

func TestPlanFinishedGood_BuildAction(t *testing.T) {
	item := domain.InventoryItem{
		SKU:          "FINISHED",
		Name:         "Finished Good",
		Stock:        10,
		ReorderPoint: 5,
	}
	planner := testPlanner([]domain.InventoryItem{item}, nil, nil)

	action, ok := planner.PlanFinishedGood(planToday, item, flatForecast(1, PlanningHorizonDays))
	if !ok {
		t.Fatal("expected a build action")
	}
	if action.Type != domain.ActionBuild {
		t.Errorf("type = %s, want BUILD", action.Type)
	}
	// Trigger at day 6 with stock 4: replenish to 1.5x reorder point,
	// ceil(7.5 - 4) = 4. Fixed 7 day look-back.
	if action.Quantity != 4 {
		t.Errorf("quantity = %d, want 4", action.Quantity)
	}
	wantDate := planToday.AddDate(0, 0, -1)
	if !action.ActionDate.Equal(wantDate) {
		t.Errorf("actionDate = %v, want %v", action.ActionDate, wantDate)
	}
}

func TestPlanFinishedGood_HorizonEndShortfall(t *testing.T) {
	item := domain.InventoryItem{SKU: "FINISHED", Stock: 10, ReorderPoint: 5}
	planner := testPlanner([]domain.InventoryItem{item}, nil, nil)

	fc := []domain.ForecastPoint{{
		Date:     planToday.AddDate(0, 0, PlanningHorizonDays),
		Quantity: 6,
	}}
	action, ok := planner.PlanFinishedGood(planToday, item, fc)
	if !ok {
		t.Fatal("expected a build action for a horizon-end shortfall")
	}
	// Stock 4 after the final-day demand: ceil(7.5 - 4) = 4.
	if action.Quantity != 4 {
		t.Errorf("quantity = %d, want 4", action.Quantity)
	}
}

func TestPlanFinishedGood_NoTriggerNoAction(t *testing.T) {
	item := domain.InventoryItem{SKU: "FINISHED", Stock: 1000, ReorderPoint: 5}
	planner := testPlanner([]domain.InventoryItem{item}, nil, nil)

	if _, ok := planner.PlanFinishedGood(planToday, item, flatForecast(1, PlanningHorizonDays)); ok {
		t.Error("ample stock must not emit a build action")
	}
}

func TestSortActions_StableByPriorityRank(t *testing.T) {
	actions := []domain.SuggestedAction{
		{SKU: "A", Priority: domain.RiskLow},
		{SKU: "B", Priority: domain.RiskCritical},
		{SKU: "C", Priority: domain.RiskMedium},
		{SKU: "D", Priority: domain.RiskCritical},
		{SKU: "E", Priority: domain.RiskHigh},
	}
	SortActions(actions)

	gotOrder := ""
	for _, a := range actions {
		gotOrder += a.SKU
	}
	if gotOrder != "BDECA" {
		t.Errorf("order = %s, want BDECA", gotOrder)
	}

	for i := 1; i < len(actions); i++ {
		if actions[i].Priority.Rank() < actions[i-1].Priority.Rank() {
			t.Fatalf("priority rank decreased at %d", i)
		}
	}
}
