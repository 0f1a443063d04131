package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendMetrics summarizes the movement of an item's demand across the
// 30/90/180 day sales windows.
type TrendMetrics struct {
	Direction    TrendDirection `json:"direction"`
	GrowthRate   float64        `json:"growth_rate"`
	Acceleration float64        `json:"acceleration"`
}

// ForecastPoint is one day of a demand forecast. Bounds and confidence
// default to the point quantity / 1.0 when the confidence interval is
// disabled.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
	Confidence float64   `json:"confidence"`
}

// StockoutRisk is the per-item depletion classification.
type StockoutRisk struct {
	SKU               string       `json:"sku"`
	Name              string       `json:"name"`
	DaysUntilStockout int          `json:"days_until_stockout"`
	RiskLevel         RiskLevel    `json:"risk_level"`
	TrendMetrics      TrendMetrics `json:"trend_metrics"`
	LeadTimeDays      int          `json:"lead_time_days"`
	VendorID          string       `json:"vendor_id,omitempty"`
	MOQ               int          `json:"moq,omitempty"`
	ReorderPoint      float64      `json:"reorder_point"`
}

// RequirementPoint is one day of gross component requirement produced by
// exploding a finished-good forecast through its BOM.
type RequirementPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// SuggestedAction is one purchase or build recommendation. Actions are
// advisory: a caller decides whether to turn one into a requisition or a
// build order.
type SuggestedAction struct {
	Type          ActionType      `json:"type"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Reason        string          `json:"reason"`
	ActionDate    time.Time       `json:"action_date"`
	VendorID      string          `json:"vendor_id,omitempty"`
	Priority      RiskLevel       `json:"priority"`
	LinkedRisk    string          `json:"linked_risk,omitempty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// VendorPerformance aggregates historical PO delivery performance for one
// vendor.
type VendorPerformance struct {
	VendorID                 string  `json:"vendor_id"`
	VendorName               string  `json:"vendor_name"`
	OnTimeDeliveryRate       float64 `json:"on_time_delivery_rate"`
	AverageLeadTimeActual    float64 `json:"average_lead_time_actual"`
	AverageLeadTimeEstimated float64 `json:"average_lead_time_estimated"`
	ReliabilityScore         int     `json:"reliability_score"`
}

// PlanWarning is a non-fatal structural finding surfaced to the caller,
// e.g. a cyclic BOM branch that was skipped.
type PlanWarning struct {
	Code    string `json:"code"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

const (
	WarnBOMCycle    = "bom_cycle"
	WarnMissingItem = "missing_item"
)

// PlanResult is everything one engine run produces from a snapshot.
type PlanResult struct {
	Today     time.Time                  `json:"today"`
	Risks     []StockoutRisk             `json:"risks"`
	Forecasts map[string][]ForecastPoint `json:"forecasts"`
	Actions   []SuggestedAction          `json:"actions"`
	Vendors   []VendorPerformance        `json:"vendors"`
	Warnings  []PlanWarning              `json:"warnings,omitempty"`
}
