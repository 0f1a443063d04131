package domain

import "strings"

// RiskLevel is the four-tier stockout urgency classification. It doubles as
// the priority on a SuggestedAction.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

var riskRanks = map[RiskLevel]int{
	RiskCritical: 0,
	RiskHigh:     1,
	RiskMedium:   2,
	RiskLow:      3,
}

// Rank returns the sort rank of the level, most urgent first. Unknown levels
// sort after low.
func (r RiskLevel) Rank() int {
	if rank, ok := riskRanks[r]; ok {
		return rank
	}
	return len(riskRanks)
}

// TrendDirection classifies the short-window vs long-window demand movement.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// ActionType distinguishes buying a raw material from building a finished good.
type ActionType string

const (
	ActionRequisition ActionType = "REQUISITION"
	ActionBuild       ActionType = "BUILD"
)

// completedPOStatuses are the PO states that count as delivered for vendor
// performance scoring.
var completedPOStatuses = map[string]bool{
	"received":  true,
	"fulfilled": true,
}

// IsCompletedPOStatus reports whether a PO status label (case-insensitive)
// counts as a completed delivery.
func IsCompletedPOStatus(status string) bool {
	return completedPOStatuses[strings.ToLower(strings.TrimSpace(status))]
}
