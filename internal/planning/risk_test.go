package planning

import (
	"testing"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// itemWithDays builds an item consuming exactly one unit per day, so
// available stock equals days-until-stockout.
func itemWithDays(days int) domain.InventoryItem {
	return domain.InventoryItem{
		SKU:             "ITEM",
		Stock:           days,
		SalesLast30Days: 30,
		LeadTimeDays:    14,
	}
}

func TestClassifyRisk_BaseLevels(t *testing.T) {
	tests := []struct {
		days int
		want domain.RiskLevel
	}{
		{0, domain.RiskCritical},
		{6, domain.RiskCritical}, // < half of lead 14
		{10, domain.RiskHigh},    // < 14
		{18, domain.RiskMedium},  // < 21
		{25, domain.RiskLow},
	}

	for _, tt := range tests {
		risk, ok := ClassifyRisk(itemWithDays(tt.days), domain.TrendMetrics{Direction: domain.TrendStable})
		if !ok {
			t.Fatalf("days=%d: expected a risk row", tt.days)
		}
		if risk.DaysUntilStockout != tt.days {
			t.Errorf("days=%d: daysUntilStockout = %d", tt.days, risk.DaysUntilStockout)
		}
		if risk.RiskLevel != tt.want {
			t.Errorf("days=%d: level = %s, want %s", tt.days, risk.RiskLevel, tt.want)
		}
	}
}

func TestClassifyRisk_OnOrderCountsAsAvailable(t *testing.T) {
	item := itemWithDays(5)
	item.OnOrder = 20

	risk, ok := ClassifyRisk(item, domain.TrendMetrics{})
	if !ok {
		t.Fatal("expected a risk row")
	}
	if risk.DaysUntilStockout != 25 {
		t.Errorf("daysUntilStockout = %d, want 25", risk.DaysUntilStockout)
	}
	if risk.RiskLevel != domain.RiskLow {
		t.Errorf("level = %s, want low", risk.RiskLevel)
	}
}

func TestClassifyRisk_ZeroConsumptionExcluded(t *testing.T) {
	item := domain.InventoryItem{SKU: "DEAD", Stock: 100, LeadTimeDays: 14}
	if _, ok := ClassifyRisk(item, domain.TrendMetrics{}); ok {
		t.Error("zero-consumption item must be excluded from risk output")
	}
}

func TestClassifyRisk_TrendEscalation(t *testing.T) {
	rising := domain.TrendMetrics{Direction: domain.TrendUp, Acceleration: 0.15}

	tests := []struct {
		name  string
		days  int
		trend domain.TrendMetrics
		want  domain.RiskLevel
	}{
		{"low escalates to medium", 25, rising, domain.RiskMedium},
		{"medium escalates to high", 18, rising, domain.RiskHigh},
		{"high is never escalated to critical", 10, rising, domain.RiskHigh},
		{"critical stays critical", 0, rising, domain.RiskCritical},
		{"slow acceleration does not escalate", 25, domain.TrendMetrics{Direction: domain.TrendUp, Acceleration: 0.05}, domain.RiskLow},
		{"downtrend does not escalate", 25, domain.TrendMetrics{Direction: domain.TrendDown, Acceleration: 0.5}, domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk, ok := ClassifyRisk(itemWithDays(tt.days), tt.trend)
			if !ok {
				t.Fatal("expected a risk row")
			}
			if risk.RiskLevel != tt.want {
				t.Errorf("level = %s, want %s", risk.RiskLevel, tt.want)
			}
		})
	}
}

func TestClassifyRisk_DefaultLeadTime(t *testing.T) {
	item := itemWithDays(10)
	item.LeadTimeDays = 0

	risk, ok := ClassifyRisk(item, domain.TrendMetrics{})
	if !ok {
		t.Fatal("expected a risk row")
	}
	if risk.LeadTimeDays != DefaultLeadTimeDays {
		t.Errorf("leadTimeDays = %d, want default %d", risk.LeadTimeDays, DefaultLeadTimeDays)
	}
	if risk.RiskLevel != domain.RiskHigh {
		t.Errorf("level = %s, want high", risk.RiskLevel)
	}
}
