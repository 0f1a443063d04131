package planning

import (
	"math"

	"github.com/andresuchdata/stockcast/internal/domain"
)

const (
	// DefaultLeadTimeDays is assumed when an item carries no lead time.
	DefaultLeadTimeDays = 14

	// Trend acceleration above this escalates the base risk one step.
	escalationAcceleration = 0.1
)

// ClassifyRisk computes the stockout risk for one inventory item. Items with
// zero 30-day consumption carry no risk row at all; the second return is
// false for them.
func ClassifyRisk(item domain.InventoryItem, trend domain.TrendMetrics) (domain.StockoutRisk, bool) {
	consumptionDaily := item.SalesLast30Days / 30
	if consumptionDaily <= 0 {
		return domain.StockoutRisk{}, false
	}

	lead := item.LeadTimeDays
	if lead <= 0 {
		lead = DefaultLeadTimeDays
	}

	availableStock := float64(item.Stock + item.OnOrder)
	daysUntilStockout := int(math.Floor(availableStock / consumptionDaily))

	level := baseRiskLevel(daysUntilStockout, lead)
	level = escalateForTrend(level, trend)

	return domain.StockoutRisk{
		SKU:               item.SKU,
		Name:              item.Name,
		DaysUntilStockout: daysUntilStockout,
		RiskLevel:         level,
		TrendMetrics:      trend,
		LeadTimeDays:      lead,
		VendorID:          item.VendorID,
		MOQ:               item.MOQ,
		ReorderPoint:      item.ReorderPoint,
	}, true
}

func baseRiskLevel(daysUntilStockout, leadTimeDays int) domain.RiskLevel {
	days := float64(daysUntilStockout)
	lead := float64(leadTimeDays)

	switch {
	case daysUntilStockout <= 0:
		return domain.RiskCritical
	case days < 0.5*lead:
		return domain.RiskCritical
	case days < lead:
		return domain.RiskHigh
	case days < 1.5*lead:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// escalateForTrend bumps low→medium and medium→high for items whose demand
// is rising and accelerating. It never downgrades, and no trend elevates
// high to critical.
func escalateForTrend(level domain.RiskLevel, trend domain.TrendMetrics) domain.RiskLevel {
	if trend.Direction != domain.TrendUp || trend.Acceleration <= escalationAcceleration {
		return level
	}

	switch level {
	case domain.RiskLow:
		return domain.RiskMedium
	case domain.RiskMedium:
		return domain.RiskHigh
	default:
		return level
	}
}
