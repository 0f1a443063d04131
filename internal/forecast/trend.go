package forecast

import "github.com/andresuchdata/stockcast/internal/domain"

const (
	trendUpThreshold   = 1.15
	trendDownThreshold = 0.85
)

// AnalyzeTrend converts the rolling 30/90/180 day sales windows of one item
// into a trend classification. A zero denominator on any rate yields a
// neutral result, never an error.
func AnalyzeTrend(sales30, sales90, sales180 float64) domain.TrendMetrics {
	r30 := sales30 / 30
	r90 := sales90 / 90
	r180 := sales180 / 180

	metrics := domain.TrendMetrics{Direction: domain.TrendStable}

	if r90 > 0 {
		metrics.GrowthRate = (r30/r90 - 1) * 100
		switch {
		case r30 > r90*trendUpThreshold:
			metrics.Direction = domain.TrendUp
		case r30 < r90*trendDownThreshold:
			metrics.Direction = domain.TrendDown
		}
	}

	// Second-order change: how the recent growth ratio compares with the
	// older one. Positive means growth itself is speeding up.
	if r90 > 0 && r180 > 0 {
		metrics.Acceleration = r30/r90 - r90/r180
	}

	return metrics
}
