package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Options enumerates the forecast decomposition switches.
type Options struct {
	IncludeTrend       bool
	IncludeSeasonality bool
	ConfidenceInterval bool
}

// DefaultOptions enables every component.
func DefaultOptions() Options {
	return Options{
		IncludeTrend:       true,
		IncludeSeasonality: true,
		ConfidenceInterval: true,
	}
}

const (
	// Window centers of the 30-day and 90-day rates sit ~30 days apart,
	// so the implied daily trend is the rate gap spread over that span.
	trendSpanDays = 30.0

	seasonalWindowDays = 180
	minSeasonalFactor  = 0.25
	maxSeasonalFactor  = 4.0

	// Confidence decays linearly to this floor at the end of the horizon.
	minConfidence = 0.5
)

// Generator produces bounded-horizon daily demand forecasts.
type Generator struct {
	opts Options
}

// NewGenerator creates a forecast generator with the given options.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate returns exactly horizonDays forecast points for one SKU, dated
// day-by-day starting the day after today. With no historical sales the
// series is well-formed and all zero.
func (g *Generator) Generate(sales []domain.HistoricalSale, today time.Time, horizonDays int) []domain.ForecastPoint {
	if horizonDays <= 0 {
		return []domain.ForecastPoint{}
	}
	today = truncateDay(today)

	daily := aggregateDaily(sales)
	s30 := windowSum(daily, today, 30)
	s90 := windowSum(daily, today, 90)
	s180 := windowSum(daily, today, seasonalWindowDays)

	level := s30 / 30

	slope := 0.0
	if g.opts.IncludeTrend {
		slope = (s30/30 - s90/90) / trendSpanDays
	}

	factors := neutralWeekdayFactors()
	if g.opts.IncludeSeasonality {
		factors = weekdayFactors(daily, today, s180)
	}

	sigma := 0.0
	if g.opts.ConfidenceInterval {
		sigma = dailyStdDev(daily, today, 90)
	}

	points := make([]domain.ForecastPoint, 0, horizonDays)
	for d := 1; d <= horizonDays; d++ {
		date := today.AddDate(0, 0, d)

		qty := level + slope*float64(d)
		qty *= factors[int(date.Weekday())]
		if qty < 0 {
			qty = 0
		}

		point := domain.ForecastPoint{
			Date:       date,
			Quantity:   qty,
			LowerBound: qty,
			UpperBound: qty,
			Confidence: 1,
		}

		if g.opts.ConfidenceInterval {
			// Uncertainty compounds with distance from today. Clamping the
			// lower bound at zero shifts the cut into the upper bound so the
			// interval width stays 2*width and never narrows as d grows.
			width := sigma * math.Sqrt(float64(d))
			lower := qty - width
			upper := qty + width
			if lower < 0 {
				upper -= lower
				lower = 0
			}
			point.LowerBound = lower
			point.UpperBound = upper
			point.Confidence = 1 - (1-minConfidence)*float64(d)/float64(horizonDays)
		}

		points = append(points, point)
	}

	return points
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// aggregateDaily collapses the sales log into total quantity per day.
func aggregateDaily(sales []domain.HistoricalSale) map[time.Time]float64 {
	daily := make(map[time.Time]float64, len(sales))
	for _, s := range sales {
		daily[truncateDay(s.Date)] += s.Quantity
	}
	return daily
}

// windowSum totals daily sales in the half-open window (today-days, today].
func windowSum(daily map[time.Time]float64, today time.Time, days int) float64 {
	cutoff := today.AddDate(0, 0, -days)
	var sum float64
	for date, qty := range daily {
		if date.After(cutoff) && !date.After(today) {
			sum += qty
		}
	}
	return sum
}

func neutralWeekdayFactors() [7]float64 {
	return [7]float64{1, 1, 1, 1, 1, 1, 1}
}

// weekdayFactors estimates a day-of-week multiplier from the seasonal window.
// Zero-sale days inside the window count toward the weekday averages, so a
// weekday that never sells is genuinely discounted.
func weekdayFactors(daily map[time.Time]float64, today time.Time, windowTotal float64) [7]float64 {
	factors := neutralWeekdayFactors()
	if windowTotal <= 0 {
		return factors
	}

	var sums [7]float64
	var counts [7]int
	for d := 0; d < seasonalWindowDays; d++ {
		date := today.AddDate(0, 0, -d)
		wd := int(date.Weekday())
		sums[wd] += daily[date]
		counts[wd]++
	}

	overall := windowTotal / seasonalWindowDays
	if overall <= 0 {
		return factors
	}

	for wd := 0; wd < 7; wd++ {
		if counts[wd] == 0 {
			continue
		}
		f := (sums[wd] / float64(counts[wd])) / overall
		if f < minSeasonalFactor {
			f = minSeasonalFactor
		}
		if f > maxSeasonalFactor {
			f = maxSeasonalFactor
		}
		factors[wd] = f
	}
	return factors
}

// dailyStdDev is the population standard deviation of daily quantities over
// the window, zero-sale days included.
func dailyStdDev(daily map[time.Time]float64, today time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}

	var sum float64
	for d := 0; d < days; d++ {
		sum += daily[today.AddDate(0, 0, -d)]
	}
	mean := sum / float64(days)

	var ss float64
	for d := 0; d < days; d++ {
		diff := daily[today.AddDate(0, 0, -d)] - mean
		ss += diff * diff
	}
	return math.Sqrt(ss / float64(days))
}
