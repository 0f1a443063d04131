package forecast

import (
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

var testToday = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

// constantSales builds a flat history of qty units per day for the given
// number of days back from today.
func constantSales(sku string, qty float64, days int) []domain.HistoricalSale {
	sales := make([]domain.HistoricalSale, 0, days)
	for d := 1; d <= days; d++ {
		sales = append(sales, domain.HistoricalSale{
			SKU:      sku,
			Date:     testToday.AddDate(0, 0, -d),
			Quantity: qty,
		})
	}
	return sales
}

func TestGenerate_SeriesShape(t *testing.T) {
	gen := NewGenerator(DefaultOptions())
	fc := gen.Generate(constantSales("WIDGET", 10, 180), testToday, 90)

	if len(fc) != 90 {
		t.Fatalf("expected 90 points, got %d", len(fc))
	}

	wantFirst := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	if !fc[0].Date.Equal(wantFirst) {
		t.Errorf("first date = %v, want %v", fc[0].Date, wantFirst)
	}

	for i := 1; i < len(fc); i++ {
		if got := fc[i].Date.Sub(fc[i-1].Date); got != 24*time.Hour {
			t.Fatalf("gap of %v between point %d and %d", got, i-1, i)
		}
	}
}

func TestGenerate_ZeroHistory(t *testing.T) {
	gen := NewGenerator(DefaultOptions())
	fc := gen.Generate(nil, testToday, 30)

	if len(fc) != 30 {
		t.Fatalf("expected well-formed 30-point series, got %d points", len(fc))
	}
	for i, p := range fc {
		if p.Quantity != 0 || p.LowerBound != 0 || p.UpperBound != 0 {
			t.Fatalf("point %d not zero: %+v", i, p)
		}
	}
}

func TestGenerate_ConfidenceInterval(t *testing.T) {
	// Alternating 5/15 daily demand: level 10, nonzero variance.
	sales := make([]domain.HistoricalSale, 0, 180)
	for d := 1; d <= 180; d++ {
		qty := 5.0
		if d%2 == 0 {
			qty = 15.0
		}
		sales = append(sales, domain.HistoricalSale{
			SKU:      "WIDGET",
			Date:     testToday.AddDate(0, 0, -d),
			Quantity: qty,
		})
	}

	gen := NewGenerator(Options{ConfidenceInterval: true})
	fc := gen.Generate(sales, testToday, 60)

	prevWidth := -1.0
	prevConfidence := 1.1
	for i, p := range fc {
		if p.LowerBound > p.Quantity || p.UpperBound < p.Quantity {
			t.Fatalf("point %d bounds do not bracket quantity: %+v", i, p)
		}
		width := p.UpperBound - p.LowerBound
		if width < prevWidth {
			t.Fatalf("interval narrowed at point %d: %v < %v", i, width, prevWidth)
		}
		if p.Confidence >= prevConfidence {
			t.Fatalf("confidence did not decrease at point %d: %v", i, p.Confidence)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Fatalf("confidence out of range at point %d: %v", i, p.Confidence)
		}
		prevWidth = width
		prevConfidence = p.Confidence
	}
}

func TestGenerate_SeasonalIntervalWidens(t *testing.T) {
	// Monday-only demand: the weekday factor swings quantity between near
	// zero and well above the level, forcing the lower-bound clamp on most
	// days. The interval must still widen with distance.
	var sales []domain.HistoricalSale
	for d := 1; d <= 180; d++ {
		date := testToday.AddDate(0, 0, -d)
		if date.Weekday() != time.Monday {
			continue
		}
		sales = append(sales, domain.HistoricalSale{
			SKU:      "WIDGET",
			Date:     date,
			Quantity: 70,
		})
	}

	gen := NewGenerator(Options{IncludeSeasonality: true, ConfidenceInterval: true})
	fc := gen.Generate(sales, testToday, 30)

	prevWidth := -1.0
	for i, p := range fc {
		if p.LowerBound > p.Quantity || p.UpperBound < p.Quantity {
			t.Fatalf("point %d bounds do not bracket quantity: %+v", i, p)
		}
		width := p.UpperBound - p.LowerBound
		if width < prevWidth {
			t.Fatalf("interval narrowed at point %d: %v < %v", i, width, prevWidth)
		}
		prevWidth = width
	}
}

func TestGenerate_DisabledIntervalDefaults(t *testing.T) {
	gen := NewGenerator(Options{})
	fc := gen.Generate(constantSales("WIDGET", 10, 180), testToday, 14)

	for i, p := range fc {
		if p.LowerBound != p.Quantity || p.UpperBound != p.Quantity {
			t.Fatalf("point %d should have zero-width bounds: %+v", i, p)
		}
		if p.Confidence != 1 {
			t.Fatalf("point %d confidence = %v, want 1", i, p.Confidence)
		}
	}
}

func TestGenerate_TrendExtrapolation(t *testing.T) {
	// 5/day in the older window, 10/day in the last 30 days: positive slope.
	sales := make([]domain.HistoricalSale, 0, 180)
	for d := 1; d <= 180; d++ {
		qty := 5.0
		if d <= 30 {
			qty = 10.0
		}
		sales = append(sales, domain.HistoricalSale{
			SKU:      "WIDGET",
			Date:     testToday.AddDate(0, 0, -d),
			Quantity: qty,
		})
	}

	gen := NewGenerator(Options{IncludeTrend: true})
	fc := gen.Generate(sales, testToday, 30)

	if fc[len(fc)-1].Quantity <= fc[0].Quantity {
		t.Errorf("rising demand should extrapolate upward: first %v, last %v",
			fc[0].Quantity, fc[len(fc)-1].Quantity)
	}
	for i, p := range fc {
		if p.Quantity < 0 {
			t.Fatalf("point %d negative quantity %v", i, p.Quantity)
		}
	}
}

func TestGenerate_NegativeTrendClampsToZero(t *testing.T) {
	// Demand collapsed to zero in the recent window; the extrapolation must
	// floor at zero rather than go negative.
	sales := make([]domain.HistoricalSale, 0, 150)
	for d := 31; d <= 180; d++ {
		sales = append(sales, domain.HistoricalSale{
			SKU:      "WIDGET",
			Date:     testToday.AddDate(0, 0, -d),
			Quantity: 20,
		})
	}

	gen := NewGenerator(Options{IncludeTrend: true})
	fc := gen.Generate(sales, testToday, 90)

	for i, p := range fc {
		if p.Quantity < 0 {
			t.Fatalf("point %d negative quantity %v", i, p.Quantity)
		}
	}
}
