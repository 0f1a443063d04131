package forecast

import (
	"testing"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func TestAnalyzeTrend_Direction(t *testing.T) {
	tests := []struct {
		name       string
		s30        float64
		s90        float64
		s180       float64
		wantDir    domain.TrendDirection
		wantGrowth float64
	}{
		{
			name:    "rising demand",
			s30:     60, // r30=2
			s90:     90, // r90=1
			s180:    180,
			wantDir: domain.TrendUp, wantGrowth: 100,
		},
		{
			name:    "falling demand",
			s30:     15, // r30=0.5
			s90:     90, // r90=1
			s180:    180,
			wantDir: domain.TrendDown, wantGrowth: -50,
		},
		{
			name:    "flat demand",
			s30:     30,
			s90:     90,
			s180:    180,
			wantDir: domain.TrendStable, wantGrowth: 0,
		},
		{
			name:    "just under up threshold stays stable",
			s30:     34, // r30=1.1333 < 1.15
			s90:     90,
			s180:    180,
			wantDir: domain.TrendStable, wantGrowth: 13.333333333333341,
		},
		{
			name:    "no 90 day history is neutral",
			s30:     10,
			s90:     0,
			s180:    0,
			wantDir: domain.TrendStable, wantGrowth: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeTrend(tt.s30, tt.s90, tt.s180)
			if got.Direction != tt.wantDir {
				t.Errorf("direction = %s, want %s", got.Direction, tt.wantDir)
			}
			if diff := got.GrowthRate - tt.wantGrowth; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("growthRate = %v, want %v", got.GrowthRate, tt.wantGrowth)
			}
		})
	}
}

func TestAnalyzeTrend_Acceleration(t *testing.T) {
	// r30=2, r90=1, r180=1: recent growth ratio 2 vs older ratio 1.
	got := AnalyzeTrend(60, 90, 180)
	if got.Acceleration <= 0.1 {
		t.Errorf("accelerating mover should clear the escalation threshold, got %v", got.Acceleration)
	}

	// Steady rates on every window imply zero acceleration.
	flat := AnalyzeTrend(30, 90, 180)
	if flat.Acceleration != 0 {
		t.Errorf("flat mover acceleration = %v, want 0", flat.Acceleration)
	}

	// Missing 180-day history degrades to neutral acceleration.
	sparse := AnalyzeTrend(60, 90, 0)
	if sparse.Acceleration != 0 {
		t.Errorf("sparse history acceleration = %v, want 0", sparse.Acceleration)
	}
}
