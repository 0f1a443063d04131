package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/stockcast/internal/domain"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Summarize(_ context.Context, _ *domain.PlanResult) (string, error) {
	return s.text, s.err
}

func TestSummaryNeverFails(t *testing.T) {
	plan := &domain.PlanResult{}

	tests := []struct {
		name string
		gen  Generator
		want string
	}{
		{"nil generator", nil, FallbackSummary},
		{"generator error", &stubGenerator{err: errors.New("boom")}, FallbackSummary},
		{"empty text", &stubGenerator{text: ""}, FallbackSummary},
		{"healthy generator", &stubGenerator{text: "all quiet"}, "all quiet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.gen).Summary(context.Background(), plan)
			if got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
