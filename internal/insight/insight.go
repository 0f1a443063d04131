// Package insight is the boundary to the narrative-generation collaborator.
// A failure here must never surface as a planning failure: the Service
// always returns usable text.
package insight

import (
	"context"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/rs/zerolog/log"
)

// FallbackSummary is returned whenever the collaborator is unavailable or
// errors out.
const FallbackSummary = "Automated insight is currently unavailable. Review the risk and action tables directly; they are computed locally and unaffected."

// Generator produces free-form explanatory text for a computed plan.
type Generator interface {
	Summarize(ctx context.Context, plan *domain.PlanResult) (string, error)
}

// Service wraps a Generator with the degrade-to-fallback contract.
type Service struct {
	gen Generator
}

// NewService creates the insight boundary. gen may be nil when insight is
// disabled.
func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// Summary never fails; collaborator errors are logged and replaced with the
// fallback text.
func (s *Service) Summary(ctx context.Context, plan *domain.PlanResult) string {
	if s.gen == nil {
		return FallbackSummary
	}

	text, err := s.gen.Summarize(ctx, plan)
	if err != nil {
		log.Warn().Err(err).Msg("insight generation failed, using fallback")
		return FallbackSummary
	}
	if text == "" {
		return FallbackSummary
	}
	return text
}
