package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/asinbot/internal/model"
)

// ProductEnricher looks up the image and title of a product. It never fails.
type ProductEnricher interface {
	Enrich(ctx context.Context, asin model.ASIN, region model.RegionCode) model.Enrichment
}

// EnrichStep fills in the image and title for the anchor region.
// It is skipped when the price lookup ended in a transport error.
type EnrichStep struct {
	enricher ProductEnricher
	logger   *slog.Logger
}

// EnrichStepOption configures an EnrichStep.
type EnrichStepOption func(*EnrichStep)

// WithEnrichLogger sets a custom logger for the enrich step.
func WithEnrichLogger(logger *slog.Logger) EnrichStepOption {
	return func(s *EnrichStep) {
		s.logger = logger
	}
}

// NewEnrichStep creates an enrich step around enricher.
func NewEnrichStep(enricher ProductEnricher, opts ...EnrichStepOption) *EnrichStep {
	s := &EnrichStep{
		enricher: enricher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *EnrichStep) Name() string {
	return "enrich"
}

// Do executes the enrichment.
func (s *EnrichStep) Do(ctx context.Context, res *model.Resolution) error {
	if res.Outcome == model.OutcomeError {
		s.logger.Debug("skipping enrichment after fetch error", "asin", res.ASIN)
		return nil
	}
	res.Enrichment = s.enricher.Enrich(ctx, res.ASIN, res.Anchor())
	return nil
}
