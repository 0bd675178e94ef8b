package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/asinbot/internal/model"
)

// PriceRenderer turns a finished resolution into the price block of a reply.
type PriceRenderer interface {
	RenderPrices(res *model.Resolution) string
}

// Resolver runs a fresh pipeline per identifier.
type Resolver struct {
	newPipeline func() *Pipeline
	renderer    PriceRenderer
	logger      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets a custom logger for the resolver.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. newPipeline is called once per resolution.
func NewResolver(newPipeline func() *Pipeline, renderer PriceRenderer, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		newPipeline: newPipeline,
		renderer:    renderer,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the pipeline for asin and returns the accumulated resolution.
// The error is non-nil only when ctx was cancelled.
func (r *Resolver) Resolve(ctx context.Context, asin model.ASIN) (*model.Resolution, error) {
	res := model.NewResolution(asin)
	err := r.newPipeline().Execute(ctx, res)

	r.logger.Info("resolution finished",
		"asin", asin,
		"resolution", res.ID,
		"outcome", res.Outcome,
		"attempts", res.Attempts,
		"duration", res.Duration,
	)
	return res, err
}

// ResolvePrices resolves asin into the rendered price block, the image URL,
// the product title and the anchor region. After a terminal fetch error the
// image and title are empty and the anchor is the default region.
func (r *Resolver) ResolvePrices(ctx context.Context, asin model.ASIN) (text, imageURL, title string, anchor model.RegionCode, err error) {
	res, err := r.Resolve(ctx, asin)
	if err != nil {
		return "", "", "", model.DefaultRegion, err
	}
	return r.renderer.RenderPrices(res), res.Enrichment.ImageURL, res.Enrichment.Title, res.Anchor(), nil
}
