package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/asinbot/internal/model"
)

// DefaultConcurrency is the number of identifiers resolved at once.
const DefaultConcurrency = 4

// BatchProcessor resolves multiple identifiers concurrently.
type BatchProcessor struct {
	// newPipeline creates a fresh pipeline for each identifier.
	newPipeline func() *Pipeline

	// concurrency is the maximum number of concurrent resolutions.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent resolutions.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(newPipeline func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		newPipeline: newPipeline,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch resolves every identifier and returns the results in input order.
// A resolution that was cancelled before it started is nil in the result.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, asins []model.ASIN) ([]*model.Resolution, error) {
	results := make([]*model.Resolution, len(asins))
	err := bp.ProcessBatchWithCallback(ctx, asins, func(res *model.Resolution, index int) {
		// Each index is written by exactly one goroutine.
		results[index] = res
	})
	return results, err
}

// ProcessBatchWithCallback resolves every identifier and calls callback as
// each one completes. callback runs on the worker goroutine.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	asins []model.ASIN,
	callback func(res *model.Resolution, index int),
) error {
	bp.logger.Info("starting batch lookup",
		"total", len(asins),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, asin := range asins {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res := model.NewResolution(asin)
			if err := bp.newPipeline().Execute(ctx, res); err != nil {
				bp.logger.Warn("lookup failed", "asin", asin, "error", err)
			}
			callback(res, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch lookup complete",
		"total", len(asins),
		"elapsed", time.Since(startTime),
	)
	return err
}
