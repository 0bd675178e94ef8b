package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/asinbot/internal/model"
)

// Step is one stage of a resolution.
type Step interface {
	// Do executes the step, recording its results on res.
	// Upstream failures are recorded on res; the returned error is reserved
	// for failures that must stop the pipeline, such as cancellation.
	Do(ctx context.Context, res *model.Resolution) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order and sets res.Duration when done.
// It stops at and returns the first step error.
func (p *Pipeline) Execute(ctx context.Context, res *model.Resolution) error {
	defer func() {
		res.Duration = time.Since(res.StartedAt)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"asin", res.ASIN,
				"reason", ctx.Err(),
			)
			res.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"asin", res.ASIN,
			"resolution", res.ID,
		)

		if err := step.Do(ctx, res); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"asin", res.ASIN,
				"error", err,
			)
			res.Fail(err)
			return err
		}

		res.PerformedSteps = append(res.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
