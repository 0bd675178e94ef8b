package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/asinbot/internal/model"
)

const (
	// DefaultMaxAttempts is the number of aggregator requests per resolution.
	DefaultMaxAttempts = 7

	// DefaultBackoffBase is multiplied by the attempt number between requests.
	DefaultBackoffBase = 3 * time.Second
)

// PriceFetcher performs a single aggregator request.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, asin model.ASIN) (model.PriceTable, error)
}

// PriceStep fetches the price table with bounded retries and linear backoff.
//
// An empty table and a transport error are both retried. When the budget
// runs out, an empty table ends as OutcomeNotFound and an error as
// OutcomeError; neither is returned as a step error.
type PriceStep struct {
	fetcher     PriceFetcher
	maxAttempts int
	backoffBase time.Duration
	sleep       Sleeper
	logger      *slog.Logger
}

// PriceStepOption configures a PriceStep.
type PriceStepOption func(*PriceStep)

// WithMaxAttempts sets the attempt budget. Values below 1 are ignored.
func WithMaxAttempts(n int) PriceStepOption {
	return func(s *PriceStep) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the backoff unit.
func WithBackoffBase(d time.Duration) PriceStepOption {
	return func(s *PriceStep) {
		if d >= 0 {
			s.backoffBase = d
		}
	}
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(sleep Sleeper) PriceStepOption {
	return func(s *PriceStep) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithPriceLogger sets a custom logger for the price step.
func WithPriceLogger(logger *slog.Logger) PriceStepOption {
	return func(s *PriceStep) {
		s.logger = logger
	}
}

// NewPriceStep creates a price step around fetcher.
func NewPriceStep(fetcher PriceFetcher, opts ...PriceStepOption) *PriceStep {
	s := &PriceStep{
		fetcher:     fetcher,
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		sleep:       SleepContext,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PriceStep) Name() string {
	return "prices"
}

// Backoff returns the wait after the given 1-based attempt.
func (s *PriceStep) Backoff(attempt int) time.Duration {
	return s.backoffBase * time.Duration(attempt)
}

// Do executes the price lookup.
func (s *PriceStep) Do(ctx context.Context, res *model.Resolution) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		res.Attempts = attempt
		last := attempt == s.maxAttempts

		table, err := s.fetcher.FetchPrices(ctx, res.ASIN)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Warn("price fetch failed",
				"asin", res.ASIN,
				"attempt", attempt,
				"error", err,
			)
			if last {
				res.Fail(err)
				return nil
			}
		case !table.IsEmpty():
			res.Table = table
			res.Outcome = model.OutcomeFound
			s.logger.Debug("prices found", "asin", res.ASIN, "attempt", attempt, "entries", table.Len())
			return nil
		default:
			s.logger.Debug("no prices yet", "asin", res.ASIN, "attempt", attempt)
			if last {
				res.Table = table
				res.Outcome = model.OutcomeNotFound
				return nil
			}
		}

		if err := s.sleep(ctx, s.Backoff(attempt)); err != nil {
			return err
		}
	}
	return nil
}
