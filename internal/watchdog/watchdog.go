package watchdog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHeartbeatInterval is how often the heartbeat loop runs.
	DefaultHeartbeatInterval = 60 * time.Second

	// DefaultCheckInterval is how often the watch loop compares.
	DefaultCheckInterval = 60 * time.Second

	// DefaultStaleThreshold is the silence that triggers a restart.
	DefaultStaleThreshold = 300 * time.Second
)

// Probe reports whether the process can still make progress.
// A failing probe suppresses the heartbeat for that tick.
type Probe func(ctx context.Context) error

// Watchdog runs the heartbeat and watch loops over a shared Liveness.
type Watchdog struct {
	liveness          *Liveness
	restarter         Restarter
	probe             Probe
	heartbeatInterval time.Duration
	checkInterval     time.Duration
	threshold         time.Duration
	now               func() time.Time
	logger            *slog.Logger
}

// Option configures a Watchdog.
type Option func(*Watchdog)

// WithHeartbeatInterval sets the heartbeat period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(w *Watchdog) {
		if d > 0 {
			w.heartbeatInterval = d
		}
	}
}

// WithCheckInterval sets the watch period.
func WithCheckInterval(d time.Duration) Option {
	return func(w *Watchdog) {
		if d > 0 {
			w.checkInterval = d
		}
	}
}

// WithStaleThreshold sets the silence that triggers a restart.
func WithStaleThreshold(d time.Duration) Option {
	return func(w *Watchdog) {
		if d > 0 {
			w.threshold = d
		}
	}
}

// WithProbe gates each heartbeat on probe succeeding.
func WithProbe(probe Probe) Option {
	return func(w *Watchdog) {
		w.probe = probe
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watchdog) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watchdog) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watchdog.
func New(liveness *Liveness, restarter Restarter, opts ...Option) *Watchdog {
	w := &Watchdog{
		liveness:          liveness,
		restarter:         restarter,
		heartbeatInterval: DefaultHeartbeatInterval,
		checkInterval:     DefaultCheckInterval,
		threshold:         DefaultStaleThreshold,
		now:               time.Now,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts both loops and blocks until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	w.logger.Info("starting watchdog",
		"heartbeat", w.heartbeatInterval,
		"check", w.checkInterval,
		"threshold", w.threshold,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.runHeartbeat(ctx)
		return nil
	})
	g.Go(func() error {
		w.runWatch(ctx)
		return nil
	})
	return g.Wait()
}

func (w *Watchdog) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Beat(ctx)
		case <-ctx.Done():
			w.logger.Debug("heartbeat stopped")
			return
		}
	}
}

func (w *Watchdog) runWatch(ctx context.Context) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check()
		case <-ctx.Done():
			w.logger.Debug("watch stopped")
			return
		}
	}
}

// Beat touches the liveness cell unless the probe fails.
func (w *Watchdog) Beat(ctx context.Context) {
	if w.probe != nil {
		if err := w.probe(ctx); err != nil {
			w.logger.Warn("heartbeat probe failed", "error", err)
			return
		}
	}
	w.liveness.Touch(w.now())
}

// Check restarts the process if the liveness cell is stale and reports
// whether it fired. After firing the cell is touched, so continued silence
// fires again only after another full threshold.
func (w *Watchdog) Check() bool {
	now := w.now()
	if !w.liveness.Stale(now, w.threshold) {
		return false
	}

	silence := now.Sub(w.liveness.Last())
	w.logger.Error("no sign of life, restarting",
		"silence", silence,
		"threshold", w.threshold,
	)
	if err := w.restarter.Restart("liveness stale for " + silence.String()); err != nil {
		w.logger.Error("restart failed", "error", err)
	}
	w.liveness.Touch(now)
	return true
}
