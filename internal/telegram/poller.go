package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPollTimeout is how long one getUpdates call waits for messages.
	DefaultPollTimeout = 30 * time.Second

	// DefaultRetryDelay is the pause after a failed getUpdates call.
	DefaultRetryDelay = time.Second
)

// TextHandler handles one incoming text message.
type TextHandler interface {
	HandleText(ctx context.Context, chatID int64, text string)
}

// TextHandlerFunc adapts a function to TextHandler.
type TextHandlerFunc func(ctx context.Context, chatID int64, text string)

// HandleText calls f.
func (f TextHandlerFunc) HandleText(ctx context.Context, chatID int64, text string) {
	f(ctx, chatID, text)
}

// UpdateSource is the part of Client the poller uses.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, int64, error)
}

// Poller long-polls for updates and dispatches text messages.
type Poller struct {
	source      UpdateSource
	handler     TextHandler
	pollTimeout time.Duration
	retryDelay  time.Duration
	logger      *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollTimeout sets the long-poll wait.
func WithPollTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.pollTimeout = d
	}
}

// WithRetryDelay sets the pause after a failed poll.
func WithRetryDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.retryDelay = d
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller reading from source and dispatching to handler.
func NewPoller(source UpdateSource, handler TextHandler, opts ...PollerOption) *Poller {
	p := &Poller{
		source:      source,
		handler:     handler,
		pollTimeout: DefaultPollTimeout,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled, then waits for in-flight handlers.
// Commands (messages starting with "/") and non-text updates are ignored.
func (p *Poller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	var offset int64
	p.logger.Info("telegram polling started")
	for {
		updates, next, err := p.source.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				p.logger.Info("telegram polling stopped")
				return nil
			}
			p.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				p.logger.Info("telegram polling stopped")
				return nil
			case <-time.After(p.retryDelay):
			}
			continue
		}
		offset = next

		for _, u := range updates {
			chatID, text, ok := textOf(u)
			if !ok {
				continue
			}
			wg.Go(func() {
				p.handler.HandleText(ctx, chatID, text)
			})
		}
	}
}

func textOf(u Update) (int64, string, bool) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return 0, "", false
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return 0, "", false
	}
	return msg.Chat.ID, msg.Text, true
}
