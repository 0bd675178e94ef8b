package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/asinbot/internal/imaging"
	"github.com/nao1215/asinbot/internal/model"
	"github.com/nao1215/asinbot/internal/pipeline"
	"github.com/nao1215/asinbot/internal/report"
	"github.com/nao1215/asinbot/internal/telegram"
	"github.com/nao1215/asinbot/internal/watchdog"
)

// DefaultStartDelay is the pause before a message is handled.
const DefaultStartDelay = 2 * time.Second

// PriceResolver resolves an identifier into reply parts.
type PriceResolver interface {
	ResolvePrices(ctx context.Context, asin model.ASIN) (text, imageURL, title string, anchor model.RegionCode, err error)
}

// Replier sends replies into a chat.
type Replier interface {
	SendMessage(ctx context.Context, chatID int64, text, parseMode string) error
	SendPhoto(ctx context.Context, chatID int64, filename string, data []byte, caption, parseMode string) error
}

// PhotoFetcher downloads and prepares a product image.
type PhotoFetcher interface {
	Fetch(ctx context.Context, imageURL string) (*imaging.Photo, error)
}

// Handler handles incoming text messages.
type Handler struct {
	resolver   PriceResolver
	replier    Replier
	photos     PhotoFetcher
	renderer   *report.ChatRenderer
	liveness   *watchdog.Liveness
	startDelay time.Duration
	sleep      pipeline.Sleeper
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithStartDelay sets the pause before handling a message.
func WithStartDelay(d time.Duration) Option {
	return func(h *Handler) {
		h.startDelay = d
	}
}

// WithSleeper replaces the context-aware sleep used for the start delay.
func WithSleeper(s pipeline.Sleeper) Option {
	return func(h *Handler) {
		h.sleep = s
	}
}

// WithLiveness makes every handled message count as a sign of life.
func WithLiveness(l *watchdog.Liveness) Option {
	return func(h *Handler) {
		h.liveness = l
	}
}

// WithRenderer sets the chat renderer used to assemble replies.
func WithRenderer(r *report.ChatRenderer) Option {
	return func(h *Handler) {
		h.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a Handler. photos may be nil to always reply with text.
func NewHandler(resolver PriceResolver, replier Replier, photos PhotoFetcher, opts ...Option) *Handler {
	h := &Handler{
		resolver:   resolver,
		replier:    replier,
		photos:     photos,
		renderer:   report.NewChatRenderer(),
		startDelay: DefaultStartDelay,
		sleep:      pipeline.SleepContext,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleText answers one message from chatID.
func (h *Handler) HandleText(ctx context.Context, chatID int64, text string) {
	if h.liveness != nil {
		h.liveness.Touch(h.now())
	}
	if err := h.sleep(ctx, h.startDelay); err != nil {
		return
	}

	asin, err := model.ParseASIN(text)
	if err != nil {
		h.logger.Debug("rejected input", "chat", chatID, "error", err)
		h.send(ctx, chatID, report.UsageHint, "")
		return
	}

	h.send(ctx, chatID, report.ProgressText, "")

	prices, imageURL, title, anchor, err := h.resolver.ResolvePrices(ctx, asin)
	if err != nil {
		h.logger.Warn("lookup aborted", "asin", asin, "error", err)
		return
	}
	message := h.renderer.Message(title, prices)

	if h.photos != nil && strings.HasPrefix(imageURL, "http") {
		err := h.sendPhoto(ctx, chatID, imageURL, message)
		if err == nil {
			h.logger.Info("replied with photo", "asin", asin, "anchor", anchor)
			return
		}
		h.logger.Warn("image not sent", "asin", asin, "error", err)
	}

	h.send(ctx, chatID, message, telegram.ParseModeMarkdown)
}

func (h *Handler) sendPhoto(ctx context.Context, chatID int64, imageURL, caption string) error {
	photo, err := h.photos.Fetch(ctx, imageURL)
	if err != nil {
		return err
	}
	return h.replier.SendPhoto(ctx, chatID, photo.Filename, photo.Data, caption, telegram.ParseModeMarkdown)
}

// send delivers text. A formatted message rejected by the API is resent as
// plain text so the user still gets an answer.
func (h *Handler) send(ctx context.Context, chatID int64, text, parseMode string) {
	err := h.replier.SendMessage(ctx, chatID, text, parseMode)
	if err != nil && parseMode != "" && errors.Is(err, telegram.ErrAPI) {
		h.logger.Debug("formatted reply rejected, resending as plain text", "chat", chatID, "error", err)
		err = h.replier.SendMessage(ctx, chatID, text, "")
	}
	if err != nil {
		h.logger.Warn("reply failed", "chat", chatID, "error", err)
	}
}
