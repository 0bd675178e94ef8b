package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/asinbot/internal/model"
	"github.com/nao1215/asinbot/internal/netclient"
)

// DefaultEnrichTimeout bounds the single retail request.
const DefaultEnrichTimeout = 15 * time.Second

// Enricher looks up the image and title of a product on the retail site.
// It makes exactly one attempt and never returns an error.
type Enricher struct {
	clients     *netclient.Factory
	parser      *ProductParser
	retailURL   string
	timeout     time.Duration
	maxBodySize int64
	headers     map[string]string
	logger      *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithEnrichRetailURL sets the retail URL template.
func WithEnrichRetailURL(template string) EnricherOption {
	return func(e *Enricher) {
		if template != "" {
			e.retailURL = template
		}
	}
}

// WithEnrichTimeout sets the request timeout.
func WithEnrichTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithEnricherLogger sets the logger for swallowed failures.
func WithEnricherLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnricher creates an Enricher.
func NewEnricher(clients *netclient.Factory, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		clients:     clients,
		parser:      NewProductParser(),
		retailURL:   model.DefaultRetailURL,
		timeout:     DefaultEnrichTimeout,
		maxBodySize: DefaultMaxBodySize,
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fetches the product page for asin in region.
// Any failure yields an empty image and the fallback title.
func (e *Enricher) Enrich(ctx context.Context, asin model.ASIN, region model.RegionCode) model.Enrichment {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	client := e.clients.New(e.timeout)
	defer client.CloseIdleConnections()

	pageURL := model.ProductURL(e.retailURL, region, asin)
	body, err := getPage(ctx, client, pageURL, e.headers, e.maxBodySize)
	if err != nil {
		e.logger.Warn("enrichment failed",
			slog.String("asin", asin.String()),
			slog.String("region", region.String()),
			slog.String("error", err.Error()))
		return model.FallbackEnrichment(asin)
	}

	info, err := e.parser.Parse(bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("enrichment parse failed",
			slog.String("asin", asin.String()),
			slog.String("error", err.Error()))
		return model.FallbackEnrichment(asin)
	}

	out := model.Enrichment{ImageURL: info.ImageURL, Title: info.Title}
	if out.Title == "" {
		out.Title = model.FallbackTitle(asin)
	}
	return out
}
