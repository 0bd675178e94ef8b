package crawler

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/nao1215/asinbot/internal/model"
	"github.com/nao1215/asinbot/internal/netclient"
)

const (
	// DefaultAggregatorURL is the price aggregator base URL.
	DefaultAggregatorURL = "https://webprice.eu"

	// DefaultAttemptTimeout bounds a single aggregator request.
	DefaultAttemptTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// BrowserHeaders returns the headers every outgoing request carries unless it
// sets its own. Pass them to netclient.WithHeaders.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// Fetcher performs one aggregator request per call.
// Retry policy belongs to the caller.
type Fetcher struct {
	clients     *netclient.Factory
	parser      *PriceParser
	baseURL     string
	timeout     time.Duration
	maxBodySize int64
	headers     map[string]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithAggregatorURL sets the aggregator base URL.
func WithAggregatorURL(base string) FetcherOption {
	return func(f *Fetcher) {
		if base != "" {
			f.baseURL = base
		}
	}
}

// WithAttemptTimeout sets the per-request timeout.
func WithAttemptTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(clients *netclient.Factory, parser *PriceParser, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		clients:     clients,
		parser:      parser,
		baseURL:     DefaultAggregatorURL,
		timeout:     DefaultAttemptTimeout,
		maxBodySize: DefaultMaxBodySize,
		headers: map[string]string{
			"User-Agent": browserUserAgent,
			"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the aggregator page for asin.
func (f *Fetcher) URL(asin model.ASIN) string {
	return strings.TrimSuffix(f.baseURL, "/") + "/amazon/" + asin.String() + "/"
}

// FetchPrices fetches and parses the aggregator page for asin.
// Transport failures and non-2xx answers are returned as errors; a page
// without listings yields an empty table and a nil error.
func (f *Fetcher) FetchPrices(ctx context.Context, asin model.ASIN) (model.PriceTable, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	client := f.clients.New(f.timeout)
	defer client.CloseIdleConnections()

	body, err := getPage(ctx, client, f.URL(asin), f.headers, f.maxBodySize)
	if err != nil {
		return model.PriceTable{}, err
	}
	return f.parser.Parse(bytes.NewReader(body), asin)
}
