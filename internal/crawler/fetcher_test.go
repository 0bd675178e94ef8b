package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/asinbot/internal/model"
	"github.com/nao1215/asinbot/internal/netclient"
)

func newTestFactory(t *testing.T) *netclient.Factory {
	t.Helper()

	f, err := netclient.NewFactory(netclient.WithHeaders(BrowserHeaders()))
	if err != nil {
		t.Fatalf("failed to create factory: %v", err)
	}
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestFetcher tests single aggregator requests.
func TestFetcher(t *testing.T) {
	t.Parallel()

	asin := model.MustParseASIN("B0DZGHZQ7V")

	t.Run("requests the product path and parses the page", func(t *testing.T) {
		t.Parallel()

		paths := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths <- r.URL.Path
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, aggregatorFixture)
		}))
		defer server.Close()

		fetcher := NewFetcher(newTestFactory(t), newTestPriceParser(), WithAggregatorURL(server.URL+"/"))
		table, err := fetcher.FetchPrices(context.Background(), asin)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := <-paths; got != "/amazon/B0DZGHZQ7V/" {
			t.Errorf("unexpected path %q", got)
		}
		if table.Len() != 4 {
			t.Errorf("expected 4 entries, got %d", table.Len())
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		fetcher := NewFetcher(newTestFactory(t), newTestPriceParser(), WithAggregatorURL(server.URL))
		_, err := fetcher.FetchPrices(context.Background(), asin)
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("page without listings is not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>no offers</body></html>`)
		}))
		defer server.Close()

		fetcher := NewFetcher(newTestFactory(t), newTestPriceParser(), WithAggregatorURL(server.URL))
		table, err := fetcher.FetchPrices(context.Background(), asin)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.IsEmpty() {
			t.Errorf("expected empty table")
		}
	})

	t.Run("attempt timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		fetcher := NewFetcher(newTestFactory(t), newTestPriceParser(),
			WithAggregatorURL(server.URL), WithAttemptTimeout(50*time.Millisecond))
		if _, err := fetcher.FetchPrices(context.Background(), asin); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("URL", func(t *testing.T) {
		t.Parallel()

		fetcher := NewFetcher(newTestFactory(t), newTestPriceParser())
		if got := fetcher.URL(asin); got != "https://webprice.eu/amazon/B0DZGHZQ7V/" {
			t.Errorf("unexpected URL %q", got)
		}
	})
}

// TestEnricher tests retail page enrichment.
func TestEnricher(t *testing.T) {
	t.Parallel()

	asin := model.MustParseASIN("B0DZGHZQ7V")

	t.Run("extracts image and title for the region", func(t *testing.T) {
		t.Parallel()

		type request struct {
			path   string
			header http.Header
		}
		requests := make(chan request, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests <- request{path: r.URL.Path, header: r.Header.Clone()}
			fmt.Fprint(w, `<div id="imgTagWrapperId"><img src="https://img.test/a.jpg"></div><h1 id="productTitle"> Mouse </h1>`)
		}))
		defer server.Close()

		enricher := NewEnricher(newTestFactory(t), WithEnrichRetailURL(server.URL+"/{domain}"), WithEnricherLogger(discardLogger()))
		got := enricher.Enrich(context.Background(), asin, "DE")

		req := <-requests
		if req.path != "/de/dp/B0DZGHZQ7V" {
			t.Errorf("unexpected path %q", req.path)
		}
		if req.header.Get("User-Agent") != "Mozilla/5.0" {
			t.Errorf("unexpected User-Agent %q", req.header.Get("User-Agent"))
		}
		if req.header.Get("Accept-Language") != "en-US,en;q=0.9" {
			t.Errorf("unexpected Accept-Language %q", req.header.Get("Accept-Language"))
		}
		if req.header.Get("Accept") != "text/html" {
			t.Errorf("unexpected Accept %q", req.header.Get("Accept"))
		}
		if got.ImageURL != "https://img.test/a.jpg" || got.Title != "Mouse" {
			t.Errorf("unexpected enrichment %+v", got)
		}
	})

	t.Run("missing title uses fallback", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<div id="imgTagWrapperId"><img src="https://img.test/a.jpg"></div>`)
		}))
		defer server.Close()

		enricher := NewEnricher(newTestFactory(t), WithEnrichRetailURL(server.URL), WithEnricherLogger(discardLogger()))
		got := enricher.Enrich(context.Background(), asin, "COM")
		if got.Title != "B0DZGHZQ7V Ürünü" {
			t.Errorf("expected fallback title, got %q", got.Title)
		}
		if got.ImageURL != "https://img.test/a.jpg" {
			t.Errorf("expected image to be kept, got %q", got.ImageURL)
		}
	})

	t.Run("failure yields fallback", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		enricher := NewEnricher(newTestFactory(t), WithEnrichRetailURL(server.URL), WithEnricherLogger(discardLogger()))
		got := enricher.Enrich(context.Background(), asin, "DE")
		if got != model.FallbackEnrichment(asin) {
			t.Errorf("expected fallback enrichment, got %+v", got)
		}
	})

	t.Run("unreachable host yields fallback", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		base := server.URL
		server.Close()

		enricher := NewEnricher(newTestFactory(t), WithEnrichRetailURL(base), WithEnricherLogger(discardLogger()))
		got := enricher.Enrich(context.Background(), asin, "DE")
		if got.ImageURL != "" || got.Title != model.FallbackTitle(asin) {
			t.Errorf("expected fallback enrichment, got %+v", got)
		}
	})
}
