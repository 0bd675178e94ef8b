package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/asinbot/internal/model"
)

func newTestPipelineFactory(fetcher PriceFetcher, enricher ProductEnricher) func() *Pipeline {
	return func() *Pipeline {
		sleeper := &recordingSleeper{}
		p := New(WithLogger(discardLogger()))
		p.AddSteps(
			NewPriceStep(fetcher, WithSleeper(sleeper.sleep), WithPriceLogger(discardLogger())),
			NewEnrichStep(enricher, WithEnrichLogger(discardLogger())),
		)
		return p
	}
}

func outcomeRenderer() PriceRenderer {
	return rendererFunc(func(res *model.Resolution) string {
		return res.Outcome.String()
	})
}

// TestResolver tests the combined price and enrichment contract.
func TestResolver(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{script: []fetchResult{{table: foundTable("ES")}}}
		enricher := &fakeEnricher{result: model.Enrichment{ImageURL: "https://img.test/a.jpg", Title: "Mouse"}}
		r := NewResolver(newTestPipelineFactory(fetcher, enricher), outcomeRenderer(), WithResolverLogger(discardLogger()))

		text, image, title, anchor, err := r.ResolvePrices(context.Background(), testASIN)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "found" || image != "https://img.test/a.jpg" || title != "Mouse" || anchor != "ES" {
			t.Errorf("unexpected result %q %q %q %q", text, image, title, anchor)
		}
	})

	t.Run("enrichment failure still returns prices", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{script: []fetchResult{{table: foundTable("DE")}}}
		r := NewResolver(newTestPipelineFactory(fetcher, &fakeEnricher{}), outcomeRenderer(), WithResolverLogger(discardLogger()))

		text, image, title, anchor, err := r.ResolvePrices(context.Background(), testASIN)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "found" || image != "" || title != "B0DZGHZQ7V Ürünü" || anchor != "DE" {
			t.Errorf("unexpected result %q %q %q %q", text, image, title, anchor)
		}
	})

	t.Run("terminal fetch error", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{script: []fetchResult{{err: errors.New("dial tcp: refused")}}}
		enricher := &fakeEnricher{}
		r := NewResolver(newTestPipelineFactory(fetcher, enricher), outcomeRenderer(), WithResolverLogger(discardLogger()))

		res, err := r.Resolve(context.Background(), testASIN)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Outcome != model.OutcomeError || res.Anchor() != model.DefaultRegion {
			t.Errorf("unexpected resolution %s %s", res.Outcome, res.Anchor())
		}
		if res.Enrichment.Title != "" || len(enricher.calledWith()) != 0 {
			t.Error("expected enrichment to be skipped")
		}
		if res.Attempts != DefaultMaxAttempts {
			t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, res.Attempts)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := &scriptedFetcher{script: []fetchResult{{table: foundTable("DE")}}}
		r := NewResolver(newTestPipelineFactory(fetcher, &fakeEnricher{}), outcomeRenderer(), WithResolverLogger(discardLogger()))
		if _, _, _, _, err := r.ResolvePrices(ctx, testASIN); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
