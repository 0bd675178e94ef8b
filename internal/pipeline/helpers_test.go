package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/asinbot/internal/model"
)

var testASIN = model.MustParseASIN("B0DZGHZQ7V")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func foundTable(regions ...model.RegionCode) model.PriceTable {
	entries := make([]model.PriceEntry, 0, len(regions))
	for _, r := range regions {
		entries = append(entries, model.PriceEntry{Region: r, DisplayedPrice: "10 €"})
	}
	return model.NewPriceTable(entries)
}

type fetchResult struct {
	table model.PriceTable
	err   error
}

// scriptedFetcher replays results in order and repeats the last one.
type scriptedFetcher struct {
	mu     sync.Mutex
	script []fetchResult
	calls  int
}

func (f *scriptedFetcher) FetchPrices(_ context.Context, _ model.ASIN) (model.PriceTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.calls++
	return f.script[i].table, f.script[i].err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum time.Duration
	for _, w := range s.waits {
		sum += w
	}
	return sum
}

// fakeEnricher returns a fixed enrichment and records the region it was asked for.
type fakeEnricher struct {
	mu      sync.Mutex
	result  model.Enrichment
	regions []model.RegionCode
}

func (e *fakeEnricher) Enrich(_ context.Context, asin model.ASIN, region model.RegionCode) model.Enrichment {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.regions = append(e.regions, region)
	if e.result.Title == "" {
		return model.FallbackEnrichment(asin)
	}
	return e.result
}

func (e *fakeEnricher) calledWith() []model.RegionCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.RegionCode(nil), e.regions...)
}

type rendererFunc func(res *model.Resolution) string

func (f rendererFunc) RenderPrices(res *model.Resolution) string {
	return f(res)
}
