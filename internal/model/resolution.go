package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a price lookup ended.
type Outcome int

const (
	// OutcomePending indicates the price lookup has not run yet.
	OutcomePending Outcome = iota
	// OutcomeFound indicates at least one listing was parsed.
	OutcomeFound
	// OutcomeNotFound indicates the aggregator page had no listings.
	OutcomeNotFound
	// OutcomeError indicates every attempt failed at the transport level.
	OutcomeError
)

// String returns a lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	default:
		return unknownStr
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

const (
	unknownStr = "unknown"

	// fallbackTitleSuffix is appended to the identifier when no title is known.
	fallbackTitleSuffix = " Ürünü"
)

// Enrichment holds the product image and title scraped from the retail site.
type Enrichment struct {
	// ImageURL is empty when no image is available.
	ImageURL string `json:"image_url,omitempty"`

	// Title is the product title, or FallbackTitle when the scrape failed.
	Title string `json:"title"`
}

// HasImage reports whether an image URL was found.
func (e Enrichment) HasImage() bool {
	return e.ImageURL != ""
}

// FallbackTitle returns the synthesized title used when enrichment fails.
func FallbackTitle(asin ASIN) string {
	return asin.String() + fallbackTitleSuffix
}

// FallbackEnrichment returns the degraded enrichment for asin.
func FallbackEnrichment(asin ASIN) Enrichment {
	return Enrichment{Title: FallbackTitle(asin)}
}

// Resolution accumulates everything learned while resolving one identifier.
// Pipeline steps fill it in order: prices first, then enrichment.
type Resolution struct {
	// ID correlates log lines of one resolution.
	ID string `json:"id"`

	// ASIN is the identifier being resolved.
	ASIN ASIN `json:"asin"`

	// Table is the parsed price table of the final attempt.
	Table PriceTable `json:"table"`

	// Outcome is the classification of the price lookup.
	Outcome Outcome `json:"outcome"`

	// Attempts is the number of aggregator requests made.
	Attempts int `json:"attempts"`

	// Err is the last transport error when Outcome is OutcomeError.
	Err error `json:"-"`

	// ErrorMessage is Err as text, for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// Enrichment is the image and title for the anchor region.
	Enrichment Enrichment `json:"enrichment"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// StartedAt is when the resolution began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total time spent, set when the pipeline finishes.
	Duration time.Duration `json:"duration"`
}

// NewResolution creates an empty resolution for asin.
func NewResolution(asin ASIN) *Resolution {
	return &Resolution{
		ID:             uuid.NewString(),
		ASIN:           asin,
		Table:          NewPriceTable(nil),
		Outcome:        OutcomePending,
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// Fail records a terminal transport failure.
func (r *Resolution) Fail(err error) {
	r.Outcome = OutcomeError
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.Table = NewPriceTable(nil)
}

// Anchor returns the region used for enrichment.
func (r *Resolution) Anchor() RegionCode {
	if r.Outcome == OutcomeError || r.Table.Anchor == "" {
		return DefaultRegion
	}
	return r.Table.Anchor
}
