package model

import "github.com/shopspring/decimal"

// PriceEntry is one marketplace listing extracted from the aggregator page.
type PriceEntry struct {
	// Region is the normalized marketplace code.
	Region RegionCode `json:"region"`

	// Label is the display label for Region.
	Label string `json:"label"`

	// DisplayedPrice is the price text exactly as listed, e.g. "19,99 €".
	DisplayedPrice string `json:"displayed_price"`

	// NumericPrice is the number extracted from DisplayedPrice.
	// Nil when the text has no parsable number.
	NumericPrice *decimal.Decimal `json:"numeric_price,omitempty"`

	// Converted is the truncated estimate in the target currency.
	// Nil when NumericPrice is nil or the conversion failed.
	Converted *decimal.Decimal `json:"converted_estimate,omitempty"`

	// Link is the retail product URL for Region.
	Link string `json:"link"`
}

// HasConversion reports whether the entry carries a converted estimate.
func (e PriceEntry) HasConversion() bool {
	return e.Converted != nil
}

// PriceTable is the ordered result of parsing one aggregator page.
// Entries are in document order. An empty table means the product was not found.
type PriceTable struct {
	// Entries holds the listings in document order.
	Entries []PriceEntry `json:"entries"`

	// Anchor is the region used for enrichment: the first non-empty entry
	// region, or DefaultRegion when there is none.
	Anchor RegionCode `json:"anchor"`
}

// NewPriceTable builds a table and derives its anchor region.
func NewPriceTable(entries []PriceEntry) PriceTable {
	if len(entries) == 0 {
		return PriceTable{Entries: []PriceEntry{}, Anchor: DefaultRegion}
	}
	anchor := DefaultRegion
	for _, e := range entries {
		if e.Region != "" {
			anchor = e.Region
			break
		}
	}
	return PriceTable{Entries: entries, Anchor: anchor}
}

// IsEmpty reports whether no listings were found.
func (t PriceTable) IsEmpty() bool {
	return len(t.Entries) == 0
}

// Len returns the number of listings.
func (t PriceTable) Len() int {
	return len(t.Entries)
}
