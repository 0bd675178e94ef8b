package model

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultRegion is the market used when no region could be determined.
const DefaultRegion RegionCode = "COM"

// DefaultRetailURL is the retail site template. The "{domain}" placeholder
// is replaced with the lower-cased region code.
const DefaultRetailURL = "https://www.amazon.{domain}"

// regionSeparator separates the retailer prefix from the market in a data-id.
const regionSeparator = "-"

// RegionCode is a marketplace key such as "DE", "COM" or "COM.BE".
type RegionCode string

// NormalizeRegion turns an aggregator data-id into a RegionCode.
//
// The code is the substring after the last separator, upper-cased:
// "amazon-de" becomes "DE". A trailing numeric suffix wins over the country,
// so "amazon-de-2" becomes "2"; the aggregator is assumed not to emit such ids.
func NormalizeRegion(dataID string) RegionCode {
	raw := strings.TrimSpace(dataID)
	if i := strings.LastIndex(raw, regionSeparator); i >= 0 {
		raw = raw[i+len(regionSeparator):]
	}
	return RegionCode(cases.Upper(language.Und).String(raw))
}

// Domain returns the top-level domain suffix used on the retail site.
func (r RegionCode) Domain() string {
	return strings.ToLower(string(r))
}

// String returns the code text.
func (r RegionCode) String() string {
	return string(r)
}

// ProductURL builds the retail product link for a region from a URL template.
func ProductURL(template string, region RegionCode, asin ASIN) string {
	if template == "" {
		template = DefaultRetailURL
	}
	base := strings.ReplaceAll(template, "{domain}", region.Domain())
	return strings.TrimSuffix(base, "/") + "/dp/" + asin.String()
}

// Region describes one marketplace.
type Region struct {
	// Code is the marketplace key.
	Code RegionCode `json:"code"`

	// Label is the flag and abbreviation shown in replies, e.g. "🇩🇪 ALM".
	Label string `json:"label"`

	// Rate converts one unit of the local currency into the target currency.
	Rate decimal.Decimal `json:"rate"`
}

// RegionTable is an immutable lookup of known marketplaces.
// It is built once at startup and shared read-only.
type RegionTable struct {
	regions map[RegionCode]Region
}

// NewRegionTable creates a table from the given regions.
// Later entries with the same code replace earlier ones.
func NewRegionTable(regions ...Region) *RegionTable {
	t := &RegionTable{regions: make(map[RegionCode]Region, len(regions))}
	for _, r := range regions {
		t.regions[r.Code] = r
	}
	return t
}

// DefaultRegions returns the built-in marketplaces with their rates to TRY.
func DefaultRegions() []Region {
	return []Region{
		{Code: "DE", Label: "🇩🇪 ALM", Rate: decimal.NewFromInt(47)},
		{Code: "FR", Label: "🇫🇷 FRA", Rate: decimal.NewFromInt(47)},
		{Code: "COM", Label: "🇺🇸 USA", Rate: decimal.NewFromInt(40)},
		{Code: "ES", Label: "🇪🇸 ISP", Rate: decimal.NewFromInt(47)},
		{Code: "PL", Label: "🇵🇱 POL", Rate: decimal.NewFromInt(11)},
		{Code: "SE", Label: "🇸🇪 ISV", Rate: decimal.NewFromInt(4)},
		{Code: "COM.BE", Label: "🇧🇪 BEL", Rate: decimal.RequireFromString("46.1")},
		{Code: "NL", Label: "🇳🇱 HOL", Rate: decimal.NewFromInt(47)},
	}
}

// DefaultRegionTable returns a table of DefaultRegions.
func DefaultRegionTable() *RegionTable {
	return NewRegionTable(DefaultRegions()...)
}

// Lookup returns the region for code and whether it is known.
func (t *RegionTable) Lookup(code RegionCode) (Region, bool) {
	if t == nil {
		return Region{}, false
	}
	r, ok := t.regions[code]
	return r, ok
}

// Label returns the display label for code, or the code itself when unknown.
func (t *RegionTable) Label(code RegionCode) string {
	if r, ok := t.Lookup(code); ok && r.Label != "" {
		return r.Label
	}
	return string(code)
}

// Codes returns all known region codes in lexical order.
func (t *RegionTable) Codes() []RegionCode {
	if t == nil {
		return nil
	}
	codes := make([]RegionCode, 0, len(t.regions))
	for code := range t.regions {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Len returns the number of known regions.
func (t *RegionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.regions)
}
