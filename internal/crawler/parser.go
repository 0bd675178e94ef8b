package crawler

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/nao1215/asinbot/internal/currency"
	"github.com/nao1215/asinbot/internal/model"
)

const (
	// containerClass marks one marketplace listing on the aggregator page.
	containerClass = "amzbox"

	// priceClass marks the listed price inside a container.
	priceClass = "offered-price"

	// regionAttr holds the retailer-market id, e.g. "amazon-de".
	regionAttr = "data-id"

	// NoPriceText is displayed when a listing has no price element.
	NoPriceText = "Fiyat yok"
)

// numberPattern finds the first run of digits and separators in a price text.
var numberPattern = regexp.MustCompile(`[\d.,]+`)

// PriceParser extracts a price table from an aggregator page.
// It is stateless after construction and safe for concurrent use.
type PriceParser struct {
	regions   *model.RegionTable
	converter *currency.Converter
	retailURL string
	logger    *slog.Logger
}

// PriceParserOption configures a PriceParser.
type PriceParserOption func(*PriceParser)

// WithRetailURL sets the retail URL template used for listing links.
func WithRetailURL(template string) PriceParserOption {
	return func(p *PriceParser) {
		if template != "" {
			p.retailURL = template
		}
	}
}

// WithParserLogger sets the logger used for conversion warnings.
func WithParserLogger(logger *slog.Logger) PriceParserOption {
	return func(p *PriceParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPriceParser creates a parser labelling and converting with the given table.
func NewPriceParser(regions *model.RegionTable, converter *currency.Converter, opts ...PriceParserOption) *PriceParser {
	p := &PriceParser{
		regions:   regions,
		converter: converter,
		retailURL: model.DefaultRetailURL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads an aggregator document and returns its listings in document order.
// Markup without listings yields an empty table, not an error.
func (p *PriceParser) Parse(r io.Reader, asin model.ASIN) (model.PriceTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.PriceTable{}, fmt.Errorf("failed to parse aggregator page: %w", err)
	}

	containers := findAll(doc, func(n *html.Node) bool {
		return hasClass(n, containerClass)
	})

	entries := make([]model.PriceEntry, 0, len(containers))
	for _, box := range containers {
		entries = append(entries, p.parseEntry(box, asin))
	}
	return model.NewPriceTable(entries), nil
}

func (p *PriceParser) parseEntry(box *html.Node, asin model.ASIN) model.PriceEntry {
	code := model.NormalizeRegion(getAttr(box, regionAttr))

	displayed := NoPriceText
	if el := findFirst(box, func(n *html.Node) bool { return hasClass(n, priceClass) }); el != nil {
		displayed = textContent(el)
	}

	entry := model.PriceEntry{
		Region:         code,
		Label:          p.regions.Label(code),
		DisplayedPrice: displayed,
		Link:           model.ProductURL(p.retailURL, code, asin),
	}

	num, ok := ExtractNumber(displayed)
	if !ok {
		return entry
	}
	entry.NumericPrice = &num

	converted, err := p.converter.Convert(code, num)
	if err != nil {
		p.logger.Warn("price conversion failed",
			slog.String("region", code.String()),
			slog.String("price", displayed),
			slog.String("error", err.Error()))
		return entry
	}
	entry.Converted = &converted
	return entry
}

// ExtractNumber returns the first number in a displayed price.
// Commas are read as decimal points, so "19,99 €" is 19.99. Texts mixing
// thousands and decimal separators ("1.299,00") do not parse and return false.
func ExtractNumber(text string) (decimal.Decimal, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(match, ",", "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
