package crawler

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nao1215/asinbot/internal/currency"
	"github.com/nao1215/asinbot/internal/model"
)

const aggregatorFixture = `<html><body>
<div class="amzbox" data-id="amazon-de"><span class="offered-price"> 19,99 € </span></div>
<div class="amzbox shadow" data-id="amazon-pl"><div><span class="offered-price">zł <b>89,00</b></span></div></div>
<div class="amzbox" data-id="amazon-com.be"><span class="offered-price">Currently unavailable</span></div>
<div class="amzbox" data-id="amazon-jp"></div>
<div class="other" data-id="amazon-fr"><span class="offered-price">1,00 €</span></div>
</body></html>`

func newTestPriceParser() *PriceParser {
	regions := model.DefaultRegionTable()
	return NewPriceParser(regions, currency.NewConverter(regions))
}

// TestPriceParser tests aggregator page parsing.
func TestPriceParser(t *testing.T) {
	t.Parallel()

	asin := model.MustParseASIN("B0DZGHZQ7V")

	t.Run("extracts listings in document order", func(t *testing.T) {
		t.Parallel()

		table, err := newTestPriceParser().Parse(strings.NewReader(aggregatorFixture), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if table.Len() != 4 {
			t.Fatalf("expected 4 entries, got %d", table.Len())
		}
		if table.Anchor != "DE" {
			t.Errorf("expected anchor DE, got %q", table.Anchor)
		}

		wantRegions := []model.RegionCode{"DE", "PL", "COM.BE", "JP"}
		for i, want := range wantRegions {
			if table.Entries[i].Region != want {
				t.Errorf("entry %d: expected region %q, got %q", i, want, table.Entries[i].Region)
			}
		}
	})

	t.Run("converts parsable prices", func(t *testing.T) {
		t.Parallel()

		table, err := newTestPriceParser().Parse(strings.NewReader(aggregatorFixture), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		de := table.Entries[0]
		if de.DisplayedPrice != "19,99 €" {
			t.Errorf("expected trimmed price text, got %q", de.DisplayedPrice)
		}
		if de.Label != "🇩🇪 ALM" {
			t.Errorf("expected DE label, got %q", de.Label)
		}
		if de.NumericPrice == nil || !de.NumericPrice.Equal(decimal.RequireFromString("19.99")) {
			t.Errorf("expected numeric 19.99, got %v", de.NumericPrice)
		}
		if de.Converted == nil || !de.Converted.Equal(decimal.NewFromInt(939)) {
			t.Errorf("expected converted 939, got %v", de.Converted)
		}
		if de.Link != "https://www.amazon.de/dp/B0DZGHZQ7V" {
			t.Errorf("unexpected link %q", de.Link)
		}

		pl := table.Entries[1]
		if pl.DisplayedPrice != "zł89,00" {
			t.Errorf("expected joined text nodes, got %q", pl.DisplayedPrice)
		}
		if pl.Converted == nil || !pl.Converted.Equal(decimal.NewFromInt(979)) {
			t.Errorf("expected converted 979, got %v", pl.Converted)
		}
	})

	t.Run("keeps unparsable prices as degraded entries", func(t *testing.T) {
		t.Parallel()

		table, err := newTestPriceParser().Parse(strings.NewReader(aggregatorFixture), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		be := table.Entries[2]
		if be.NumericPrice != nil || be.HasConversion() {
			t.Errorf("expected no numeric price for %q", be.DisplayedPrice)
		}
		if be.Link != "https://www.amazon.com.be/dp/B0DZGHZQ7V" {
			t.Errorf("unexpected link %q", be.Link)
		}

		jp := table.Entries[3]
		if jp.DisplayedPrice != NoPriceText {
			t.Errorf("expected %q, got %q", NoPriceText, jp.DisplayedPrice)
		}
		if jp.Label != "JP" {
			t.Errorf("expected unknown region to use its code as label, got %q", jp.Label)
		}
	})

	t.Run("overflowing conversion degrades the entry", func(t *testing.T) {
		t.Parallel()

		page := `<div class="amzbox" data-id="amazon-de"><span class="offered-price">99999999999999999999 €</span></div>`
		table, err := newTestPriceParser().Parse(strings.NewReader(page), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		de := table.Entries[0]
		if de.NumericPrice == nil {
			t.Fatal("expected numeric price")
		}
		if de.HasConversion() {
			t.Errorf("expected no conversion, got %v", de.Converted)
		}
	})

	t.Run("empty page yields empty table anchored on COM", func(t *testing.T) {
		t.Parallel()

		table, err := newTestPriceParser().Parse(strings.NewReader(`<html><body><p>nothing</p></body></html>`), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if !table.IsEmpty() {
			t.Errorf("expected empty table, got %d entries", table.Len())
		}
		if table.Anchor != model.DefaultRegion {
			t.Errorf("expected anchor %q, got %q", model.DefaultRegion, table.Anchor)
		}
	})

	t.Run("custom retail template", func(t *testing.T) {
		t.Parallel()

		regions := model.DefaultRegionTable()
		p := NewPriceParser(regions, currency.NewConverter(regions), WithRetailURL("http://retail.test/{domain}/"))
		table, err := p.Parse(strings.NewReader(aggregatorFixture), asin)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if table.Entries[0].Link != "http://retail.test/de/dp/B0DZGHZQ7V" {
			t.Errorf("unexpected link %q", table.Entries[0].Link)
		}
	})
}

// TestExtractNumber tests numeric extraction from displayed prices.
func TestExtractNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "comma decimal", input: "19,99 €", want: "19.99", wantOK: true},
		{name: "dot decimal", input: "$24.50", want: "24.5", wantOK: true},
		{name: "integer", input: "EUR 5", want: "5", wantOK: true},
		{name: "mixed separators", input: "1.299,00 €", wantOK: false},
		{name: "no digits", input: "Fiyat yok", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ExtractNumber(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
