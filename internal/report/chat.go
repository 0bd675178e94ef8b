package report

import (
	"fmt"
	"strings"

	"github.com/nao1215/asinbot/internal/model"
)

// Fixed reply texts.
const (
	// UsageHint answers input that is not a valid ASIN.
	UsageHint = "⚠️ Lütfen geçerli bir ASIN gönderin. Örnek: " + string(model.ExampleASIN)

	// ProgressText is sent before a lookup starts.
	ProgressText = "🔍 Fiyatlar çekiliyor, lütfen bekleyiniz..."

	// NotFoundText replaces the price block when no listing was found.
	NotFoundText = "❌ Ürün bulunamadı veya fiyat bilgisi yok."

	// ErrorPrefix precedes the error text after a terminal fetch failure.
	ErrorPrefix = "❌ Hata oluştu: "

	// DefaultSignature closes every reply.
	DefaultSignature = "🔥Ens🔥Hsn🔥Ibr🔥Kad🔥Onr🔥Sdk🔥Ilk🔥"
)

// ChatRenderer formats resolutions as Markdown chat messages.
type ChatRenderer struct {
	signature string
}

// ChatOption configures a ChatRenderer.
type ChatOption func(*ChatRenderer)

// WithSignature replaces the closing signature.
func WithSignature(signature string) ChatOption {
	return func(r *ChatRenderer) {
		if signature != "" {
			r.signature = signature
		}
	}
}

// NewChatRenderer creates a ChatRenderer.
func NewChatRenderer(opts ...ChatOption) *ChatRenderer {
	r := &ChatRenderer{signature: DefaultSignature}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderPrices returns the price block for res: one line per listing,
// the not-found text, or the error text.
func (r *ChatRenderer) RenderPrices(res *model.Resolution) string {
	switch res.Outcome {
	case model.OutcomeFound:
		lines := make([]string, 0, res.Table.Len())
		for _, e := range res.Table.Entries {
			lines = append(lines, r.PriceLine(e))
		}
		return strings.Join(lines, "\n")
	case model.OutcomeError:
		return ErrorPrefix + res.ErrorMessage
	default:
		return NotFoundText
	}
}

// PriceLine formats one listing. Listings without a converted estimate
// get the short link form.
func (r *ChatRenderer) PriceLine(e model.PriceEntry) string {
	label := e.Label
	if label == "" {
		label = e.Region.String()
	}
	if !e.HasConversion() {
		return fmt.Sprintf("%s: 💰 *%s* → Amazon [🔗](%s)", label, e.DisplayedPrice, e.Link)
	}
	return fmt.Sprintf("%s: 💰 *%s* → Amazon %d TL [🔗 Bağlantıya git](%s)",
		label, e.DisplayedPrice, e.Converted.IntPart(), e.Link)
}

// Message assembles the full reply. An empty title is left out.
func (r *ChatRenderer) Message(title, prices string) string {
	if title == "" {
		return prices + "\n\n" + r.signature
	}
	return "*" + title + "*\n\n" + prices + "\n\n" + r.signature
}

// Render returns the full reply for res.
func (r *ChatRenderer) Render(res *model.Resolution) string {
	return r.Message(res.Enrichment.Title, r.RenderPrices(res))
}
