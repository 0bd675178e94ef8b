package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/asinbot/internal/model"
)

// MarkdownWriter outputs resolutions as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs res in Markdown format.
func (w *MarkdownWriter) Write(res *model.Resolution) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, res)
	w.writePrices(md, res)
	w.writeAlert(md, res)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, res *model.Resolution) {
	md.H1("Price lookup: " + res.ASIN.String())
	md.PlainText("")

	title := res.Enrichment.Title
	if title == "" {
		title = "-"
	}
	image := "-"
	if res.Enrichment.HasImage() {
		image = fmt.Sprintf("[image](%s)", res.Enrichment.ImageURL)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"ASIN", "`" + res.ASIN.String() + "`"},
			{"Title", title},
			{"Status", statusText(res)},
			{"Attempts", strconv.Itoa(res.Attempts)},
			{"Anchor Region", res.Anchor().String()},
			{"Image", image},
			{"Duration", res.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")
}

func statusText(res *model.Resolution) string {
	switch res.Outcome {
	case model.OutcomeFound:
		return "✅ Found"
	case model.OutcomeNotFound:
		return "⚠️ Not found"
	case model.OutcomeError:
		return "❌ Error - " + res.ErrorMessage
	default:
		return res.Outcome.String()
	}
}

func (w *MarkdownWriter) writePrices(md *markdown.Markdown, res *model.Resolution) {
	md.H2("Prices")
	md.PlainText("")

	if res.Table.IsEmpty() {
		md.PlainText("No listings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, res.Table.Len())
	for _, e := range res.Table.Entries {
		estimate := "-"
		if e.HasConversion() {
			estimate = strconv.FormatInt(e.Converted.IntPart(), 10) + " TL"
		}
		label := e.Label
		if label == "" {
			label = e.Region.String()
		}
		rows = append(rows, []string{
			label,
			e.DisplayedPrice,
			estimate,
			fmt.Sprintf("[%s](%s)", e.Region.Domain(), e.Link),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Region", "Price", "Estimate", "Link"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res *model.Resolution) {
	switch res.Outcome {
	case model.OutcomeFound:
		md.Note("Estimates use static exchange rates and are truncated to whole units.")
	case model.OutcomeNotFound:
		md.Warningf("No listing found after %d attempt(s).", res.Attempts)
	case model.OutcomeError:
		md.Cautionf("Lookup failed after %d attempt(s).", res.Attempts)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by asinbot at %s*", time.Now().UTC().Format(time.RFC3339))
}
