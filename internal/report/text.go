package report

import (
	"io"
	"strings"

	"github.com/nao1215/asinbot/internal/model"
)

// TextWriter outputs the same message the bot would send, followed by the
// image URL when one was found.
type TextWriter struct {
	baseWriter
	chat *ChatRenderer
}

// NewTextWriter creates a TextWriter using chat for formatting.
func NewTextWriter(output io.Writer, chat *ChatRenderer) *TextWriter {
	if chat == nil {
		chat = NewChatRenderer()
	}
	return &TextWriter{baseWriter: newBaseWriter(output), chat: chat}
}

// Write outputs res as plain text.
func (w *TextWriter) Write(res *model.Resolution) (int, error) {
	var sb strings.Builder
	sb.WriteString(w.chat.Render(res))
	sb.WriteString("\n")
	if res.Enrichment.HasImage() {
		sb.WriteString("🖼 " + res.Enrichment.ImageURL + "\n")
	}
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}
