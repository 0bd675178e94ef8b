package report

import (
	"io"

	"github.com/nao1215/asinbot/internal/model"
)

// Writer outputs a finished resolution.
type Writer interface {
	// Write outputs res and returns the number of bytes written.
	Write(res *model.Resolution) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
