package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/uistream/internal/generation"
)

type StreamRenderer interface {
	Handle(event generation.Event) error
	Flush() error
}

// NewStreamRenderer selects the renderer for format. Diagnostics go to stderr.
func NewStreamRenderer(format string, stdout, stderr io.Writer, includeSummary bool) (StreamRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatRaw, "":
		return NewRawStreamRenderer(stdout, stderr, includeSummary), nil
	case FormatJSON:
		return NewJSONStreamRenderer(stdout, stderr, includeSummary), nil
	case FormatSSE:
		return NewSSEStreamRenderer(stdout, includeSummary), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorFormat, format)
	}
}
