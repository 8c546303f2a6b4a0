package output

import (
	"encoding/json"
	"io"

	"github.com/temirov/uistream/internal/generation"
)

type jsonStreamRenderer struct {
	encoder        *json.Encoder
	stderr         io.Writer
	includeSummary bool
}

// NewJSONStreamRenderer writes one JSON document per event, newline delimited.
func NewJSONStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	renderer := &jsonStreamRenderer{stderr: stderr, includeSummary: includeSummary}
	if stdout != nil {
		renderer.encoder = json.NewEncoder(stdout)
		renderer.encoder.SetEscapeHTML(false)
	}
	return renderer
}

func (renderer *jsonStreamRenderer) Handle(event generation.Event) error {
	if renderer.encoder == nil {
		return nil
	}
	if event.Kind == generation.EventKindSummary && !renderer.includeSummary {
		return nil
	}
	return renderer.encoder.Encode(event)
}

func (renderer *jsonStreamRenderer) Flush() error {
	return nil
}
