package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/uistream/internal/generation"
)

const sseFrameFormat = "event: %s\ndata: %s\n\n"

// WriteSSE writes event as one server-sent-events frame carrying its payload.
func WriteSSE(writer io.Writer, event generation.Event) error {
	var payload bytes.Buffer
	encoder := json.NewEncoder(&payload)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(event.Payload()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, sseFrameFormat, event.Kind, bytes.TrimRight(payload.Bytes(), "\n"))
	return err
}

type sseStreamRenderer struct {
	stdout         io.Writer
	includeSummary bool
}

// NewSSEStreamRenderer renders events in the wire format served over HTTP.
func NewSSEStreamRenderer(stdout io.Writer, includeSummary bool) StreamRenderer {
	return &sseStreamRenderer{stdout: stdout, includeSummary: includeSummary}
}

func (renderer *sseStreamRenderer) Handle(event generation.Event) error {
	if renderer.stdout == nil {
		return nil
	}
	if event.Kind == generation.EventKindSummary && !renderer.includeSummary {
		return nil
	}
	return WriteSSE(renderer.stdout, event)
}

func (renderer *sseStreamRenderer) Flush() error {
	return nil
}
