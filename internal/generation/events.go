package generation

import (
	"time"

	"github.com/temirov/uistream/internal/binding"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindPlan    EventKind = "plan"
	EventKindContext EventKind = "context"
	EventKindUnit    EventKind = "unit"
	EventKindWarning EventKind = "warning"
	EventKindSummary EventKind = "summary"
	EventKindDone    EventKind = "done"
	EventKindError   EventKind = "error"
)

type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	RequestID string    `json:"requestId,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Plan    *PlanEvent    `json:"plan,omitempty"`
	Context *ContextEvent `json:"context,omitempty"`
	Unit    *UnitEvent    `json:"unit,omitempty"`
	Summary *SummaryEvent `json:"summary,omitempty"`
	Message *LogEvent     `json:"message,omitempty"`
	Err     *ErrorEvent   `json:"error,omitempty"`
}

// Terminal reports whether the event ends a run.
func (event Event) Terminal() bool {
	return event.Kind == EventKindDone || event.Kind == EventKindError
}

// Payload returns the kind-specific body of the event.
func (event Event) Payload() any {
	switch event.Kind {
	case EventKindPlan:
		return event.Plan
	case EventKindContext:
		if event.Context == nil {
			return binding.Context{}
		}
		return event.Context.Data
	case EventKindUnit:
		return event.Unit
	case EventKindWarning:
		return event.Message
	case EventKindSummary:
		return event.Summary
	case EventKindError:
		return event.Err
	default:
		return struct{}{}
	}
}

type PlanEvent struct {
	Query    string   `json:"query"`
	Sources  []string `json:"sources"`
	Intent   string   `json:"intent,omitempty"`
	Approach string   `json:"approach,omitempty"`
	// Planned is false when the caller supplied the references.
	Planned bool `json:"planned"`
}

type ContextEvent struct {
	Data binding.Context `json:"data"`
}

type UnitEvent struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
	// Flushed marks the trailing remainder emitted at end of stream.
	Flushed bool `json:"flushed,omitempty"`
}

type SummaryEvent struct {
	Units    int    `json:"units"`
	Bytes    int64  `json:"bytes"`
	Warnings int    `json:"warnings"`
	Tokens   int    `json:"tokens,omitempty"`
	Model    string `json:"model,omitempty"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
