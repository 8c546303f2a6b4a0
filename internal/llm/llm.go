// Package llm defines the text-completion collaborators consumed by the generation loop
// together with adapters for hosted providers.
package llm

import (
	"context"
	"errors"
)

// Prompt is one system/user message pair.
type Prompt struct {
	System string
	User   string
}

// TokenStream yields generated text deltas. Next returns io.EOF once the stream ends.
// Close releases the underlying connection and may be called more than once.
type TokenStream interface {
	Next() (string, error)
	Close() error
}

// Generator opens token streams.
type Generator interface {
	Stream(ctx context.Context, prompt Prompt) (TokenStream, error)
}

// Completer returns a whole completion in one call.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Plan is the planner's decision for one query.
type Plan struct {
	Sources  []string `json:"sources"`
	Intent   string   `json:"intent"`
	Approach string   `json:"approach"`
}

// Planner chooses the data references a query needs.
type Planner interface {
	Plan(ctx context.Context, query string, sources []string) (Plan, error)
}

var (
	// ErrMissingAPIKey is returned when a hosted provider has no credentials.
	ErrMissingAPIKey = errors.New("api key is not configured")
	// ErrMissingModel is returned when a hosted provider has no model name.
	ErrMissingModel = errors.New("model is not configured")
	// ErrEmptyCompletion is returned when a provider answers without content.
	ErrEmptyCompletion = errors.New("completion returned no content")
)
