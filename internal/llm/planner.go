package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/uistream/internal/prompts"
)

const (
	codeFence          = "```"
	jsonCodeFence      = "```json"
	promptErrorFormat  = "build planning prompt: %w"
	parsePlanErrFormat = "parse plan: %w"
)

// ErrEmptyPlan is returned when the planner reply holds no JSON document.
var ErrEmptyPlan = errors.New("planner reply is empty")

// CompletionPlanner asks a Completer to pick sources with the planning prompt.
type CompletionPlanner struct {
	completer Completer
}

// NewPlanner wraps completer.
func NewPlanner(completer Completer) *CompletionPlanner {
	return &CompletionPlanner{completer: completer}
}

// Plan runs one completion and parses its reply.
func (planner *CompletionPlanner) Plan(ctx context.Context, query string, sources []string) (Plan, error) {
	prompt, err := prompts.Planning(query, sources)
	if err != nil {
		return Plan{}, fmt.Errorf(promptErrorFormat, err)
	}
	reply, err := planner.completer.Complete(ctx, Prompt{User: prompt})
	if err != nil {
		return Plan{}, err
	}
	return ParsePlan(reply)
}

// ParsePlan extracts a Plan from a completion reply. Markdown code fences are
// stripped and malformed JSON is repaired when possible. Blank sources are dropped.
func ParsePlan(reply string) (Plan, error) {
	text := strings.ReplaceAll(reply, jsonCodeFence, "")
	text = strings.TrimSpace(strings.ReplaceAll(text, codeFence, ""))
	if text == "" {
		return Plan{}, ErrEmptyPlan
	}
	var plan Plan
	if err := unmarshalJSON(text, &plan); err != nil {
		return Plan{}, fmt.Errorf(parsePlanErrFormat, err)
	}
	sources := make([]string, 0, len(plan.Sources))
	for _, source := range plan.Sources {
		if trimmed := strings.TrimSpace(source); trimmed != "" {
			sources = append(sources, trimmed)
		}
	}
	plan.Sources = sources
	return plan, nil
}

// StaticPlanner returns a fixed plan. With no sources configured it selects every
// available source.
type StaticPlanner struct {
	Result Plan
	Err    error
}

// Plan returns a copy of the configured plan.
func (planner StaticPlanner) Plan(ctx context.Context, _ string, sources []string) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	if planner.Err != nil {
		return Plan{}, planner.Err
	}
	plan := planner.Result
	if len(plan.Sources) == 0 {
		plan.Sources = sources
	}
	plan.Sources = append([]string(nil), plan.Sources...)
	return plan, nil
}

var _ Planner = (*CompletionPlanner)(nil)
var _ Planner = StaticPlanner{}
