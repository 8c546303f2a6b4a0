package llm_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/uistream/internal/llm"
)

type recordingCompleter struct {
	reply  string
	prompt llm.Prompt
}

func (completer *recordingCompleter) Complete(_ context.Context, prompt llm.Prompt) (string, error) {
	completer.prompt = prompt
	return completer.reply, nil
}

func TestParsePlan(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		reply    string
		expected llm.Plan
	}{
		{
			name:     "plain json",
			reply:    `{"sources": ["music::top_songs"], "intent": "see songs", "approach": "big list"}`,
			expected: llm.Plan{Sources: []string{"music::top_songs"}, Intent: "see songs", Approach: "big list"},
		},
		{
			name:     "fenced json",
			reply:    "```json\n{\"sources\": [\"travel::cities\"]}\n```",
			expected: llm.Plan{Sources: []string{"travel::cities"}},
		},
		{
			name:     "repaired json",
			reply:    `{"sources": ["a::b", "c::d",], "intent": "i"`,
			expected: llm.Plan{Sources: []string{"a::b", "c::d"}, Intent: "i"},
		},
		{
			name:     "blank sources dropped",
			reply:    `{"sources": [" ", " fitness::workouts "]}`,
			expected: llm.Plan{Sources: []string{"fitness::workouts"}},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			plan, err := llm.ParsePlan(testCase.reply)
			if err != nil {
				t.Fatalf("ParsePlan: %v", err)
			}
			if !reflect.DeepEqual(plan, testCase.expected) {
				t.Fatalf("ParsePlan = %#v, want %#v", plan, testCase.expected)
			}
		})
	}
}

func TestParsePlanFailures(t *testing.T) {
	t.Parallel()

	if _, err := llm.ParsePlan("```\n```"); !errors.Is(err, llm.ErrEmptyPlan) {
		t.Fatalf("expected ErrEmptyPlan, got %v", err)
	}
	if _, err := llm.ParsePlan(`["music::top_songs"]`); err == nil {
		t.Fatalf("expected error for non-object reply")
	}
}

func TestCompletionPlanner(t *testing.T) {
	t.Parallel()

	completer := &recordingCompleter{reply: `{"sources": ["music::top_songs"], "intent": "i", "approach": "a"}`}
	planner := llm.NewPlanner(completer)
	plan, err := planner.Plan(context.Background(), "my music", []string{"music::top_songs", "travel::cities"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !reflect.DeepEqual(plan.Sources, []string{"music::top_songs"}) {
		t.Fatalf("unexpected plan %#v", plan)
	}
	if !strings.Contains(completer.prompt.User, `"travel::cities"`) || !strings.Contains(completer.prompt.User, `"my music"`) {
		t.Fatalf("planning prompt lacks query or sources:\n%s", completer.prompt.User)
	}

	failing := llm.NewPlanner(llm.Canned{Err: errors.New("quota exceeded")})
	if _, err := failing.Plan(context.Background(), "q", nil); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped completer error, got %v", err)
	}
}

func TestStaticPlanner(t *testing.T) {
	t.Parallel()

	available := []string{"a::b", "c::d"}
	plan, err := llm.StaticPlanner{Result: llm.Plan{Intent: "all"}}.Plan(context.Background(), "q", available)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !reflect.DeepEqual(plan.Sources, available) || plan.Intent != "all" {
		t.Fatalf("unexpected plan %#v", plan)
	}
	plan.Sources[0] = "changed"
	if available[0] != "a::b" {
		t.Fatalf("static planner aliased the source list")
	}

	fixed, _ := llm.StaticPlanner{Result: llm.Plan{Sources: []string{"x::y"}}}.Plan(context.Background(), "q", available)
	if !reflect.DeepEqual(fixed.Sources, []string{"x::y"}) {
		t.Fatalf("unexpected fixed plan %#v", fixed)
	}

	planErr := errors.New("planner down")
	if _, err := (llm.StaticPlanner{Err: planErr}).Plan(context.Background(), "q", available); !errors.Is(err, planErr) {
		t.Fatalf("expected planner error, got %v", err)
	}
}
