package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/uistream/internal/catalog"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/llm"
	"github.com/temirov/uistream/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	if copier.err != nil {
		return copier.err
	}
	copier.copied = append(copier.copied, text)
	return nil
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	return &application{
		logger:           zap.NewNop(),
		copier:           &recordingCopier{},
		workingDirectory: t.TempDir(),
		homeDirectory:    t.TempDir(),
	}
}

func executeCommand(t *testing.T, app *application, arguments ...string) (string, string, error) {
	t.Helper()
	rootCommand := createRootCommand(app)
	var stdout, stderr bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&stderr)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	err := rootCommand.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// streamedEvent mirrors the encoded event without the context payload, whose values
// are an interface type.
type streamedEvent struct {
	Kind    generation.EventKind   `json:"kind"`
	Plan    *generation.PlanEvent  `json:"plan"`
	Unit    *generation.UnitEvent  `json:"unit"`
	Message *generation.LogEvent   `json:"message"`
	Err     *generation.ErrorEvent `json:"error"`
}

func decodeEvents(t *testing.T, ndjson string) []streamedEvent {
	t.Helper()
	var events []streamedEvent
	scanner := bufio.NewScanner(strings.NewReader(ndjson))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event streamedEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("decode event %q: %v", scanner.Text(), err)
		}
		events = append(events, event)
	}
	return events
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestGenerateScriptedDashboardStreamsUnits(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	stdout, _, err := executeCommand(t, app, "generate", "--format", "json", "--chunk-size", "5", "show", "my", "year")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	events := decodeEvents(t, stdout)
	if len(events) < 4 {
		t.Fatalf("expected plan, context, units and done, got %d events", len(events))
	}
	if events[0].Kind != generation.EventKindPlan || events[0].Plan.Query != "show my year" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if len(events[0].Plan.Sources) != 11 {
		t.Fatalf("expected every sample source planned, got %v", events[0].Plan.Sources)
	}
	if events[1].Kind != generation.EventKindContext {
		t.Fatalf("expected context second, got %s", events[1].Kind)
	}
	if last := events[len(events)-1]; last.Kind != generation.EventKindDone {
		t.Fatalf("expected done last, got %s", last.Kind)
	}

	var markup strings.Builder
	for _, event := range events {
		switch event.Kind {
		case generation.EventKindUnit:
			markup.WriteString(event.Unit.Content)
		case generation.EventKindWarning:
			t.Fatalf("unexpected warning %+v", event.Message)
		}
	}
	if markup.String() != strings.TrimRight(defaultScript, "\n") {
		t.Fatalf("units do not reassemble the script:\n%s", markup.String())
	}
}

func TestGenerateRawScriptWithReferences(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	scriptPath := filepath.Join(app.workingDirectory, "script.html")
	writeTestFile(t, scriptPath, `<p>a</p><br><component-slot type="List" data-source="music::top_songs"/><div>open`)

	stdout, stderr, err := executeCommand(t, app, "generate", "--script", scriptPath, "--ref", "music::total_minutes", "--copy", "songs")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expectedMarkup := `<p>a</p><br><component-slot type="List" data-source="music::top_songs"/><div>open`
	if stdout != expectedMarkup+"\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if !strings.Contains(stderr, "unresolved data source music::top_songs") {
		t.Fatalf("expected unresolved warning, got %q", stderr)
	}
	if !strings.Contains(stderr, "Summary: 4 units") {
		t.Fatalf("expected summary, got %q", stderr)
	}
	copier := app.copier.(*recordingCopier)
	if len(copier.copied) != 1 || copier.copied[0] != expectedMarkup {
		t.Fatalf("unexpected clipboard contents %q", copier.copied)
	}
}

func TestGenerateFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		configuration string
		arguments     []string
		expectedError error
		expectedText  string
	}{
		{
			name:         "missing_query",
			arguments:    []string{"generate"},
			expectedText: errorMissingQuery,
		},
		{
			name:         "unknown_provider",
			arguments:    []string{"generate", "--provider", "carrier-pigeon", "hello"},
			expectedText: `unsupported provider "carrier-pigeon"`,
		},
		{
			name:          "configured_provider_without_key",
			configuration: "provider:\n  kind: openai\n  api_key_env: UISTREAM_TEST_KEY_THAT_IS_NEVER_SET\n",
			arguments:     []string{"generate", "hello"},
			expectedError: llm.ErrMissingAPIKey,
		},
		{
			name:         "unknown_format",
			arguments:    []string{"generate", "--format", "xml", "hello"},
			expectedText: `unsupported output format "xml"`,
		},
		{
			name:         "missing_script",
			arguments:    []string{"generate", "--script", "does-not-exist.html", "hello"},
			expectedText: "read script",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApplication(t)
			if testCase.configuration != "" {
				writeTestFile(t, filepath.Join(app.workingDirectory, utils.LocalConfigFileName), testCase.configuration)
			}
			_, _, err := executeCommand(t, app, testCase.arguments...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if testCase.expectedError != nil && !errors.Is(err, testCase.expectedError) {
				t.Fatalf("expected %v, got %v", testCase.expectedError, err)
			}
			if testCase.expectedText != "" && !strings.Contains(err.Error(), testCase.expectedText) {
				t.Fatalf("expected error containing %q, got %v", testCase.expectedText, err)
			}
		})
	}
}

func TestGenerateReportsPlanningFailureAsErrorEvent(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	writeTestFile(t, filepath.Join(app.workingDirectory, "data.yaml"), "music: [\n")

	stdout, _, err := executeCommand(t, app, "generate", "--format", "json", "--data", filepath.Join(app.workingDirectory, "data.yaml"), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	events := decodeEvents(t, stdout)
	if len(events) != 1 || events[0].Kind != generation.EventKindError {
		t.Fatalf("expected a single error event, got %+v", events)
	}
}

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:      "bound_context",
			arguments: []string{"resolve", "--format", "json", "music::top_songs[0].title", "travel::", "bad_format"},
			expected:  `{"music":{"top_songs":[{"artist":"The Weeknd","plays":342,"title":"Blinding Lights"},{"artist":"Dua Lipa","plays":289,"title":"Levitating"}]},"travel":{}}`,
		},
		{
			name:      "path_values",
			arguments: []string{"resolve", "--path", "--format", "json", "music::top_songs[1].artist", "music::missing"},
			expected:  `{"music::missing":null,"music::top_songs[1].artist":"Dua Lipa"}`,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := executeCommand(t, newTestApplication(t), testCase.arguments...)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			var compacted bytes.Buffer
			if err := json.Compact(&compacted, []byte(stdout)); err != nil {
				t.Fatalf("compact %q: %v", stdout, err)
			}
			if compacted.String() != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, compacted.String())
			}
		})
	}
}

func TestResolveCommandReadsDataFile(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	dataPath := filepath.Join(app.workingDirectory, "graph.yaml")
	writeTestFile(t, dataPath, "weather:\n  today:\n    high: 21\n    sky: clear\n")
	writeTestFile(t, filepath.Join(app.workingDirectory, utils.LocalConfigFileName), "data:\n  path: "+dataPath+"\n")

	stdout, _, err := executeCommand(t, app, "resolve", "weather::today.sky")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(stdout, "sky: clear") || !strings.Contains(stdout, "high: 21") {
		t.Fatalf("unexpected yaml output %q", stdout)
	}
}

func TestSegmentCommandSplitsFile(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	markupPath := filepath.Join(app.workingDirectory, "markup.html")
	writeTestFile(t, markupPath, "<P>héllo</p><BR><ul><li>x</li></ul><div>tail")

	stdout, _, err := executeCommand(t, app, "segment", "--chunk-size", "3", markupPath)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	events := decodeEvents(t, stdout)
	expected := []generation.UnitEvent{
		{Index: 0, Content: "<P>héllo</p>"},
		{Index: 1, Content: "<BR>"},
		{Index: 2, Content: "<ul><li>x</li></ul>"},
		{Index: 3, Content: "<div>tail", Flushed: true},
	}
	if len(events) != len(expected) {
		t.Fatalf("expected %d units, got %d: %s", len(expected), len(events), stdout)
	}
	for index, event := range events {
		if event.Unit == nil || *event.Unit != expected[index] {
			t.Fatalf("unit %d: expected %+v, got %+v", index, expected[index], event.Unit)
		}
	}
}

func TestRunSegmentHonorsCustomSelfClosingTags(t *testing.T) {
	t.Parallel()

	components := catalog.Default().WithSelfClosingTags("hr")
	var stdout bytes.Buffer
	if err := runSegment(context.Background(), strings.NewReader("<hr><p>x</p>"), &stdout, "raw", 1, components); err != nil {
		t.Fatalf("runSegment: %v", err)
	}
	if stdout.String() != "<hr><p>x</p>\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}

	var events bytes.Buffer
	if err := runSegment(context.Background(), strings.NewReader("<hr><p>x</p>"), &events, "json", 1, components); err != nil {
		t.Fatalf("runSegment: %v", err)
	}
	if units := decodeEvents(t, events.String()); len(units) != 2 || units[0].Unit.Content != "<hr>" {
		t.Fatalf("expected hr to close on its own, got %s", events.String())
	}
}

func TestSourcesCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeCommand(t, newTestApplication(t), "sources")
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 11 || lines[0] != "fitness::by_type" {
		t.Fatalf("unexpected sources %v", lines)
	}

	described, _, err := executeCommand(t, newTestApplication(t), "sources", "--describe")
	if err != nil {
		t.Fatalf("sources --describe: %v", err)
	}
	if !strings.Contains(described, "music::total_minutes (int) = 87234") {
		t.Fatalf("unexpected description %q", described)
	}
}

func TestInitCommandWritesLocalConfiguration(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	stdout, _, err := executeCommand(t, app, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	expectedPath := filepath.Join(app.workingDirectory, utils.LocalConfigFileName)
	if !strings.Contains(stdout, expectedPath) {
		t.Fatalf("expected path in output, got %q", stdout)
	}
	if _, _, err := executeCommand(t, app, "init"); err == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, _, err := executeCommand(t, app, "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestDispatchStream(t *testing.T) {
	t.Parallel()

	consumerFailure := errors.New("consumer failed")
	testCases := []struct {
		name          string
		produce       func(context.Context, chan<- generation.Event) error
		consume       func(generation.Event) error
		expectedError error
	}{
		{
			name: "delivers_every_event",
			produce: func(ctx context.Context, events chan<- generation.Event) error {
				events <- generation.Event{Kind: generation.EventKindUnit}
				events <- generation.Event{Kind: generation.EventKindDone}
				return nil
			},
			consume: func(generation.Event) error { return nil },
		},
		{
			name: "consumer_error_stops_producer",
			produce: func(ctx context.Context, events chan<- generation.Event) error {
				for {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case events <- generation.Event{Kind: generation.EventKindUnit}:
					}
				}
			},
			consume:       func(generation.Event) error { return consumerFailure },
			expectedError: consumerFailure,
		},
		{
			name: "cancellation_is_not_an_error",
			produce: func(ctx context.Context, events chan<- generation.Event) error {
				return context.Canceled
			},
			consume: func(generation.Event) error { return nil },
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			err := dispatchStream(context.Background(), testCase.produce, testCase.consume)
			if !errors.Is(err, testCase.expectedError) {
				t.Fatalf("expected %v, got %v", testCase.expectedError, err)
			}
		})
	}
}
