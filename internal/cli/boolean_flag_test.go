package cli

import (
	"reflect"
	"testing"
)

func TestNormalizeBooleanFlagArguments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "folds_literal_into_generate_toggle",
			arguments: []string{"generate", "--tokens", "no", "weekly", "recap"},
			expected:  []string{"generate", "--tokens=no", "weekly", "recap"},
		},
		{
			name:      "keeps_non_literal_query_word",
			arguments: []string{"generate", "--tokens", "weekly"},
			expected:  []string{"generate", "--tokens", "weekly"},
		},
		{
			name:      "literal_query_word_after_explicit_value",
			arguments: []string{"generate", "--tokens=true", "yes"},
			expected:  []string{"generate", "--tokens=true", "yes"},
		},
		{
			name:      "literal_query_word_after_folded_value",
			arguments: []string{"generate", "--summary", "false", "no", "more", "charts"},
			expected:  []string{"generate", "--summary=false", "no", "more", "charts"},
		},
		{
			name:      "value_flag_consumes_its_argument",
			arguments: []string{"generate", "--format", "json", "--tokens", "on"},
			expected:  []string{"generate", "--format", "json", "--tokens=on"},
		},
		{
			name:      "end_of_flags_marker_stops_folding",
			arguments: []string{"generate", "--", "--tokens", "yes"},
			expected:  []string{"generate", "--", "--tokens", "yes"},
		},
		{
			name:      "toggle_of_another_command_is_left_alone",
			arguments: []string{"sources", "--path", "yes"},
			expected:  []string{"sources", "--path", "yes"},
		},
		{
			name:      "resolve_path_toggle",
			arguments: []string{"resolve", "--path", "yes", "music::top_songs"},
			expected:  []string{"resolve", "--path=yes", "music::top_songs"},
		},
		{
			name:      "standard_bool_flag_is_not_folded",
			arguments: []string{"--version", "yes"},
			expected:  []string{"--version", "yes"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			rootCommand := createRootCommand(newTestApplication(t))
			normalized := normalizeBooleanFlagArguments(rootCommand, testCase.arguments)
			if !reflect.DeepEqual(normalized, testCase.expected) {
				t.Fatalf("expected %q, got %q", testCase.expected, normalized)
			}
		})
	}
}

func TestBooleanFlagsParseOnCommands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name               string
		arguments          []string
		expectedCommand    string
		expectedFlags      map[string]string
		expectedPositional []string
		expectError        bool
	}{
		{
			name:               "generate_tokens_no",
			arguments:          []string{"generate", "--tokens", "no", "top", "songs"},
			expectedCommand:    "generate",
			expectedFlags:      map[string]string{tokensFlagName: "false", summaryFlagName: "true"},
			expectedPositional: []string{"top", "songs"},
		},
		{
			name:               "generate_summary_false",
			arguments:          []string{"generate", "--summary", "false", "cities"},
			expectedCommand:    "generate",
			expectedFlags:      map[string]string{summaryFlagName: "false"},
			expectedPositional: []string{"cities"},
		},
		{
			name:               "generate_literal_query_word_after_explicit_value",
			arguments:          []string{"generate", "--tokens=yes", "no"},
			expectedCommand:    "generate",
			expectedFlags:      map[string]string{tokensFlagName: "true"},
			expectedPositional: []string{"no"},
		},
		{
			name:               "resolve_path_yes",
			arguments:          []string{"resolve", "--path", "yes", "music::top_songs[0]"},
			expectedCommand:    "resolve",
			expectedFlags:      map[string]string{pathFlagName: "true"},
			expectedPositional: []string{"music::top_songs[0]"},
		},
		{
			name:            "sources_describe",
			arguments:       []string{"sources", "--describe"},
			expectedCommand: "sources",
			expectedFlags:   map[string]string{describeFlagName: "true"},
		},
		{
			name:            "init_global_force",
			arguments:       []string{"init", "--global", "--force"},
			expectedCommand: "init",
			expectedFlags:   map[string]string{globalFlagName: "true", forceFlagName: "true"},
		},
		{
			name:            "init_force_off",
			arguments:       []string{"init", "--force", "off"},
			expectedCommand: "init",
			expectedFlags:   map[string]string{forceFlagName: "false", globalFlagName: "false"},
		},
		{
			name:        "rejects_unknown_literal_after_equals",
			arguments:   []string{"generate", "--tokens=maybe"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			rootCommand := createRootCommand(newTestApplication(t))
			command, remaining, findErr := rootCommand.Find(normalizeBooleanFlagArguments(rootCommand, testCase.arguments))
			if findErr != nil {
				t.Fatalf("find command: %v", findErr)
			}
			parseErr := command.ParseFlags(remaining)
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if command.Name() != testCase.expectedCommand {
				t.Fatalf("expected command %q, got %q", testCase.expectedCommand, command.Name())
			}
			for flagName, expectedValue := range testCase.expectedFlags {
				if actual := command.Flags().Lookup(flagName).Value.String(); actual != expectedValue {
					t.Fatalf("expected --%s=%s, got %s", flagName, expectedValue, actual)
				}
			}
			if positional := command.Flags().Args(); !reflect.DeepEqual(positional, testCase.expectedPositional) && len(positional)+len(testCase.expectedPositional) > 0 {
				t.Fatalf("expected positional arguments %q, got %q", testCase.expectedPositional, positional)
			}
		})
	}
}
