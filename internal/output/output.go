// Package output renders generation events and resolved data for terminals and pipes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/utils"
)

const (
	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatSSE  = "sse"
	FormatYAML = "yaml"

	indentPrefix = ""
	indentSpacer = "  "

	unsupportedFormatErrorFormat = "unsupported output format %q"
)

// FormatSummaryLine renders a one-line summary of a generation run.
func FormatSummaryLine(summary *generation.SummaryEvent) string {
	if summary == nil {
		summary = &generation.SummaryEvent{}
	}
	label := "units"
	if summary.Units == 1 {
		label = "unit"
	}
	extra := ""
	if summary.Tokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.Tokens)
	}
	if summary.Warnings > 0 {
		extra += fmt.Sprintf(", %d warnings", summary.Warnings)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.Units, label, utils.FormatFileSize(summary.Bytes), extra, modelSuffix)
}

// RenderDocument writes document as indented JSON or YAML.
func RenderDocument(writer io.Writer, format string, document any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		encoded, err := json.MarshalIndent(document, indentPrefix, indentSpacer)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(writer, string(encoded))
		return err
	case FormatYAML:
		encoded, err := yaml.Marshal(document)
		if err != nil {
			return err
		}
		_, err = writer.Write(encoded)
		return err
	default:
		return fmt.Errorf(unsupportedFormatErrorFormat, format)
	}
}
