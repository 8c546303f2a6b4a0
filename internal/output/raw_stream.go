package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/uistream/internal/generation"
)

var (
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e3b341"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
)

type rawStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	includeSummary bool
	summary        *generation.SummaryEvent
	wroteMarkup    bool
	endsInNewline  bool
}

// NewRawStreamRenderer writes units to stdout exactly as generated; everything else goes to stderr.
func NewRawStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &rawStreamRenderer{stdout: stdout, stderr: stderr, includeSummary: includeSummary}
}

func (renderer *rawStreamRenderer) Handle(event generation.Event) error {
	switch event.Kind {
	case generation.EventKindUnit:
		if event.Unit == nil || renderer.stdout == nil {
			return nil
		}
		if _, err := io.WriteString(renderer.stdout, event.Unit.Content); err != nil {
			return err
		}
		if event.Unit.Content != "" {
			renderer.wroteMarkup = true
			renderer.endsInNewline = strings.HasSuffix(event.Unit.Content, "\n")
		}
	case generation.EventKindPlan:
		if event.Plan != nil && renderer.includeSummary && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, dimStyle.Render("Sources: "+strings.Join(event.Plan.Sources, ", ")))
		}
	case generation.EventKindWarning:
		if event.Message != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, warningStyle.Render(event.Message.Message))
		}
	case generation.EventKindError:
		if event.Err != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, errorStyle.Render(event.Err.Message))
		}
	case generation.EventKindSummary:
		renderer.summary = event.Summary
	}
	return nil
}

func (renderer *rawStreamRenderer) Flush() error {
	if renderer.wroteMarkup && !renderer.endsInNewline && renderer.stdout != nil {
		if _, err := io.WriteString(renderer.stdout, "\n"); err != nil {
			return err
		}
		renderer.endsInNewline = true
	}
	if renderer.includeSummary && renderer.summary != nil && renderer.stderr != nil {
		_, err := fmt.Fprintln(renderer.stderr, summaryStyle.Render(FormatSummaryLine(renderer.summary)))
		return err
	}
	return nil
}
