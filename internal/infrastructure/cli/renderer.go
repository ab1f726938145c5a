package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0055"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBF00"))
	authorStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D"))
)

// RenderResult prints a one-shot dispatch result. Effects that only make
// sense inside the interactive console are reported, not applied.
func RenderResult(out io.Writer, res domain.DispatchResult) {
	for _, entry := range res.Entries {
		switch entry.Type {
		case domain.OutputCommand:
			continue
		case domain.OutputError:
			fmt.Fprintln(out, errorStyle.Render("error: "+entry.Text))
		case domain.OutputWarning:
			fmt.Fprintln(out, warningStyle.Render("warning: "+entry.Text))
		case domain.OutputAIResponse, domain.OutputExternalLLMResponse, domain.OutputCommunication, domain.OutputUserMessage:
			fmt.Fprintf(out, "%s %s\n", authorStyle.Render(entry.AuthorName+":"), entry.Text)
		default:
			fmt.Fprintln(out, entry.Text)
		}
	}
	for _, effect := range res.Effects {
		switch effect.Effect {
		case domain.EffectFocus, domain.EffectUnfocus, domain.EffectModelChanged:
		default:
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("(%s is only available in the interactive console)", effect.Effect)))
		}
	}
}

// FirstIssue returns the text of the first error entry, or "".
func FirstIssue(res domain.DispatchResult) string {
	for _, entry := range res.Entries {
		if entry.Type == domain.OutputError {
			return entry.Text
		}
	}
	return ""
}

// RenderTranscript writes entries in the plain transcript line format.
func RenderTranscript(out io.Writer, entries []domain.OutputEntry) {
	for _, entry := range entries {
		fmt.Fprintln(out, console.FormatEntry(entry))
	}
}
