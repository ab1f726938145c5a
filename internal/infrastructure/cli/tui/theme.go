package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/persona-go/internal/domain"
)

// Theme holds the console styles.
type Theme struct {
	Header     lipgloss.Style
	Muted      lipgloss.Style
	Accent     lipgloss.Style
	Success    lipgloss.Style
	Alert      lipgloss.Style
	Danger     lipgloss.Style
	Input      lipgloss.Style
	Suggestion lipgloss.Style
	Selected   lipgloss.Style
	Match      lipgloss.Style
	Panel      lipgloss.Style
	Overlay    lipgloss.Style
	entries    map[domain.OutputType]lipgloss.Style
}

// DefaultTheme is the dark terminal palette.
func DefaultTheme() Theme {
	accent := lipgloss.Color("#00FFFF")
	secondary := lipgloss.Color("#7D7D7D")
	success := lipgloss.Color("#00FF00")
	alert := lipgloss.Color("#FFBF00")
	danger := lipgloss.Color("#FF0055")
	violet := lipgloss.Color("#B48EFF")
	sky := lipgloss.Color("#5FAFFF")

	return Theme{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:      lipgloss.NewStyle().Foreground(secondary),
		Accent:     lipgloss.NewStyle().Foreground(accent),
		Success:    lipgloss.NewStyle().Foreground(success),
		Alert:      lipgloss.NewStyle().Foreground(alert),
		Danger:     lipgloss.NewStyle().Foreground(danger),
		Input:      lipgloss.NewStyle().Foreground(accent),
		Suggestion: lipgloss.NewStyle().Foreground(secondary),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(accent),
		Match:      lipgloss.NewStyle().Background(lipgloss.Color("#3A3A00")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		entries: map[domain.OutputType]lipgloss.Style{
			domain.OutputCommand:             lipgloss.NewStyle().Foreground(secondary),
			domain.OutputResponse:            lipgloss.NewStyle(),
			domain.OutputError:               lipgloss.NewStyle().Foreground(danger),
			domain.OutputWarning:             lipgloss.NewStyle().Foreground(alert),
			domain.OutputUserMessage:         lipgloss.NewStyle().Foreground(sky),
			domain.OutputAIResponse:          lipgloss.NewStyle().Foreground(success),
			domain.OutputCommunication:       lipgloss.NewStyle().Foreground(violet),
			domain.OutputExternalLLMResponse: lipgloss.NewStyle().Foreground(accent),
		},
	}
}

// Entry returns the style for an output type.
func (t Theme) Entry(kind domain.OutputType) lipgloss.Style {
	if style, ok := t.entries[kind]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
