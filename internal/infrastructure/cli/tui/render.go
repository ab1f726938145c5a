package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/doeshing/persona-go/internal/domain"
)

// Renderer turns output entries into terminal text. Personality replies are
// markdown and go through glamour; everything else is styled plain text.
type Renderer struct {
	theme    Theme
	style    string
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer using the named glamour style ("dark",
// "light", "notty"...).
func NewRenderer(theme Theme, style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{theme: theme, style: style}
}

// SetWidth rebuilds the markdown renderer when the wrap width changes.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 || width == r.width {
		return
	}
	r.width = width
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.markdown = nil
		return
	}
	r.markdown = md
}

// Entry renders one log entry. highlight marks the current search match.
func (r *Renderer) Entry(e domain.OutputEntry, highlight bool) string {
	style := r.theme.Entry(e.Type)
	var body string
	switch e.Type {
	case domain.OutputCommand:
		body = style.Render("> " + e.Text)
	case domain.OutputAIResponse, domain.OutputExternalLLMResponse:
		body = r.author(e) + "\n" + r.markdownText(e.Text)
	case domain.OutputUserMessage, domain.OutputCommunication:
		body = r.author(e) + " " + e.Text
	case domain.OutputError:
		body = style.Render("✗ " + e.Text)
	case domain.OutputWarning:
		body = style.Render("! " + e.Text)
	default:
		body = style.Render(e.Text)
	}
	if highlight {
		return r.theme.Match.Render(body)
	}
	return body
}

func (r *Renderer) author(e domain.OutputEntry) string {
	name := e.AuthorName
	if name == "" {
		name = e.Type.Label()
	}
	return r.theme.Entry(e.Type).Bold(true).Render(name + ":")
}

func (r *Renderer) markdownText(text string) string {
	if r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
