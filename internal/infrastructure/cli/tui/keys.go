package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/doeshing/persona-go/internal/application/console"
)

// toKey maps a terminal key event onto the console vocabulary.
func toKey(msg tea.KeyMsg) console.Key {
	switch msg.Type {
	case tea.KeyRunes:
		return console.Key{Type: console.KeyRunes, Runes: msg.Runes}
	case tea.KeySpace:
		return console.Key{Type: console.KeySpace, Runes: []rune{' '}}
	case tea.KeyBackspace:
		return console.Key{Type: console.KeyBackspace}
	case tea.KeyUp:
		return console.Key{Type: console.KeyUp}
	case tea.KeyDown:
		return console.Key{Type: console.KeyDown}
	case tea.KeyEnter:
		return console.Key{Type: console.KeyEnter}
	case tea.KeyTab:
		return console.Key{Type: console.KeyTab}
	case tea.KeyEsc:
		return console.Key{Type: console.KeyEsc}
	case tea.KeyHome:
		return console.Key{Type: console.KeyHome}
	case tea.KeyEnd:
		return console.Key{Type: console.KeyEnd}
	case tea.KeyPgUp:
		return console.Key{Type: console.KeyPgUp}
	case tea.KeyPgDown:
		return console.Key{Type: console.KeyPgDown}
	case tea.KeyCtrlF:
		return console.Key{Type: console.KeyCtrlF}
	case tea.KeyCtrlE:
		return console.Key{Type: console.KeyCtrlE}
	default:
		return console.Key{Type: console.KeyOther}
	}
}
