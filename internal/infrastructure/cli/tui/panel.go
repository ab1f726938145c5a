package tui

import (
	"encoding/json"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/doeshing/persona-go/internal/ports"
)

const (
	minPanelHeight = 2
	maxPanelHeight = 20
)

// PanelState is the persisted part of a panel.
type PanelState struct {
	Height  int  `json:"height"`
	Visible bool `json:"visible"`
}

// Panel is a scrollable pane whose height and visibility survive restarts.
// Each panel owns one key in the key/value store.
type Panel struct {
	key    string
	title  string
	store  ports.KeyValueStore
	logger ports.Logger
	state  PanelState
	vp     viewport.Model
}

// NewPanel loads the panel state stored under key, falling back to def.
func NewPanel(key, title string, store ports.KeyValueStore, logger ports.Logger, def PanelState) *Panel {
	p := &Panel{key: key, title: title, store: store, logger: logger, state: def}
	if store != nil {
		if raw, ok, err := store.Get(key); err == nil && ok {
			var saved PanelState
			if json.Unmarshal([]byte(raw), &saved) == nil {
				p.state = saved
			}
		} else if err != nil {
			p.warn("panel state load failed", err)
		}
	}
	p.state.Height = clampHeight(p.state.Height)
	p.vp = viewport.New(0, p.state.Height)
	return p
}

// Key is the storage key.
func (p *Panel) Key() string {
	return p.key
}

// Title is shown above the panel body.
func (p *Panel) Title() string {
	return p.title
}

// State returns the current persisted state.
func (p *Panel) State() PanelState {
	return p.state
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	return p.state.Visible
}

// Height is the body height in rows.
func (p *Panel) Height() int {
	return p.state.Height
}

// Toggle flips visibility.
func (p *Panel) Toggle() {
	p.state.Visible = !p.state.Visible
	p.save()
}

// Show makes the panel visible.
func (p *Panel) Show() {
	if p.state.Visible {
		return
	}
	p.state.Visible = true
	p.save()
}

// Resize grows or shrinks the panel by delta rows.
func (p *Panel) Resize(delta int) {
	height := clampHeight(p.state.Height + delta)
	if height == p.state.Height {
		return
	}
	p.state.Height = height
	p.vp.Height = height
	p.save()
}

// SetContent replaces the body and scrolls to its end.
func (p *Panel) SetContent(width int, content string) {
	p.vp.Width = width
	p.vp.Height = p.state.Height
	p.vp.SetContent(content)
	p.vp.GotoBottom()
}

// View renders the body.
func (p *Panel) View() string {
	return p.vp.View()
}

func (p *Panel) save() {
	if p.store == nil {
		return
	}
	data, err := json.Marshal(p.state)
	if err != nil {
		return
	}
	if err := p.store.Set(p.key, string(data)); err != nil {
		p.warn("panel state save failed", err)
	}
}

func (p *Panel) warn(msg string, err error) {
	if p.logger != nil {
		p.logger.Warn(msg, map[string]interface{}{"panel": p.key, "error": err.Error()})
	}
}

func clampHeight(h int) int {
	if h < minPanelHeight {
		return minPanelHeight
	}
	if h > maxPanelHeight {
		return maxPanelHeight
	}
	return h
}
