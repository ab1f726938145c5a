package console

import (
	"errors"
	"strings"
)

// Mode is the console's input state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeModelSelect
	ModePersonalityMultiSelect
)

func (m Mode) String() string {
	switch m {
	case ModeModelSelect:
		return "model-select"
	case ModePersonalityMultiSelect:
		return "personality-select"
	default:
		return "idle"
	}
}

// MinGroupSize is the number of personalities a group selection needs.
const MinGroupSize = 2

var (
	// ErrNoModels is returned when the model picker has nothing to show.
	ErrNoModels = errors.New("no models configured")
	// ErrNotEnoughCandidates is returned when fewer than MinGroupSize personalities exist.
	ErrNotEnoughCandidates = errors.New("at least 2 personalities are required for a group chat")
)

// SelectionItem is one row of a selection mode.
type SelectionItem struct {
	ID     string
	Label  string
	Detail string
}

// Outcome is the result of feeding a key to a selection mode.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeConfirmed
	OutcomeCancelled
)

// ModelSelect is the single-choice picker.
type ModelSelect struct {
	items []SelectionItem
	index int
}

// NewModelSelect opens the picker with current highlighted when present.
func NewModelSelect(items []SelectionItem, current string) (*ModelSelect, error) {
	if len(items) == 0 {
		return nil, ErrNoModels
	}
	s := &ModelSelect{items: append([]SelectionItem(nil), items...)}
	for i, item := range items {
		if strings.EqualFold(item.ID, current) {
			s.index = i
			break
		}
	}
	return s, nil
}

// Items returns the selectable rows.
func (s *ModelSelect) Items() []SelectionItem { return s.items }

// Index returns the highlighted row.
func (s *ModelSelect) Index() int { return s.index }

// HandleKey moves the highlight or finishes the selection. Digits 1-9 jump to
// and confirm that row; out-of-range digits are ignored.
func (s *ModelSelect) HandleKey(k Key) (Outcome, SelectionItem) {
	if n, ok := k.Digit(); ok {
		if n <= len(s.items) {
			s.index = n - 1
			return OutcomeConfirmed, s.items[s.index]
		}
		return OutcomePending, SelectionItem{}
	}
	switch k.Type {
	case KeyUp:
		if s.index > 0 {
			s.index--
		}
	case KeyDown:
		if s.index < len(s.items)-1 {
			s.index++
		}
	case KeyEnter:
		return OutcomeConfirmed, s.items[s.index]
	case KeyEsc:
		return OutcomeCancelled, SelectionItem{}
	}
	return OutcomePending, SelectionItem{}
}

// MultiSelect is the personality group picker.
type MultiSelect struct {
	items  []SelectionItem
	index  int
	chosen map[string]bool
}

// NewMultiSelect opens the picker; it needs at least MinGroupSize candidates.
func NewMultiSelect(items []SelectionItem) (*MultiSelect, error) {
	if len(items) < MinGroupSize {
		return nil, ErrNotEnoughCandidates
	}
	return &MultiSelect{
		items:  append([]SelectionItem(nil), items...),
		chosen: make(map[string]bool),
	}, nil
}

// Items returns the selectable rows.
func (s *MultiSelect) Items() []SelectionItem { return s.items }

// Index returns the highlighted row.
func (s *MultiSelect) Index() int { return s.index }

// IsChosen reports whether the item with id is in the chosen set.
func (s *MultiSelect) IsChosen(id string) bool { return s.chosen[id] }

// CanConfirm reports whether Enter would complete the selection.
func (s *MultiSelect) CanConfirm() bool { return len(s.chosen) >= MinGroupSize }

// Chosen returns the chosen items in list order.
func (s *MultiSelect) Chosen() []SelectionItem {
	var out []SelectionItem
	for _, item := range s.items {
		if s.chosen[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

// HandleKey toggles, moves or finishes. Enter does nothing until at least
// MinGroupSize items are chosen.
func (s *MultiSelect) HandleKey(k Key) (Outcome, []SelectionItem) {
	if n, ok := k.Digit(); ok {
		if n <= len(s.items) {
			s.index = n - 1
			s.toggle()
		}
		return OutcomePending, nil
	}
	switch k.Type {
	case KeyUp:
		if s.index > 0 {
			s.index--
		}
	case KeyDown:
		if s.index < len(s.items)-1 {
			s.index++
		}
	case KeySpace:
		s.toggle()
	case KeyRunes:
		if len(k.Runes) == 1 && k.Runes[0] == ' ' {
			s.toggle()
		}
	case KeyEnter:
		if s.CanConfirm() {
			return OutcomeConfirmed, s.Chosen()
		}
	case KeyEsc:
		s.chosen = make(map[string]bool)
		return OutcomeCancelled, nil
	}
	return OutcomePending, nil
}

func (s *MultiSelect) toggle() {
	id := s.items[s.index].ID
	if s.chosen[id] {
		delete(s.chosen, id)
		return
	}
	s.chosen[id] = true
}
