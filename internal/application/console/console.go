package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
)

// Scroll is a viewport movement requested by a keystroke.
type Scroll int

const (
	ScrollNone Scroll = iota
	ScrollTop
	ScrollBottom
	ScrollPageUp
	ScrollPageDown
	// ScrollToEntry brings Result.Target into view.
	ScrollToEntry
)

// Result tells the terminal layer what a keystroke did.
type Result struct {
	// Consumed is false when the key should be forwarded to the active text input.
	Consumed bool
	// Submit is a trimmed, non-empty line to hand to the dispatcher.
	Submit string
	Scroll Scroll
	Target int
}

// Callbacks are invoked when a selection mode completes.
type Callbacks struct {
	ModelSelected     func(SelectionItem)
	SelectionComplete func([]SelectionItem)
}

// Options wires a Console.
type Options struct {
	Table   Table
	History *History
	Log     *OutputLog
	// Models and Personalities are read when a selection mode is entered.
	Models        func() ([]SelectionItem, string)
	Personalities func() []SelectionItem
	Callbacks     Callbacks
}

// Console is the input state machine. It is not safe for concurrent use.
type Console struct {
	table     Table
	history   *History
	log       *OutputLog
	models    func() ([]SelectionItem, string)
	people    func() []SelectionItem
	callbacks Callbacks

	mode     Mode
	modelSel *ModelSelect
	multiSel *MultiSelect

	input       string
	suggestions []string
	highlight   int
	validation  domain.Validation
	chatTarget  string

	searchOpen bool
	search     *SearchCursor
}

// New creates a console in the idle mode.
func New(opts Options) *Console {
	c := &Console{
		table:     opts.Table,
		history:   opts.History,
		log:       opts.Log,
		models:    opts.Models,
		people:    opts.Personalities,
		callbacks: opts.Callbacks,
		highlight: noSelection,
	}
	if c.history == nil {
		c.history = NewHistory(domain.DefaultHistoryCapacity)
	}
	if c.log == nil {
		c.log = NewOutputLog()
	}
	return c
}

func (c *Console) Mode() Mode { return c.mode }
func (c *Console) ModelSelect() *ModelSelect { return c.modelSel }
func (c *Console) MultiSelect() *MultiSelect { return c.multiSel }
func (c *Console) Input() string { return c.input }
func (c *Console) Suggestions() []string { return c.suggestions }
func (c *Console) Highlight() int { return c.highlight }
func (c *Console) Validation() domain.Validation { return c.validation }
func (c *Console) ChatTarget() string { return c.chatTarget }
func (c *Console) Log() *OutputLog { return c.log }
func (c *Console) History() *History { return c.history }
func (c *Console) Table() Table { return c.table }
func (c *Console) SearchOpen() bool { return c.searchOpen }
func (c *Console) SearchCursor() *SearchCursor { return c.search }

// SetInput replaces the input line and recomputes suggestions and validation.
func (c *Console) SetInput(text string) {
	c.input = text
	c.refresh()
}

// SetChatTarget records the focused personality; empty leaves chat mode.
func (c *Console) SetChatTarget(name string) {
	c.chatTarget = name
	c.refresh()
}

// DismissValidation hides the current banner until the next keystroke.
func (c *Console) DismissValidation() {
	c.validation = domain.Validation{}
}

func (c *Console) refresh() {
	c.highlight = noSelection
	if c.mode != ModeIdle {
		c.suggestions = nil
		c.validation = domain.Validation{}
		return
	}
	if c.chatTarget != "" && !HasForcePrefix(strings.TrimSpace(c.input)) {
		c.suggestions = nil
	} else {
		c.suggestions = Suggest(c.input, c.history.All(), c.table)
	}
	c.validation = Validate(c.input, c.chatTarget, c.table)
}

// SetSearchQuery reruns the search over the active view.
func (c *Console) SetSearchQuery(query string) Result {
	c.search = NewSearchCursor(query, c.log.SearchView(query))
	if idx, ok := c.search.Current(); ok {
		return Result{Consumed: true, Scroll: ScrollToEntry, Target: idx}
	}
	return Result{Consumed: true}
}

// OpenSearch shows the search bar, optionally pre-filled.
func (c *Console) OpenSearch(query string) Result {
	c.searchOpen = true
	return c.SetSearchQuery(query)
}

// CloseSearch hides the search bar and forgets the matches.
func (c *Console) CloseSearch() {
	c.searchOpen = false
	c.search = nil
}

// ToggleIssues flips the output view and re-runs an open search.
func (c *Console) ToggleIssues() View {
	v := c.log.ToggleIssues()
	if c.search != nil {
		c.search = NewSearchCursor(c.search.Query(), c.log.SearchView(c.search.Query()))
	}
	return v
}

// HandleKey routes one keystroke. While a selection mode is active every key
// goes to that mode.
func (c *Console) HandleKey(k Key) Result {
	switch c.mode {
	case ModeModelSelect:
		c.handleModelKey(k)
		return Result{Consumed: true}
	case ModePersonalityMultiSelect:
		c.handleMultiKey(k)
		return Result{Consumed: true}
	}

	switch k.Type {
	case KeyCtrlF:
		if c.searchOpen {
			c.CloseSearch()
			return Result{Consumed: true}
		}
		return c.OpenSearch("")
	case KeyCtrlE:
		c.ToggleIssues()
		return Result{Consumed: true, Scroll: ScrollBottom}
	}

	if c.searchOpen {
		return c.handleSearchKey(k)
	}
	return c.handleInputKey(k)
}

func (c *Console) handleSearchKey(k Key) Result {
	switch k.Type {
	case KeyEsc:
		c.CloseSearch()
		return Result{Consumed: true}
	case KeyEnter, KeyDown:
		if c.search == nil {
			return Result{Consumed: true}
		}
		if idx, ok := c.search.Next(); ok {
			return Result{Consumed: true, Scroll: ScrollToEntry, Target: idx}
		}
		return Result{Consumed: true}
	case KeyUp:
		if c.search == nil {
			return Result{Consumed: true}
		}
		if idx, ok := c.search.Prev(); ok {
			return Result{Consumed: true, Scroll: ScrollToEntry, Target: idx}
		}
		return Result{Consumed: true}
	}
	return Result{}
}

func (c *Console) handleInputKey(k Key) Result {
	switch k.Type {
	case KeyUp:
		if text, ok := c.history.Previous(); ok {
			c.SetInput(text)
		}
		return Result{Consumed: true}
	case KeyDown:
		if text, ok := c.history.Next(); ok {
			c.SetInput(text)
		}
		return Result{Consumed: true}
	case KeyTab:
		if len(c.suggestions) > 0 {
			c.highlight = (c.highlight + 1) % len(c.suggestions)
		}
		return Result{Consumed: true}
	case KeyEnter:
		if c.highlight >= 0 && c.highlight < len(c.suggestions) {
			c.acceptSuggestion()
			return Result{Consumed: true}
		}
		return c.submit()
	case KeyEsc:
		switch {
		case len(c.suggestions) > 0:
			c.suggestions = nil
			c.highlight = noSelection
		case !c.validation.IsZero():
			c.DismissValidation()
		default:
			c.SetInput("")
			c.history.ResetCursor()
		}
		return Result{Consumed: true}
	case KeyHome:
		return Result{Consumed: true, Scroll: ScrollTop}
	case KeyEnd:
		return Result{Consumed: true, Scroll: ScrollBottom}
	case KeyPgUp:
		return Result{Consumed: true, Scroll: ScrollPageUp}
	case KeyPgDown:
		return Result{Consumed: true, Scroll: ScrollPageDown}
	}
	return Result{}
}

func (c *Console) acceptSuggestion() {
	choice := c.suggestions[c.highlight]
	c.input = choice + " "
	c.suggestions = nil
	c.highlight = noSelection
	c.validation = Validate(c.input, c.chatTarget, c.table)
}

func (c *Console) submit() Result {
	line := strings.TrimSpace(c.input)
	if line == "" {
		return Result{Consumed: true}
	}
	c.history.Append(line)
	c.input = ""
	c.suggestions = nil
	c.highlight = noSelection
	c.validation = domain.Validation{}

	if c.chatTarget == "" || HasForcePrefix(line) {
		fields := strings.Fields(StripForcePrefix(line))
		if len(fields) == 1 {
			if cmd, ok := c.table.Resolve(fields[0]); ok && cmd.Mode != ModeIdle {
				_ = c.enterMode(cmd.Mode)
				return Result{Consumed: true, Scroll: ScrollBottom}
			}
		}
	}
	return Result{Consumed: true, Submit: line, Scroll: ScrollBottom}
}

// EnterMode opens a selection mode. Failures are reported in the output log.
func (c *Console) EnterMode(mode Mode) error {
	return c.enterMode(mode)
}

func (c *Console) enterMode(mode Mode) error {
	var err error
	switch mode {
	case ModeModelSelect:
		var items []SelectionItem
		current := ""
		if c.models != nil {
			items, current = c.models()
		}
		c.modelSel, err = NewModelSelect(items, current)
	case ModePersonalityMultiSelect:
		var items []SelectionItem
		if c.people != nil {
			items = c.people()
		}
		c.multiSel, err = NewMultiSelect(items)
	default:
		return nil
	}
	if err != nil {
		level := domain.OutputWarning
		if !errors.Is(err, ErrNotEnoughCandidates) && !errors.Is(err, ErrNoModels) {
			level = domain.OutputError
		}
		c.log.Append(domain.OutputEntry{Type: level, Text: capitalize(err.Error()) + "."})
		return fmt.Errorf("enter %s: %w", mode, err)
	}
	c.mode = mode
	c.suggestions = nil
	c.validation = domain.Validation{}
	return nil
}

func (c *Console) leaveMode() {
	c.mode = ModeIdle
	c.modelSel = nil
	c.multiSel = nil
	c.refresh()
}

func (c *Console) handleModelKey(k Key) {
	outcome, item := c.modelSel.HandleKey(k)
	switch outcome {
	case OutcomeConfirmed:
		c.leaveMode()
		if c.callbacks.ModelSelected != nil {
			c.callbacks.ModelSelected(item)
		}
	case OutcomeCancelled:
		c.leaveMode()
	}
}

func (c *Console) handleMultiKey(k Key) {
	outcome, items := c.multiSel.HandleKey(k)
	switch outcome {
	case OutcomeConfirmed:
		c.leaveMode()
		if c.callbacks.SelectionComplete != nil {
			c.callbacks.SelectionComplete(items)
		}
	case OutcomeCancelled:
		c.leaveMode()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
