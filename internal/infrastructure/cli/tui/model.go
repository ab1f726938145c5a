// Package tui is the interactive terminal front end. It owns a
// console.Console and feeds it keystrokes; submitted lines are dispatched to
// the host off the UI goroutine and their results are applied in Update.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

const (
	historyPanelKey = "panel.history"
	issuesPanelKey  = "panel.issues"
	issuesShown     = 50
	exportStamp     = "20060102-150405"
)

// Options wires a Model.
type Options struct {
	Host      ports.Host
	Table     console.Table
	History   *console.History
	Store     ports.KeyValueStore
	Clipboard ports.Clipboard
	Logger    ports.Logger
	ExportDir string
	// MarkdownStyle is a glamour standard style name.
	MarkdownStyle string
	Now           func() time.Time
}

type dispatchResultMsg struct {
	line   string
	result domain.DispatchResult
	err    error
}

// ReloadedMsg tells the model the personality file changed on disk.
type ReloadedMsg struct{}

// Model is the bubbletea model for the chat console.
type Model struct {
	ctx       context.Context
	host      ports.Host
	console   *console.Console
	clipboard ports.Clipboard
	logger    ports.Logger
	exportDir string
	now       func() time.Time

	theme    Theme
	renderer *Renderer
	input    textinput.Model
	search   textinput.Model
	output   viewport.Model
	spinner  spinner.Model
	history  *Panel
	issues   *Panel

	width   int
	height  int
	busy    bool
	queued  []tea.Cmd
	offsets map[int]int
}

// New builds the model. ctx bounds every dispatch.
func New(ctx context.Context, opts Options) *Model {
	theme := DefaultTheme()

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a command or /help"
	input.PromptStyle = theme.Input
	input.Focus()

	search := textinput.New()
	search.Prompt = "Search: "
	search.PromptStyle = theme.Accent

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Accent

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		ctx:       ctx,
		host:      opts.Host,
		clipboard: opts.Clipboard,
		logger:    opts.Logger,
		exportDir: opts.ExportDir,
		now:       now,
		theme:     theme,
		renderer:  NewRenderer(theme, opts.MarkdownStyle),
		input:     input,
		search:    search,
		output:    viewport.New(80, 20),
		spinner:   sp,
		history:   NewPanel(historyPanelKey, "History", opts.Store, opts.Logger, PanelState{Height: 6}),
		issues:    NewPanel(issuesPanelKey, "Issues", opts.Store, opts.Logger, PanelState{Height: 4}),
		width:     80,
		height:    24,
		offsets:   map[int]int{},
	}
	m.console = console.New(console.Options{
		Table:         opts.Table,
		History:       opts.History,
		Models:        m.modelItems,
		Personalities: m.personalityItems,
		Callbacks: console.Callbacks{
			ModelSelected: func(item console.SelectionItem) {
				m.queued = append(m.queued, m.selectModel(item.ID))
			},
			SelectionComplete: func(items []console.SelectionItem) {
				ids := make([]string, len(items))
				for i, item := range items {
					ids[i] = item.ID
				}
				m.queued = append(m.queued, m.selectGroup(ids))
			},
		},
	})
	m.console.Log().Append(domain.OutputEntry{
		Type: domain.OutputResponse,
		Text: "Welcome. Type help for commands, focus <name> to chat.",
	})
	m.syncTarget()
	m.layout()
	return m
}

// Console exposes the underlying state machine.
func (m *Model) Console() *console.Console {
	return m.console
}

// Init starts the cursor blink and spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case dispatchResultMsg:
		return m, m.apply(msg)
	case ReloadedMsg:
		m.console.Log().Append(domain.OutputEntry{Type: domain.OutputResponse, Text: "Personalities reloaded from disk."})
		m.layout()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.console.Mode() == console.ModeIdle {
		switch msg.Type {
		case tea.KeyCtrlC:
			return tea.Quit
		case tea.KeyCtrlT:
			m.issues.Toggle()
			m.layout()
			return nil
		case tea.KeyCtrlUp:
			m.issues.Resize(1)
			m.layout()
			return nil
		case tea.KeyCtrlDown:
			m.issues.Resize(-1)
			m.layout()
			return nil
		case tea.KeyCtrlO:
			m.history.Toggle()
			m.layout()
			return nil
		}
	}

	wasSearching := m.console.SearchOpen()
	res := m.console.HandleKey(toKey(msg))
	var cmds []tea.Cmd

	switch {
	case m.console.SearchOpen():
		if !wasSearching {
			m.search.SetValue("")
			m.search.Focus()
			m.input.Blur()
		}
		if !res.Consumed {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			cmds = append(cmds, cmd)
			res = m.console.SetSearchQuery(m.search.Value())
		}
	case wasSearching:
		m.search.Blur()
		m.input.Focus()
	case !res.Consumed:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.console.SetInput(m.input.Value())
	default:
		if m.input.Value() != m.console.Input() {
			m.input.SetValue(m.console.Input())
			m.input.CursorEnd()
		}
	}

	if res.Submit != "" {
		cmds = append(cmds, m.dispatch(res.Submit))
	}
	cmds = append(cmds, m.queued...)
	m.queued = nil

	m.layout()
	m.scroll(res)
	return tea.Batch(cmds...)
}

func (m *Model) dispatch(line string) tea.Cmd {
	if m.busy {
		m.console.Log().Append(domain.OutputEntry{Type: domain.OutputWarning, Text: "Still waiting for the previous reply."})
		m.console.SetInput(line)
		m.input.SetValue(line)
		m.input.CursorEnd()
		return nil
	}
	m.busy = true
	ctx, host := m.ctx, m.host
	return func() tea.Msg {
		res, err := host.Dispatch(ctx, line)
		return dispatchResultMsg{line: line, result: res, err: err}
	}
}

func (m *Model) selectModel(name string) tea.Cmd {
	ctx, host := m.ctx, m.host
	return func() tea.Msg {
		res, err := host.SelectModel(ctx, name)
		return dispatchResultMsg{line: "models", result: res, err: err}
	}
}

func (m *Model) selectGroup(ids []string) tea.Cmd {
	ctx, host := m.ctx, m.host
	return func() tea.Msg {
		res, err := host.SelectGroup(ctx, ids)
		return dispatchResultMsg{line: "group", result: res, err: err}
	}
}

func (m *Model) apply(msg dispatchResultMsg) tea.Cmd {
	m.busy = false
	log := m.console.Log()
	log.Append(msg.result.Entries...)
	if msg.err != nil {
		log.Append(domain.OutputEntry{Type: domain.OutputError, Text: msg.err.Error()})
		if m.logger != nil {
			m.logger.Error("dispatch failed", msg.err, map[string]interface{}{"line_length": len(msg.line)})
		}
	}

	var quit bool
	for _, effect := range msg.result.Effects {
		switch effect.Effect {
		case domain.EffectClearLog:
			log.Clear()
		case domain.EffectShowIssues:
			if log.View() != console.ViewIssues {
				m.console.ToggleIssues()
			}
		case domain.EffectOpenSearch:
			m.console.OpenSearch(effect.Arg)
			m.search.SetValue(effect.Arg)
			m.search.CursorEnd()
			m.search.Focus()
			m.input.Blur()
		case domain.EffectExportText, domain.EffectExportJSON:
			log.Append(m.export(effect.Effect == domain.EffectExportJSON))
		case domain.EffectCopyTranscript:
			log.Append(m.copyTranscript())
		case domain.EffectShowHistory:
			m.history.Show()
		case domain.EffectFocus, domain.EffectUnfocus, domain.EffectModelChanged:
			m.syncTarget()
		case domain.EffectQuit:
			quit = true
		}
	}

	m.layout()
	if cursor := m.console.SearchCursor(); m.console.SearchOpen() && cursor != nil {
		if idx, ok := cursor.Current(); ok {
			m.scroll(console.Result{Scroll: console.ScrollToEntry, Target: idx})
		}
	} else {
		m.output.GotoBottom()
	}
	if quit {
		return tea.Quit
	}
	return nil
}

func (m *Model) syncTarget() {
	if m.host == nil {
		return
	}
	status := m.host.Status()
	target := status.Focus
	if target == "" {
		target = strings.Join(status.Group, ", ")
	}
	m.console.SetChatTarget(target)
}

func (m *Model) transcriptMeta() console.TranscriptMeta {
	var status domain.SessionStatus
	if m.host != nil {
		status = m.host.Status()
	}
	return console.MetaFromStatus(status, m.now())
}

func (m *Model) export(asJSON bool) domain.OutputEntry {
	entries := m.console.Log().Entries()
	meta := m.transcriptMeta()
	var (
		data []byte
		ext  = ".txt"
		err  error
	)
	if asJSON {
		ext = ".json"
		data, err = console.TranscriptJSON(entries, meta)
	} else {
		data = []byte(console.FormatTranscript(entries, meta))
	}
	if err == nil {
		err = os.MkdirAll(m.exportDir, 0o755)
	}
	path := filepath.Join(m.exportDir, "transcript-"+meta.ExportedAt.Format(exportStamp)+ext)
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return domain.OutputEntry{Type: domain.OutputError, Text: fmt.Sprintf("Export failed: %v", err)}
	}
	return domain.OutputEntry{Type: domain.OutputResponse, Text: "Transcript saved to " + path}
}

func (m *Model) copyTranscript() domain.OutputEntry {
	if m.clipboard == nil || !m.clipboard.Enabled() {
		return domain.OutputEntry{Type: domain.OutputWarning, Text: "Clipboard is not available on this system."}
	}
	text := console.FormatTranscript(m.console.Log().Entries(), m.transcriptMeta())
	if err := m.clipboard.Copy(text); err != nil {
		return domain.OutputEntry{Type: domain.OutputError, Text: fmt.Sprintf("Copy failed: %v", err)}
	}
	return domain.OutputEntry{Type: domain.OutputResponse, Text: "Transcript copied to clipboard."}
}

func (m *Model) modelItems() ([]console.SelectionItem, string) {
	if m.host == nil {
		return nil, ""
	}
	models, err := m.host.Models(m.ctx)
	if err != nil {
		return nil, ""
	}
	items := make([]console.SelectionItem, len(models))
	for i, model := range models {
		items[i] = console.SelectionItem{
			ID:     model.Name,
			Label:  model.Name,
			Detail: fmt.Sprintf("%s %s", model.Kind(), model.ModelID),
		}
	}
	return items, m.host.Status().Model
}

func (m *Model) personalityItems() []console.SelectionItem {
	if m.host == nil {
		return nil
	}
	list, err := m.host.Personalities(m.ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("personality list failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	items := make([]console.SelectionItem, len(list))
	for i, p := range list {
		items[i] = console.SelectionItem{ID: p.ID, Label: p.Name, Detail: p.Model}
	}
	return items
}

// layout sizes the viewport to the space the chrome leaves and re-renders.
func (m *Model) layout() {
	chrome := 5 // header, banner, suggestions, input, footer
	if m.console.SearchOpen() {
		chrome++
	}
	if m.history.Visible() {
		chrome += m.history.Height() + 1
	}
	if m.issues.Visible() {
		chrome += m.issues.Height() + 1
	}
	chrome += m.overlayHeight()

	m.output.Width = m.width
	m.output.Height = max(3, m.height-chrome)
	m.input.Width = max(10, m.width-4)
	m.renderer.SetWidth(max(20, m.width-2))

	m.output.SetContent(m.renderLog())
	m.history.SetContent(m.width, strings.Join(m.console.History().All(), "\n"))
	m.issues.SetContent(m.width, m.renderIssues())
}

func (m *Model) renderLog() string {
	log := m.console.Log()
	current := -1
	if cursor := m.console.SearchCursor(); m.console.SearchOpen() && cursor != nil {
		if idx, ok := cursor.Current(); ok {
			current = idx
		}
	}
	m.offsets = map[int]int{}
	var b strings.Builder
	line := 0
	for _, idx := range log.Visible() {
		text := m.renderer.Entry(log.Entry(idx), idx == current)
		m.offsets[idx] = line
		b.WriteString(text)
		b.WriteString("\n")
		line += strings.Count(text, "\n") + 1
	}
	return b.String()
}

func (m *Model) renderIssues() string {
	entries := m.console.Log().Filter(func(e domain.OutputEntry) bool { return e.Type.IsIssue() })
	if len(entries) > issuesShown {
		entries = entries[len(entries)-issuesShown:]
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = m.theme.Entry(e.Type).Render(console.FormatEntry(e))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) scroll(res console.Result) {
	switch res.Scroll {
	case console.ScrollTop:
		m.output.GotoTop()
	case console.ScrollBottom:
		m.output.GotoBottom()
	case console.ScrollPageUp:
		m.output.PageUp()
	case console.ScrollPageDown:
		m.output.PageDown()
	case console.ScrollToEntry:
		if offset, ok := m.offsets[res.Target]; ok {
			m.output.SetYOffset(offset)
		}
	}
}

func (m *Model) overlayHeight() int {
	switch m.console.Mode() {
	case console.ModeModelSelect:
		return len(m.console.ModelSelect().Items()) + 4
	case console.ModePersonalityMultiSelect:
		return len(m.console.MultiSelect().Items()) + 4
	}
	return 0
}

// View renders the screen.
func (m *Model) View() string {
	sections := []string{m.header(), m.output.View()}
	if m.history.Visible() {
		sections = append(sections, m.theme.Muted.Render(m.history.Title()), m.history.View())
	}
	if m.issues.Visible() {
		errs, warns := m.console.Log().IssueCounts()
		title := fmt.Sprintf("%s (%d errors, %d warnings)", m.issues.Title(), errs, warns)
		sections = append(sections, m.theme.Muted.Render(title), m.issues.View())
	}
	if overlay := m.overlay(); overlay != "" {
		sections = append(sections, overlay)
	}
	if m.console.SearchOpen() {
		sections = append(sections, m.searchBar())
	}
	sections = append(sections, m.banner(), m.suggestions(), m.inputLine(), m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) header() string {
	if m.host == nil {
		return m.theme.Header.Render("Persona")
	}
	status := m.host.Status()
	parts := []string{"Persona", fmt.Sprintf("model %s (%s)", status.Model, status.Provider)}
	if target := m.console.ChatTarget(); target != "" {
		parts = append(parts, "chatting with "+target)
	}
	if status.Topic != "" {
		parts = append(parts, "topic: "+status.Topic)
	}
	if m.console.Log().View() == console.ViewIssues {
		parts = append(parts, "issues view")
	}
	return m.theme.Header.Render(strings.Join(parts, " | "))
}

func (m *Model) overlay() string {
	var rows []string
	switch m.console.Mode() {
	case console.ModeModelSelect:
		sel := m.console.ModelSelect()
		rows = append(rows, m.theme.Accent.Render("Select a model"))
		for i, item := range sel.Items() {
			rows = append(rows, m.row(i, i == sel.Index(), "", item))
		}
		rows = append(rows, m.theme.Muted.Render("up/down move, 1-9 pick, enter confirm, esc cancel"))
	case console.ModePersonalityMultiSelect:
		sel := m.console.MultiSelect()
		rows = append(rows, m.theme.Accent.Render("Select personalities for a group chat"))
		for i, item := range sel.Items() {
			mark := "[ ] "
			if sel.IsChosen(item.ID) {
				mark = "[x] "
			}
			rows = append(rows, m.row(i, i == sel.Index(), mark, item))
		}
		hint := "space toggle, enter confirm, esc cancel"
		if !sel.CanConfirm() {
			hint += fmt.Sprintf(" (choose at least %d)", console.MinGroupSize)
		}
		rows = append(rows, m.theme.Muted.Render(hint))
	default:
		return ""
	}
	return m.theme.Overlay.Render(strings.Join(rows, "\n"))
}

func (m *Model) row(i int, active bool, mark string, item console.SelectionItem) string {
	text := fmt.Sprintf("%d. %s%s", i+1, mark, item.Label)
	if item.Detail != "" {
		text += "  " + m.theme.Muted.Render(item.Detail)
	}
	if active {
		return m.theme.Selected.Render(text)
	}
	return text
}

func (m *Model) searchBar() string {
	status := "no matches"
	if cursor := m.console.SearchCursor(); cursor != nil && cursor.Len() > 0 {
		status = fmt.Sprintf("%d/%d", cursor.Position(), cursor.Len())
	}
	return m.search.View() + "  " + m.theme.Muted.Render(status)
}

func (m *Model) banner() string {
	v := m.console.Validation()
	if v.IsZero() {
		return ""
	}
	if v.Severity == domain.SeverityError {
		return m.theme.Danger.Render(v.Message)
	}
	return m.theme.Alert.Render(v.Message)
}

func (m *Model) suggestions() string {
	list := m.console.Suggestions()
	parts := make([]string, len(list))
	for i, s := range list {
		if i == m.console.Highlight() {
			parts[i] = m.theme.Selected.Render(s)
			continue
		}
		parts[i] = m.theme.Suggestion.Render(s)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) inputLine() string {
	if m.busy {
		return m.spinner.View() + " " + m.input.View()
	}
	return m.input.View()
}

func (m *Model) footer() string {
	return m.theme.Muted.Render("tab suggest | ctrl+f search | ctrl+e issues | ctrl+t issue panel | ctrl+o history | ctrl+c quit")
}
