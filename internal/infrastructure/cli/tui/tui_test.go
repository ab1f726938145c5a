package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
)

type mapStore map[string]string

func (m mapStore) Get(k string) (string, bool, error) {
	v, ok := m[k]
	return v, ok, nil
}

func (m mapStore) Set(k, v string) error {
	m[k] = v
	return nil
}

func (m mapStore) Delete(k string) error {
	delete(m, k)
	return nil
}

func (m mapStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys, nil
}

type stubHost struct {
	mu       sync.Mutex
	lines    []string
	result   domain.DispatchResult
	status   domain.SessionStatus
	models   []domain.ModelDefinition
	people   []domain.Personality
	selected string
	group    []string
}

func (h *stubHost) Dispatch(_ context.Context, line string) (domain.DispatchResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
	return h.result, nil
}

func (h *stubHost) Models(context.Context) ([]domain.ModelDefinition, error) {
	return h.models, nil
}

func (h *stubHost) Personalities(context.Context) ([]domain.Personality, error) {
	return h.people, nil
}

func (h *stubHost) SelectModel(_ context.Context, name string) (domain.DispatchResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = name
	h.status.Model = name
	var res domain.DispatchResult
	res.Add(domain.OutputResponse, "Model set to "+name+".", "")
	res.Request(domain.EffectModelChanged, name)
	return res, nil
}

func (h *stubHost) SelectGroup(_ context.Context, names []string) (domain.DispatchResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.group = names
	h.status.Group = []string{"Ada", "Marvin"}
	var res domain.DispatchResult
	res.Request(domain.EffectFocus, "Ada, Marvin")
	return res, nil
}

func (h *stubHost) Status() domain.SessionStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

type fakeClipboard struct {
	enabled bool
	text    string
}

func (c *fakeClipboard) Copy(text string) error {
	c.text = text
	return nil
}

func (c *fakeClipboard) Enabled() bool { return c.enabled }

func newTestModel(t *testing.T, host *stubHost) (*Model, mapStore) {
	t.Helper()
	store := mapStore{}
	m := New(context.Background(), Options{
		Host:          host,
		Table:         console.DefaultTable(nil),
		History:       console.NewHistory(10),
		Store:         store,
		ExportDir:     t.TempDir(),
		MarkdownStyle: "notty",
		Now:           func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, store
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// run executes cmd and feeds every produced message back into the model.
// Batches are expanded; non-result messages such as cursor blinks are skipped.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(t, m, c)
		}
	case dispatchResultMsg:
		_, next := m.Update(msg)
		run(t, m, next)
	}
}

func lastEntry(m *Model) domain.OutputEntry {
	log := m.Console().Log()
	return log.Entry(log.Len() - 1)
}

func TestToKey(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want console.KeyType
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, console.KeyRunes},
		{tea.KeyMsg{Type: tea.KeySpace}, console.KeySpace},
		{tea.KeyMsg{Type: tea.KeyBackspace}, console.KeyBackspace},
		{tea.KeyMsg{Type: tea.KeyEnter}, console.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyTab}, console.KeyTab},
		{tea.KeyMsg{Type: tea.KeyEsc}, console.KeyEsc},
		{tea.KeyMsg{Type: tea.KeyPgUp}, console.KeyPgUp},
		{tea.KeyMsg{Type: tea.KeyCtrlF}, console.KeyCtrlF},
		{tea.KeyMsg{Type: tea.KeyCtrlE}, console.KeyCtrlE},
		{tea.KeyMsg{Type: tea.KeyLeft}, console.KeyOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, toKey(tc.msg).Type, tc.msg.String())
	}
	assert.Equal(t, []rune{' '}, toKey(tea.KeyMsg{Type: tea.KeySpace}).Runes)
}

func TestPanelPersistsState(t *testing.T) {
	store := mapStore{}
	p := NewPanel("panel.issues", "Issues", store, nil, PanelState{Height: 4})
	assert.False(t, p.Visible())

	p.Toggle()
	p.Resize(3)
	assert.Contains(t, store["panel.issues"], `"visible":true`)

	again := NewPanel("panel.issues", "Issues", store, nil, PanelState{Height: 4})
	assert.Equal(t, PanelState{Height: 7, Visible: true}, again.State())

	again.Resize(100)
	assert.Equal(t, maxPanelHeight, again.Height())
	again.Resize(-100)
	assert.Equal(t, minPanelHeight, again.Height())
}

func TestPanelIgnoresCorruptState(t *testing.T) {
	store := mapStore{"panel.history": "{not json"}
	p := NewPanel("panel.history", "History", store, nil, PanelState{Height: 6})
	assert.Equal(t, PanelState{Height: 6}, p.State())
}

func TestSubmitDispatchesLine(t *testing.T) {
	host := &stubHost{status: domain.SessionStatus{Model: "gpt"}}
	host.result.Add(domain.OutputCommand, "topic tea", "")
	host.result.Add(domain.OutputResponse, `Topic set to "tea".`, "")
	m, _ := newTestModel(t, host)

	typeText(m, "topic tea")
	assert.Equal(t, "topic tea", m.Console().Input())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.busy)
	run(t, m, cmd)

	assert.False(t, m.busy)
	assert.Equal(t, []string{"topic tea"}, host.lines)
	assert.Equal(t, `Topic set to "tea".`, lastEntry(m).Text)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"topic tea"}, m.Console().History().All())
}

func TestSecondSubmitWhileBusyIsRejected(t *testing.T) {
	m, _ := newTestModel(t, &stubHost{})
	typeText(m, "help")
	_, first := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	typeText(m, "topic tea")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, domain.OutputWarning, lastEntry(m).Type)
	assert.Equal(t, "topic tea", m.input.Value(), "rejected line stays in the input")
	assert.Equal(t, "topic tea", m.Console().Input())
}

func TestHistoryRecallSyncsInput(t *testing.T) {
	m, _ := newTestModel(t, &stubHost{})
	m.Console().History().Append("focus Ada")

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "focus Ada", m.input.Value())
}

func TestExportEffectsWriteFiles(t *testing.T) {
	host := &stubHost{status: domain.SessionStatus{User: "You", Model: "gpt", Provider: "openai"}}
	host.result.Add(domain.OutputUserMessage, "hello", "You")
	host.result.Request(domain.EffectExportText, "")
	host.result.Request(domain.EffectExportJSON, "")
	m, _ := newTestModel(t, host)

	typeText(m, "export")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	text, err := os.ReadFile(filepath.Join(m.exportDir, "transcript-20261019-093000.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "[USER] You: hello")
	assert.Contains(t, string(text), "Model: gpt")

	_, err = os.Stat(filepath.Join(m.exportDir, "transcript-20261019-093000.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lastEntry(m).Text, "Transcript saved to "))
}

func TestClearAndCopyEffects(t *testing.T) {
	host := &stubHost{}
	host.result.Request(domain.EffectClearLog, "")
	host.result.Request(domain.EffectCopyTranscript, "")
	m, _ := newTestModel(t, host)
	clip := &fakeClipboard{enabled: true}
	m.clipboard = clip

	typeText(m, "clear")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	require.Equal(t, 1, m.Console().Log().Len())
	assert.Equal(t, "Transcript copied to clipboard.", lastEntry(m).Text)
	assert.Contains(t, clip.text, "Persona Console Transcript")
}

func TestCopyWithoutClipboardWarns(t *testing.T) {
	host := &stubHost{}
	host.result.Request(domain.EffectCopyTranscript, "")
	m, _ := newTestModel(t, host)

	typeText(m, "copy")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)
	assert.Equal(t, domain.OutputWarning, lastEntry(m).Type)
}

func TestFocusEffectSetsChatTarget(t *testing.T) {
	host := &stubHost{}
	host.result.Request(domain.EffectFocus, "Ada")
	m, _ := newTestModel(t, host)

	typeText(m, "focus Ada")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	host.status.Focus = "Ada"
	run(t, m, cmd)

	assert.Equal(t, "Ada", m.Console().ChatTarget())
	assert.Contains(t, m.View(), "chatting with Ada")
}

func TestSearchEffectOpensSearchBar(t *testing.T) {
	host := &stubHost{}
	host.result.Add(domain.OutputResponse, "the quick fox", "")
	host.result.Request(domain.EffectOpenSearch, "fox")
	m, _ := newTestModel(t, host)

	typeText(m, "search fox")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	require.True(t, m.Console().SearchOpen())
	assert.Equal(t, "fox", m.search.Value())
	assert.Equal(t, 1, m.Console().SearchCursor().Len())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Console().SearchOpen())
	assert.True(t, m.input.Focused())
}

func TestModelPickerSelectsModel(t *testing.T) {
	host := &stubHost{
		status: domain.SessionStatus{Model: "gpt"},
		models: []domain.ModelDefinition{
			{Name: "gpt", Provider: domain.ProviderKindOpenAI, ModelID: "gpt-4o"},
			{Name: "claude", Provider: domain.ProviderKindAnthropic, ModelID: "claude-sonnet"},
		},
	}
	m, _ := newTestModel(t, host)

	typeText(m, "models")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, console.ModeModelSelect, m.Console().Mode())
	assert.Contains(t, m.View(), "Select a model")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	run(t, m, cmd)

	assert.Equal(t, console.ModeIdle, m.Console().Mode())
	assert.Equal(t, "claude", host.selected)
	assert.Equal(t, "Model set to claude.", lastEntry(m).Text)
}

func TestGroupPickerSelectsPersonalities(t *testing.T) {
	host := &stubHost{people: []domain.Personality{
		{ID: "1", Name: "Ada"},
		{ID: "2", Name: "Marvin"},
		{ID: "3", Name: "Socrates"},
	}}
	m, _ := newTestModel(t, host)

	typeText(m, "group")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, console.ModePersonalityMultiSelect, m.Console().Mode())

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	assert.Equal(t, []string{"1", "2"}, host.group)
	assert.Equal(t, "Ada, Marvin", m.Console().ChatTarget())
}

func TestPanelKeysPersist(t *testing.T) {
	m, store := newTestModel(t, &stubHost{})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, m.issues.Visible())
	assert.Contains(t, store[issuesPanelKey], `"visible":true`)
	assert.Contains(t, m.View(), "Issues (0 errors, 0 warnings)")
}

func TestReloadedMsgIsReported(t *testing.T) {
	m, _ := newTestModel(t, &stubHost{})
	m.Update(ReloadedMsg{})
	assert.Equal(t, "Personalities reloaded from disk.", lastEntry(m).Text)
}
