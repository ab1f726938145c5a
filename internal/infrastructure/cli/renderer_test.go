package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRenderResult(t *testing.T) {
	var res domain.DispatchResult
	res.Add(domain.OutputCommand, "focus Ada", "")
	res.Add(domain.OutputResponse, "Now chatting with Ada.", "")
	res.Add(domain.OutputAIResponse, "Hello there.", "Ada")
	res.Add(domain.OutputWarning, "Model gpt is replying offline.", "")
	res.Request(domain.EffectFocus, "Ada")
	res.Request(domain.EffectExportText, "")

	var out bytes.Buffer
	RenderResult(&out, res)
	text := out.String()

	assert.NotContains(t, text, "focus Ada")
	assert.Contains(t, text, "Now chatting with Ada.")
	assert.Contains(t, text, "Ada: Hello there.")
	assert.Contains(t, text, "warning: Model gpt is replying offline.")
	assert.Contains(t, text, "(export_text is only available in the interactive console)")
	assert.NotContains(t, text, "(focus")
}

func TestFirstIssue(t *testing.T) {
	var res domain.DispatchResult
	assert.Empty(t, FirstIssue(res))
	res.Add(domain.OutputWarning, "careful", "")
	res.Add(domain.OutputError, "Unknown model 'x'.", "")
	assert.Equal(t, "Unknown model 'x'.", FirstIssue(res))
}

func TestRenderTranscript(t *testing.T) {
	var out bytes.Buffer
	RenderTranscript(&out, []domain.OutputEntry{
		{Type: domain.OutputUserMessage, Text: "hi", AuthorName: "You"},
		{Type: domain.OutputCommand, Text: "help"},
	})
	assert.Equal(t, "[USER] You: hi\n[CMD] > help\n", out.String())
}

func TestSpinnerStopsCleanly(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out, "Thinking", true)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	assert.True(t, strings.Contains(out.String(), "Thinking 0s"))
	assert.True(t, strings.HasSuffix(out.String(), clearLine))

	s.Start()
	s.Stop()
}

func TestSpinnerIsSilentOffTerminal(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, "Thinking")
	s.Start()
	s.Stop()
	assert.Empty(t, out.String())
}
