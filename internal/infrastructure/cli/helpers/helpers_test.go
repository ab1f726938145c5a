package helpers

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestParseYAMLValue(t *testing.T) {
	assert.Equal(t, 3, ParseYAMLValue("3"))
	assert.Equal(t, true, ParseYAMLValue("true"))
	assert.Equal(t, []interface{}{"a", "b"}, ParseYAMLValue("[a, b]"))
	assert.Equal(t, "key: [unclosed", ParseYAMLValue("key: [unclosed"))
	assert.Equal(t, "", ParseYAMLValue(""))
}

func TestConfigTreeLookupAndAssign(t *testing.T) {
	cfg := domain.Config{
		Preferences: domain.Preferences{UserName: "Ada", ChatRounds: 3},
		Models:      []domain.ModelDefinition{{Name: "gpt", ModelID: "gpt-4o", Temperature: 0.7}},
	}
	tree, err := ConfigTree(cfg)
	require.NoError(t, err)

	v, err := LookupKey(tree, "preferences.user_name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	v, err = LookupKey(tree, "models.0.model_id")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", v)

	require.NoError(t, AssignKey(tree, "preferences.chat_rounds", "5"))
	require.NoError(t, AssignKey(tree, "models.0.temperature", "1.2"))

	updated, err := ConfigFromTree(tree)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Preferences.ChatRounds)
	assert.Equal(t, 1.2, updated.Models[0].Temperature)
	assert.Equal(t, "Ada", updated.Preferences.UserName)
}

func TestConfigTreeRejectsUnknownKeys(t *testing.T) {
	tree, err := ConfigTree(domain.Config{Preferences: domain.Preferences{UserName: "Ada"}})
	require.NoError(t, err)

	_, err = LookupKey(tree, "preferences.colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorContains(t, err, "under preferences:")
	assert.ErrorContains(t, err, "user_name")

	err = AssignKey(tree, "preferences.colour", "blue")
	assert.ErrorIs(t, err, ErrUnknownKey)

	err = AssignKey(tree, "models.3.name", "x")
	assert.ErrorIs(t, err, ErrUnknownKey)

	err = AssignKey(tree, "", "x")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestPromptForText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("You are Ada.\nYou like engines.\n\nignored\n"))
	text := PromptForText(&out, reader, "Prompt for Ada")
	assert.Equal(t, "You are Ada.\nYou like engines.", text)
	assert.Contains(t, out.String(), "Prompt for Ada")

	reader = bufio.NewReader(strings.NewReader("no trailing newline"))
	assert.Equal(t, "no trailing newline", PromptForText(&out, reader, "x"))
}

func TestPrintWarnings(t *testing.T) {
	var out bytes.Buffer
	PrintWarnings(&out, []string{" key missing ", "", "  "})
	assert.Equal(t, "Warning: key missing\n", out.String())
}
