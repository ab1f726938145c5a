package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesFlagCredentials(t *testing.T) {
	filter, err := NewFilter("")
	require.NoError(t, err)
	assert.Greater(t, filter.Count(), 0)

	sensitive := []string{
		"login sk-abc",
		"!login my-key",
		"/LOGIN key",
		"apikey 123",
		"set token=abc123",
		"my key is sk-1234567890abcdefghij",
	}
	for _, cmd := range sensitive {
		assert.True(t, filter.IsSensitive(cmd), cmd)
	}

	safe := []string{"help", "focus Alice", "topic logins and passwords", "login"}
	for _, cmd := range safe {
		assert.False(t, filter.IsSensitive(cmd), cmd)
	}
}

func TestMaskHidesCredential(t *testing.T) {
	filter, err := NewFilter("")
	require.NoError(t, err)
	assert.Equal(t, "login ********", filter.Mask("login sk-secret"))
	assert.Equal(t, "!login ********", filter.Mask("!login hunter2"))
	assert.Equal(t, "help", filter.Mask("help"))
}

func TestCustomRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "privacy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  sensitive_patterns:
    - pattern: '^secret\s+(\S+)'
      message: custom
      mask_group: 1
`), 0o600))

	filter, err := NewFilter(path)
	require.NoError(t, err)
	assert.Equal(t, 1, filter.Count())
	assert.True(t, filter.IsSensitive("secret abc"))
	assert.False(t, filter.IsSensitive("login abc"))

	rule, ok := filter.Match("secret abc")
	require.True(t, ok)
	assert.Equal(t, "custom", rule.Message)
}

func TestMissingRulesFileUsesDefaults(t *testing.T) {
	filter, err := NewFilter(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, filter.IsSensitive("login abc"))
}

func TestInvalidPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "privacy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  sensitive_patterns:\n    - pattern: '(['\n"), 0o600))
	_, err := NewFilter(path)
	assert.Error(t, err)
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	assert.False(t, f.IsSensitive("login x"))
	assert.Equal(t, "login x", f.Mask("login x"))
}
