package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "gpt-4o-mini", cfg.Preferences.DefaultModel)
	assert.True(t, cfg.HasModel("echo"))
	assert.Equal(t, domain.DefaultHistoryCapacity, cfg.History.Capacity)
	assert.Contains(t, cfg.Voices.Providers, "elevenlabs")
}

func TestLoadHydratesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: local
    provider: ollama
    model_id: llama3
`), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Preferences.DefaultModel)
	assert.Equal(t, domain.DefaultChatRounds, cfg.Preferences.ChatRounds)
	assert.Equal(t, domain.StorageBackendSQLite, cfg.History.Backend)
	assert.Equal(t, domain.DefaultMaxTokens, cfg.Models[0].MaxTokens)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [oops"), 0o600))
	_, err := NewFileLoader(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSaveAndBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)
	cfg := DefaultConfig()
	cfg.Preferences.UserName = "sam"
	require.NoError(t, loader.Save(cfg))

	backup, err := loader.Backup()
	require.NoError(t, err)
	assert.FileExists(t, backup)

	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sam", loaded.Preferences.UserName)
}

func TestBackupWithoutFile(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "none.yaml")).Backup()
	assert.Error(t, err)
}

func TestPathFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(EnvConfigPath, path)
	assert.Equal(t, path, NewFileLoader("").Path())
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)
	require.NoError(t, os.WriteFile(path, []byte("preferences:\n  user_name: x\n"), 0o600))
	cfg, err := loader.Reset()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Preferences.UserName)
}
