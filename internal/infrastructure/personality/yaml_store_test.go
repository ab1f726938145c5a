package personality

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestYAMLStoreSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "personalities.yaml")
	store := NewYAMLStore(path)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Socrates", list[0].Name)
	assert.FileExists(t, path)

	ada, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "0b6e3f9a-2d4c-4c1e-8a77-5e9d2c4b7f02", ada.ID)

	byID, err := store.Get(context.Background(), ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
}

func TestYAMLStoreSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "personalities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personalities: []\n"), 0o644))
	store := NewYAMLStore(path)

	require.NoError(t, store.Save(ctx, domain.Personality{Name: "Hypatia", Prompt: "You teach geometry.", Temperature: domain.Float(0.5)}))
	got, err := store.Get(ctx, "hypatia")
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)

	got.Prompt = "You teach astronomy."
	require.NoError(t, store.Save(ctx, got))

	reopened := NewYAMLStore(path)
	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "You teach astronomy.", list[0].Prompt)

	err = store.Save(ctx, domain.Personality{Name: "HYPATIA"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	require.NoError(t, store.Delete(ctx, got.ID))
	_, err = store.Get(ctx, "Hypatia")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "Hypatia"), ErrNotFound)
}

func TestYAMLStoreRejectsInvalid(t *testing.T) {
	store := NewYAMLStore(filepath.Join(t.TempDir(), "p.yaml"))
	err := store.Save(context.Background(), domain.Personality{Name: "two words"})
	assert.Error(t, err)
}

func TestYAMLStoreReloadSeesExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "personalities.yaml")
	store := NewYAMLStore(path)
	_, err := store.List(ctx)
	require.NoError(t, err)

	data, err := Encode([]domain.Personality{{ID: "x", Name: "Solo"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3, "cached until reload")

	changed, err := store.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Solo", list[0].Name)

	changed, err = store.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "same bytes on disk")

	require.NoError(t, store.Save(ctx, domain.Personality{Name: "Duet", Prompt: "x"}))
	changed, err = store.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "own write")
}

func TestYAMLStoreAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "personalities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personalities:\n  - name: Hand\n    prompt: Written by hand.\n"), 0o644))
	store := NewYAMLStore(path)

	p, err := store.Get(ctx, "Hand")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	p.Temperature = domain.Float(1.2)
	require.NoError(t, store.Save(ctx, p))

	list, err := NewYAMLStore(path).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	require.NotNil(t, list[0].Temperature)
	assert.InDelta(t, 1.2, *list[0].Temperature, 1e-9)
}

func TestYAMLStoreBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personalities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personalities: [oops"), 0o644))
	_, err := NewYAMLStore(path).List(context.Background())
	assert.ErrorContains(t, err, "parse")
}
