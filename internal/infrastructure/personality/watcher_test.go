package personality

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/persona-go/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingReloader struct{ n atomic.Int32 }

func (c *countingReloader) Reload() (bool, error) {
	c.n.Add(1)
	return true, nil
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personalities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personalities: []\n"), 0o644))

	reloader := &countingReloader{}
	reloaded := make(chan struct{}, 4)
	w := NewWatcher(path, reloader, 50*time.Millisecond, nil, func() { reloaded <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("personalities: []\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloader.n.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherReloadsStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personalities.yaml")
	store := NewYAMLStore(path)
	_, err := store.List(context.Background())
	require.NoError(t, err)

	reloaded := make(chan struct{}, 4)
	w := NewWatcher(path, store, 20*time.Millisecond, nil, func() { reloaded <- struct{}{} })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	data, err := Encode([]domain.Personality{{ID: "a", Name: "One"}, {ID: "b", Name: "Two"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personalities.yaml")
	store := NewYAMLStore(path)
	_, err := store.List(context.Background())
	require.NoError(t, err)

	reloaded := make(chan struct{}, 4)
	w := NewWatcher(path, store, 20*time.Millisecond, nil, func() { reloaded <- struct{}{} })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, store.Save(context.Background(), domain.Personality{Name: "Hypatia", Prompt: "You teach geometry."}))

	select {
	case <-reloaded:
		t.Fatal("reloaded after the store's own save")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
