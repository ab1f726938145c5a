package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

type memoryStore struct {
	data    map[string]string
	failSet bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(key, value string) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

type loginMatcher struct{}

func (loginMatcher) IsSensitive(cmd string) bool {
	return strings.HasPrefix(strings.TrimLeft(cmd, "!/"), "login ")
}

func stored(t *testing.T, store *memoryStore) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal([]byte(store.data[domain.HistoryStorageKey]), &out))
	return out
}

func TestHistoryAppendInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vocab := []string{"help", "clear", "focus Alice", "talk Alice Bob", "unfocus", "topic mars"}
	for _, capacity := range []int{1, 3, 5} {
		h := NewHistory(capacity)
		for i := 0; i < 500; i++ {
			h.Append(vocab[rng.Intn(len(vocab))])
			all := h.All()
			require.LessOrEqual(t, len(all), capacity)
			seen := map[string]bool{}
			for j, entry := range all {
				if j > 0 {
					require.NotEqual(t, all[j-1], entry, "adjacent duplicate")
				}
				require.False(t, seen[entry], "duplicate %q", entry)
				seen[entry] = true
			}
		}
	}
}

func TestHistoryReinsertMovesToEnd(t *testing.T) {
	h := NewHistory(10)
	h.Append("a")
	h.Append("b")
	h.Append("c")
	assert.False(t, h.Append("c"))
	assert.True(t, h.Append("a"))
	assert.Equal(t, []string{"b", "c", "a"}, h.All())
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(fmt.Sprintf("cmd%d", i))
	}
	assert.Equal(t, []string{"cmd2", "cmd3", "cmd4"}, h.All())
}

func TestHistoryNavigation(t *testing.T) {
	h := NewHistory(10)
	for _, c := range []string{"one", "two", "three"} {
		h.Append(c)
	}

	_, ok := h.Next()
	assert.False(t, ok, "next without selection")

	for _, want := range []string{"three", "two", "one", "one"} {
		got, ok := h.Previous()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	got, _ := h.Next()
	assert.Equal(t, "two", got)
	got, _ = h.Next()
	assert.Equal(t, "three", got)
	got, ok = h.Next()
	assert.True(t, ok)
	assert.Equal(t, "", got)
	assert.Equal(t, -1, h.Cursor())

	h.Previous()
	h.Append("four")
	assert.Equal(t, -1, h.Cursor())
}

func TestHistoryPreviousOnEmpty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Previous()
	assert.False(t, ok)
}

func TestHistoryPersistsAndSkipsSensitive(t *testing.T) {
	store := newMemoryStore()
	h := NewHistory(10, WithStore(store, domain.HistoryStorageKey), WithSensitiveMatcher(loginMatcher{}))
	h.Append("help")
	h.Append("login sk-secret")
	h.Append("focus Alice")

	assert.Equal(t, []string{"help", "login sk-secret", "focus Alice"}, h.All())
	assert.Equal(t, []string{"help", "focus Alice"}, stored(t, store))
	assert.NotContains(t, store.data[domain.HistoryStorageKey], "sk-secret")
}

func TestHistoryLoadFiltersSensitive(t *testing.T) {
	store := newMemoryStore()
	store.data[domain.HistoryStorageKey] = `["help","!login sk-old","clear","clear"]`
	h := NewHistory(10, WithStore(store, domain.HistoryStorageKey), WithSensitiveMatcher(loginMatcher{}))
	require.NoError(t, h.Load())

	assert.Equal(t, []string{"help", "clear"}, h.All())
	assert.Equal(t, []string{"help", "clear"}, stored(t, store))
}

func TestHistoryLoadMissingKey(t *testing.T) {
	h := NewHistory(10, WithStore(newMemoryStore(), domain.HistoryStorageKey))
	require.NoError(t, h.Load())
	assert.Zero(t, h.Len())
}

func TestHistoryLoadCorrupt(t *testing.T) {
	store := newMemoryStore()
	store.data[domain.HistoryStorageKey] = `{not json`
	h := NewHistory(10, WithStore(store, domain.HistoryStorageKey))
	assert.Error(t, h.Load())
}

func TestHistoryAppendSurvivesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.failSet = true
	h := NewHistory(10, WithStore(store, domain.HistoryStorageKey))
	assert.True(t, h.Append("help"))
	assert.Equal(t, []string{"help"}, h.All())
}

func TestHistoryClear(t *testing.T) {
	store := newMemoryStore()
	h := NewHistory(10, WithStore(store, domain.HistoryStorageKey))
	h.Append("help")
	h.Previous()

	require.NoError(t, h.Clear())
	assert.Zero(t, h.Len())
	assert.Equal(t, noSelection, h.Cursor())
	_, ok := store.data[domain.HistoryStorageKey]
	assert.False(t, ok)
}
