package console

import (
	"encoding/json"
	"fmt"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

// noSelection is the cursor value when the input is not showing a history entry.
const noSelection = -1

// History is the capacity-bounded command log with a navigation cursor.
// Sensitive commands may sit in memory for the session but are never written
// to the backing store.
type History struct {
	entries   []string
	capacity  int
	cursor    int
	store     ports.KeyValueStore
	key       string
	sensitive ports.SensitiveMatcher
	logger    ports.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithStore persists the history as a JSON array under key.
func WithStore(store ports.KeyValueStore, key string) HistoryOption {
	return func(h *History) {
		h.store = store
		h.key = key
	}
}

// WithSensitiveMatcher sets the predicate used to keep credentials out of storage.
func WithSensitiveMatcher(m ports.SensitiveMatcher) HistoryOption {
	return func(h *History) { h.sensitive = m }
}

// WithLogger reports storage failures.
func WithLogger(l ports.Logger) HistoryOption {
	return func(h *History) { h.logger = l }
}

// NewHistory creates an empty history. A non-positive capacity uses the default.
func NewHistory(capacity int, opts ...HistoryOption) *History {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryCapacity
	}
	h := &History{capacity: capacity, cursor: noSelection, key: domain.HistoryStorageKey}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load reads the persisted history once at session start. Sensitive entries
// found in storage are dropped and the cleaned list is written back.
func (h *History) Load() error {
	if h.store == nil {
		return nil
	}
	raw, ok, err := h.store.Get(h.key)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	h.entries = h.entries[:0]
	dropped := false
	for _, cmd := range stored {
		if h.isSensitive(cmd) {
			dropped = true
			continue
		}
		h.insert(cmd)
	}
	h.cursor = noSelection
	if dropped || len(h.entries) != len(stored) {
		return h.persist()
	}
	return nil
}

// Append records a submitted command and resets the cursor. It reports whether
// the stored order changed.
func (h *History) Append(cmd string) bool {
	h.cursor = noSelection
	if cmd == "" {
		return false
	}
	if !h.insert(cmd) {
		return false
	}
	if err := h.persist(); err != nil && h.logger != nil {
		h.logger.Warn("history not persisted", map[string]interface{}{"error": err.Error()})
	}
	return true
}

func (h *History) insert(cmd string) bool {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return false
	}
	for i, existing := range h.entries {
		if existing == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append([]string(nil), h.entries[over:]...)
	}
	return true
}

// Previous moves toward older entries, stopping at the oldest.
func (h *History) Previous() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == noSelection:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves toward newer entries; stepping past the newest clears the
// selection and returns an empty line.
func (h *History) Next() (string, bool) {
	if h.cursor == noSelection {
		return "", false
	}
	if h.cursor >= len(h.entries)-1 {
		h.cursor = noSelection
		return "", true
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Clear forgets every entry and removes the persisted copy.
func (h *History) Clear() error {
	h.entries = nil
	h.cursor = noSelection
	if h.store == nil {
		return nil
	}
	if err := h.store.Delete(h.key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// ResetCursor returns to "no selection".
func (h *History) ResetCursor() {
	h.cursor = noSelection
}

// Cursor returns the selected index, or -1.
func (h *History) Cursor() int {
	return h.cursor
}

// All returns the entries oldest first.
func (h *History) All() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Capacity returns the eviction bound.
func (h *History) Capacity() int {
	return h.capacity
}

func (h *History) isSensitive(cmd string) bool {
	return h.sensitive != nil && h.sensitive.IsSensitive(cmd)
}

func (h *History) persist() error {
	if h.store == nil {
		return nil
	}
	durable := make([]string, 0, len(h.entries))
	for _, cmd := range h.entries {
		if !h.isSensitive(cmd) {
			durable = append(durable, cmd)
		}
	}
	data, err := json.Marshal(durable)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(h.key, string(data)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
