// Package personality persists the personality catalogue as YAML and keeps it
// in sync with edits made outside the running process.
package personality

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/persona-go/assets"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

// ErrNotFound is returned when no personality matches a key.
var ErrNotFound = errors.New("personality not found")

// ErrDuplicateName is returned when saving would create two personalities
// with the same name.
var ErrDuplicateName = errors.New("personality name already in use")

type catalogue struct {
	Personalities []domain.Personality `yaml:"personalities"`
}

// YAMLStore is a ports.PersonalityRepository backed by one YAML file. The file
// is read once and cached; Reload picks up external edits.
type YAMLStore struct {
	path string

	mu     sync.RWMutex
	loaded bool
	items  []domain.Personality
	raw    []byte // file content as last read or written
}

// NewYAMLStore returns a store for path. A missing file is seeded from the
// embedded defaults on first access.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Path exposes the backing file.
func (s *YAMLStore) Path() string {
	return s.path
}

// List returns all personalities in file order.
func (s *YAMLStore) List(ctx context.Context) ([]domain.Personality, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Personality, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Get finds a personality by ID or case-insensitive name.
func (s *YAMLStore) Get(ctx context.Context, key string) (domain.Personality, error) {
	if err := s.ensureLoaded(); err != nil {
		return domain.Personality{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(key); idx >= 0 {
		return s.items[idx], nil
	}
	return domain.Personality{}, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Save inserts or replaces a personality. A blank ID is assigned a new uuid.
func (s *YAMLStore) Save(ctx context.Context, p domain.Personality) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	items := make([]domain.Personality, len(s.items))
	copy(items, s.items)

	replaced := false
	for i, existing := range items {
		if existing.ID == p.ID {
			items[i] = p
			replaced = true
			continue
		}
		if strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
	}
	if !replaced {
		items = append(items, p)
	}
	if err := s.write(items); err != nil {
		return err
	}
	s.items = items
	return nil
}

// Delete removes the personality matching key.
func (s *YAMLStore) Delete(ctx context.Context, key string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(key)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	items := make([]domain.Personality, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)
	if err := s.write(items); err != nil {
		return err
	}
	s.items = items
	return nil
}

// Reload re-reads the file, replacing the cache. It reports false when the
// content is what the store last read or wrote itself. Entries without an
// id are given one and the file is rewritten.
func (s *YAMLStore) Reload() (bool, error) {
	data, err := s.read()
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && bytes.Equal(data, s.raw) {
		return false, nil
	}
	items, err := Decode(data)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if assignIDs(items) {
		if err := s.write(items); err != nil {
			return false, err
		}
	} else {
		s.raw = data
	}
	s.items = items
	s.loaded = true
	return true, nil
}

func (s *YAMLStore) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err := s.Reload()
	return err
}

func assignIDs(items []domain.Personality) bool {
	changed := false
	for i := range items {
		if strings.TrimSpace(items[i].ID) == "" {
			items[i].ID = uuid.NewString()
			changed = true
		}
	}
	return changed
}

func (s *YAMLStore) indexOf(key string) int {
	key = strings.TrimSpace(key)
	for i, p := range s.items {
		if p.Matches(key) {
			return i
		}
	}
	return -1
}

func (s *YAMLStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.seed(); err != nil {
			return nil, err
		}
		return assets.DefaultPersonalitiesYAML, nil
	} else if err != nil {
		return nil, fmt.Errorf("read personalities: %w", err)
	}
	return data, nil
}

func (s *YAMLStore) seed() error {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create personalities dir: %w", err)
	}
	return os.WriteFile(s.path, assets.DefaultPersonalitiesYAML, 0o644)
}

// write must be called with s.mu held.
func (s *YAMLStore) write(items []domain.Personality) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write personalities: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.raw = data
	return nil
}

// Decode parses a personalities document.
func Decode(data []byte) ([]domain.Personality, error) {
	var doc catalogue
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Personalities, nil
}

// Encode renders a personalities document.
func Encode(items []domain.Personality) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalogue{Personalities: items}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ ports.PersonalityRepository = (*YAMLStore)(nil)
