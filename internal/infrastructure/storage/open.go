// Package storage provides the durable key/value stores behind the console
// history and other small pieces of session state.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/pkg/filesystem"
	"github.com/doeshing/persona-go/internal/ports"
)

const (
	defaultSQLiteName = "state.db"
	defaultFileName   = "state.json"
)

// Open returns the store selected by settings. A SQLite store that cannot be
// opened falls back to the JSON file store next to it.
func Open(settings domain.HistorySettings, logger ports.Logger) ports.KeyValueStore {
	backend := strings.ToLower(strings.TrimSpace(settings.Backend))
	path := filesystem.ExpandPath(settings.Path)

	if backend == domain.StorageBackendFile {
		if path == "" {
			path = filepath.Join(filesystem.AppDir(), defaultFileName)
		}
		return NewFileStore(path)
	}

	if path == "" {
		path = filepath.Join(filesystem.AppDir(), defaultSQLiteName)
	}
	store, err := NewSQLiteStore(path)
	if err == nil {
		return store
	}
	fallback := filepath.Join(filepath.Dir(path), defaultFileName)
	if logger != nil {
		logger.Warn("sqlite store unavailable, using file store", map[string]interface{}{
			"path":     path,
			"fallback": fallback,
			"error":    err.Error(),
		})
	}
	return NewFileStore(fallback)
}
