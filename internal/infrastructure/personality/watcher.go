package personality

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/persona-go/internal/pkg/debounce"
	"github.com/doeshing/persona-go/internal/ports"
)

// Reloader is anything that can re-read its backing file. Reload reports
// whether the content changed since the last read or write.
type Reloader interface {
	Reload() (bool, error)
}

// Watcher reloads a store when its file changes on disk. Bursts of events
// (editors write, chmod and rename in quick succession) collapse into one
// reload after the debounce window.
type Watcher struct {
	path     string
	store    Reloader
	debounce *debounce.Debouncer
	logger   ports.Logger
	onReload func()
}

// NewWatcher builds a watcher for path. onReload, if set, runs after every
// reload that picked up a change.
func NewWatcher(path string, store Reloader, window time.Duration, logger ports.Logger, onReload func()) *Watcher {
	return &Watcher{
		path:     path,
		store:    store,
		debounce: debounce.New(window),
		logger:   logger,
		onReload: onReload,
	}
}

// Run watches until ctx is done. The parent directory is watched so that
// atomic rename-over saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	defer w.debounce.Cancel()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.debounce.Debounce(w.reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.warn("personality watcher error", err)
		}
	}
}

func (w *Watcher) reload() {
	changed, err := w.store.Reload()
	if err != nil {
		w.warn("personality reload failed", err)
		return
	}
	if !changed {
		return
	}
	if w.logger != nil {
		w.logger.Debug("personalities reloaded", map[string]interface{}{"path": w.path})
	}
	if w.onReload != nil {
		w.onReload()
	}
}

func (w *Watcher) warn(msg string, err error) {
	if w.logger != nil {
		w.logger.Warn(msg, map[string]interface{}{"path": w.path, "error": err.Error()})
	}
}
