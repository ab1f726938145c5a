package app

import (
	"context"
	"io"
	"path/filepath"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/application/dispatch"
	"github.com/doeshing/persona-go/internal/application/doctor"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/infrastructure/ai"
	"github.com/doeshing/persona-go/internal/infrastructure/config"
	"github.com/doeshing/persona-go/internal/infrastructure/personality"
	"github.com/doeshing/persona-go/internal/infrastructure/security"
	"github.com/doeshing/persona-go/internal/infrastructure/storage"
	"github.com/doeshing/persona-go/internal/pkg/debounce"
	"github.com/doeshing/persona-go/internal/pkg/filesystem"
	"github.com/doeshing/persona-go/internal/pkg/logger"
	"github.com/doeshing/persona-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config          domain.Config
	ConfigProvider  ports.ConfigProvider
	ConfigLoader    *config.FileLoader
	Logger          *logger.ZapLogger
	Store           ports.KeyValueStore
	Sensitive       *security.Filter
	Personalities   *personality.YAMLStore
	ProviderFactory *ai.Factory
	Table           console.Table
	History         *console.History
	Dispatcher      *dispatch.Service
	DoctorService   *doctor.Service
	// Set by the CLI layer.
	Prompter  ports.ConfirmationPrompter
	Clipboard ports.Clipboard
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	logPath := filesystem.ExpandPath(cfg.Logging.File)
	if logPath == "" {
		logPath = filepath.Join(filesystem.AppDir(), "logs", "persona.log")
	}
	log, err := logger.New(cfg.Logging.Level, logPath, verbose)
	if err != nil {
		log = logger.NewNop()
	}

	store := storage.Open(cfg.History, log)

	filter, err := security.NewFilter(filesystem.ExpandPath(cfg.Privacy.RulesFile))
	if err != nil {
		log.Warn("privacy rules unreadable, using defaults", map[string]interface{}{"error": err.Error()})
		filter, err = security.NewFilter("")
		if err != nil {
			return nil, err
		}
	}

	personalities := personality.NewYAMLStore(personalitiesPath(cfg))
	factory := ai.NewFactory(ai.WithLogger(log))
	table := console.DefaultTable(cfg.Voices.Providers)

	history := console.NewHistory(cfg.History.Capacity,
		console.WithStore(store, domain.HistoryStorageKey),
		console.WithSensitiveMatcher(filter),
		console.WithLogger(log),
	)
	if err := history.Load(); err != nil {
		log.Warn("history load failed", map[string]interface{}{"error": err.Error()})
	}

	dispatcher, err := dispatch.New(cfg, table, dispatch.Dependencies{
		Personalities:   personalities,
		ProviderFactory: factory,
		Masker:          filter,
		Logger:          log,
		Saver:           debounce.New(domain.DefaultSettingsDebounce),
	})
	if err != nil {
		return nil, err
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          store,
		Sensitive:      filter,
		Personalities:  personalities,
	}

	return &Container{
		Config:          cfg,
		ConfigProvider:  cfgLoader,
		ConfigLoader:    cfgLoader,
		Logger:          log,
		Store:           store,
		Sensitive:       filter,
		Personalities:   personalities,
		ProviderFactory: factory,
		Table:           table,
		History:         history,
		Dispatcher:      dispatcher,
		DoctorService:   doctorService,
	}, nil
}

// WatchPersonalities reloads the personality file on external edits until ctx
// is done. It is a no-op when watching is disabled.
func (c *Container) WatchPersonalities(ctx context.Context, onReload func()) {
	if !c.Config.Personalities.Watch {
		return
	}
	w := personality.NewWatcher(c.Personalities.Path(), c.Personalities, domain.DefaultReloadDebounce, c.Logger, onReload)
	if err := w.Run(ctx); err != nil {
		c.Logger.Warn("personality watcher stopped", map[string]interface{}{"error": err.Error()})
	}
}

// Close flushes pending writes and releases the store.
func (c *Container) Close() error {
	if c.Dispatcher != nil {
		c.Dispatcher.Flush()
	}
	var err error
	if closer, ok := c.Store.(io.Closer); ok {
		err = closer.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return err
}

// ImagesDir is where imported personality images are kept.
func ImagesDir() string {
	return filepath.Join(filesystem.AppDir(), "images")
}

// ExportsDir is where console transcripts are written.
func ExportsDir() string {
	return filepath.Join(filesystem.AppDir(), "exports")
}

func personalitiesPath(cfg domain.Config) string {
	if path := filesystem.ExpandPath(cfg.Personalities.File); path != "" {
		return path
	}
	return filepath.Join(filesystem.AppDir(), "personalities.yaml")
}
