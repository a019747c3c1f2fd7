// Package app wires the history engine to its supporting services: config
// loading and live reload, logging, and durable state snapshotting. An
// editor process embeds an App and talks to the engine through it.
package app

import (
	"fmt"
	"os"
	"sync"

	"github.com/dshills/flowstorm/internal/config"
	"github.com/dshills/flowstorm/internal/graph"
	"github.com/dshills/flowstorm/internal/history"
	"github.com/dshills/flowstorm/internal/storage"
)

// Options configures an App.
type Options struct {
	// ConfigPath is the TOML config file. Empty skips file loading and
	// disables live reload; defaults and env overrides still apply.
	ConfigPath string
	// Logger overrides the logger built from config. Used in tests.
	Logger *Logger
	// WatchConfig enables live reload of the config file.
	WatchConfig bool
}

// App owns a history store plus the services around it.
type App struct {
	cfgMu  sync.Mutex
	cfg    config.Config
	logger *Logger
	store  *history.Store

	db      *storage.DB
	watcher *config.Watcher
	logFile *os.File

	shutdownOnce sync.Once
}

// New loads configuration, builds the engine, and rehydrates persisted
// history when storage is enabled.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:   cfg,
		store: history.NewStore(cfg.History.Capacity),
	}

	if opts.Logger != nil {
		a.logger = opts.Logger
	} else if err := a.buildLogger(); err != nil {
		return nil, err
	}

	if cfg.Storage.Enabled {
		db, err := storage.Open(storage.Options{Path: cfg.Storage.Path})
		if err != nil {
			return nil, fmt.Errorf("opening history storage: %w", err)
		}
		a.db = db
		a.rehydrate()
	}

	if opts.WatchConfig && opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, a.applyConfig, func(err error) {
			a.logger.WithComponent("config").Warn("reload failed: %v", err)
		})
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("watching config: %w", err)
		}
		a.watcher = w
	}

	return a, nil
}

func (a *App) buildLogger() error {
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(a.cfg.Log.Level)

	if a.cfg.Log.File != "" {
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		logCfg.Output = f
	}

	a.logger = NewLogger(logCfg)
	return nil
}

// rehydrate restores persisted history. Snapshots are convenience, not
// authority: any failure logs a warning and leaves the engine empty.
func (a *App) rehydrate() {
	state, ok, err := a.db.LoadState()
	if err != nil {
		a.logger.WithComponent("storage").Warn("discarding unreadable history snapshot: %v", err)
		return
	}
	if !ok {
		a.logger.WithComponent("storage").Debug("no history snapshot to restore")
		return
	}

	// The configured capacity wins over whatever the snapshot recorded.
	state.Capacity = a.cfg.History.Capacity
	a.store.RestoreState(state)
	a.logger.WithComponent("storage").Info("restored history for %d document/actor pairs", len(state.StacksByKey))
}

// applyConfig reacts to a config file change. Only capacity and log level
// take effect live; storage changes need a restart.
func (a *App) applyConfig(cfg config.Config) {
	if cfg.History.Capacity != a.store.Capacity() {
		a.logger.WithComponent("config").Info("history capacity changed to %d", cfg.History.Capacity)
		a.store.SetCapacity(cfg.History.Capacity)
	}
	a.logger.SetLevel(ParseLogLevel(cfg.Log.Level))

	a.cfgMu.Lock()
	a.cfg.History = cfg.History
	a.cfg.Log.Level = cfg.Log.Level
	a.cfgMu.Unlock()
}

// Store exposes the history engine.
func (a *App) Store() *history.Store {
	return a.store
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *Logger {
	return a.logger
}

// Record pushes an entry and snapshots the engine state.
func (a *App) Record(documentID, actorID string, entry *history.Entry) {
	a.store.Push(documentID, actorID, entry)
	a.snapshot()
}

// Undo pops an undo entry for the pair. The caller applies entry.Inverse to
// the live graph.
func (a *App) Undo(documentID, actorID string) (*history.Entry, bool) {
	entry, ok := a.store.Undo(documentID, actorID)
	if ok {
		a.snapshot()
	}
	return entry, ok
}

// Redo pops a redo entry for the pair. The caller applies entry.Operation to
// the live graph.
func (a *App) Redo(documentID, actorID string) (*history.Entry, bool) {
	entry, ok := a.store.Redo(documentID, actorID)
	if ok {
		a.snapshot()
	}
	return entry, ok
}

// Prune drops history entries invalidated by external document changes and
// snapshots the result.
func (a *App) Prune(documentID, actorID string, snap *graph.Snapshot) {
	a.store.PruneInvalidEntries(documentID, actorID, snap)
	a.snapshot()
}

// SetCapacity changes the shared stack capacity and snapshots the truncated
// state.
func (a *App) SetCapacity(capacity int) {
	a.store.SetCapacity(capacity)
	a.snapshot()
}

// snapshot persists the engine state opportunistically. Failures are logged
// and otherwise ignored; the in-memory engine remains authoritative.
func (a *App) snapshot() {
	if a.db == nil {
		return
	}
	if err := a.db.SaveState(a.store.ExportState()); err != nil {
		a.logger.WithComponent("storage").Warn("history snapshot failed: %v", err)
	}
}

// Shutdown snapshots a final time and releases resources. Safe to call
// multiple times.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.snapshot()
		a.closeResources()
	})
}

func (a *App) closeResources() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.WithComponent("config").Warn("closing watcher: %v", err)
		}
		a.watcher = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithComponent("storage").Warn("closing database: %v", err)
		}
		a.db = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
