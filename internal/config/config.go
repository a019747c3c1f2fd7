// Package config provides configuration loading for the flowstorm history
// engine.
//
// Configuration comes from three layers, later layers overriding earlier
// ones: built-in defaults, a TOML file, and FLOWSTORM_* environment
// variables. A missing config file is not an error; the defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/flowstorm/internal/history"
)

// Environment variable names.
const (
	EnvCapacity    = "FLOWSTORM_CAPACITY"
	EnvStoragePath = "FLOWSTORM_STORAGE_PATH"
	EnvLogLevel    = "FLOWSTORM_LOG_LEVEL"
)

// Config is the engine's full configuration.
type Config struct {
	History HistoryConfig `toml:"history"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// HistoryConfig configures the history store.
type HistoryConfig struct {
	// Capacity bounds every undo and redo stack, oldest evicted first.
	Capacity int `toml:"capacity"`
}

// StorageConfig configures durable snapshotting.
type StorageConfig struct {
	// Enabled turns snapshot persistence on.
	Enabled bool `toml:"enabled"`
	// Path is the Badger database directory. Empty means in-memory.
	Path string `toml:"path"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File is the log destination; empty logs to stderr.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{Capacity: history.DefaultCapacity},
		Storage: StorageConfig{},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from the given TOML file, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// File doesn't exist, not an error
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides config values from FLOWSTORM_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Capacity = n
		}
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
		cfg.Storage.Enabled = true
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be at least 1, got %d", c.History.Capacity)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}
