// Package config loads the gridd configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration for a gridd process.
type Config struct {
	// SheetID scopes every store collection and the feed endpoint.
	SheetID string `yaml:"sheet_id"`

	// DatabasePath is the shared SQLite store.
	DatabasePath string `yaml:"database_path"`

	// LocalPath is the BadgerDB directory for the local snapshot.
	LocalPath string `yaml:"local_path"`

	// Listen is the feed server address.
	Listen string `yaml:"listen"`

	// SuppressionWindowMS overrides the echo-suppression window.
	// Zero keeps the default.
	SuppressionWindowMS int `yaml:"suppression_window_ms"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SheetID:      "default",
		DatabasePath: "gridd.db",
		LocalPath:    "gridd-local",
		Listen:       ":8432",
	}
}

// Load reads and validates a configuration file. Missing fields fall
// back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that cannot work.
func (c Config) Validate() error {
	if c.SheetID == "" {
		return fmt.Errorf("sheet_id must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.SuppressionWindowMS < 0 {
		return fmt.Errorf("suppression_window_ms must not be negative")
	}
	return nil
}

// SuppressionWindow returns the configured window as a duration, or
// zero when unset (callers apply the default).
func (c Config) SuppressionWindow() time.Duration {
	return time.Duration(c.SuppressionWindowMS) * time.Millisecond
}
