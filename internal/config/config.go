// Package config loads CIndex configuration from a YAML file with
// environment-variable overrides.
//
// Order: defaults -> YAML file -> env overrides -> validate.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for persisted shards.
const (
	StorageDisk   = "disk"
	StorageSQLite = "sqlite"
	StorageNone   = "none"
)

// Config holds the application configuration
type Config struct {
	// Workers is the background worker pool size. 0 means one per
	// hardware thread.
	Workers int `yaml:"workers"`

	// Storage selects the shard backend: disk, sqlite, or none.
	Storage string `yaml:"storage"`

	// ResourceDir and URISchemes are passed through to the indexing
	// action untouched.
	ResourceDir string   `yaml:"resource_dir"`
	URISchemes  []string `yaml:"uri_schemes"`

	Watcher WatcherConfig `yaml:"watcher"`
}

// WatcherConfig controls the file watcher.
type WatcherConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Storage: StorageDisk,
		Watcher: WatcherConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads path (if non-empty and present), applies CINDEX_* environment
// overrides, and validates. A missing file is not an error; the defaults
// stand.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults stand.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies CINDEX_* environment variables on top of the
// loaded values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CINDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("CINDEX_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("CINDEX_RESOURCE_DIR"); v != "" {
		c.ResourceDir = v
	}
	if v := os.Getenv("CINDEX_URI_SCHEMES"); v != "" {
		c.URISchemes = strings.Split(v, ",")
	}
	if v := os.Getenv("CINDEX_WATCHER"); v != "" {
		c.Watcher.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks the configuration for consistency, normalizing zero
// values to their defaults.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	switch c.Storage {
	case StorageDisk, StorageSQLite, StorageNone:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.Watcher.Debounce <= 0 {
		c.Watcher.Debounce = 500 * time.Millisecond
	}
	return nil
}
