// Package config handles goodtime.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a goodtime.toml run configuration.
type Config struct {
	Trace     TraceConfig     `toml:"trace"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
	Archive   ArchiveConfig   `toml:"archive"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Dir is the directory containing the goodtime.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// TraceConfig controls ambient tracing output.
type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Output  string `toml:"output"` // "-" means stderr
}

// SnapshotConfig controls heap snapshot capture.
type SnapshotConfig struct {
	Compress bool `toml:"compress"`
}

// ArchiveConfig configures the durable SQLite snapshot store.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// TelemetryConfig configures the DuckDB GC cycle log.
type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load parses a goodtime.toml file from the given directory, applying
// defaults for anything left unset.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "goodtime.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve path %s: %w", dir, err)
	}

	applyDefaults(&c)
	return &c, nil
}

// Default returns a Config with every field set to its default value.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

func applyDefaults(c *Config) {
	if c.Trace.Output == "" {
		c.Trace.Output = "-"
	}
	if c.Archive.Path == "" {
		c.Archive.Path = "goodtime-archive.db"
	}
	if c.Telemetry.Path == "" {
		c.Telemetry.Path = "goodtime-telemetry.duckdb"
	}
}

// FindAndLoad walks up from startDir to find a goodtime.toml file,
// then loads and returns the config. Returns defaults with no error if
// no config file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "goodtime.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
