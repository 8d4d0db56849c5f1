// Package config loads Scriptorium configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// DataDir is the root of the TEI corpus tree, e.g. canonical-greekLit/data.
	DataDir string `yaml:"data_dir"`
	// Database is the SQLite database path.
	Database string `yaml:"database"`

	Log    LogConfig    `yaml:"log"`
	Ingest IngestConfig `yaml:"ingest"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// IngestConfig controls ingestion runs.
type IngestConfig struct {
	// BatchSize is the number of inserted texts between checkpoint commits.
	BatchSize int `yaml:"batch_size"`
	// Limit truncates the corpus to the first N files; 0 means no limit.
	Limit int `yaml:"limit"`
	// Languages restricts ingestion to the listed language codes; empty
	// means ingest everything.
	Languages []string `yaml:"languages"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		DataDir:  "data",
		Database: "scriptorium.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Ingest: IngestConfig{
			BatchSize: 50,
		},
	}
}

// Load reads a YAML config file, filling unset fields from defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Ingest.BatchSize <= 0 {
		cfg.Ingest.BatchSize = Default().Ingest.BatchSize
	}
	return cfg, nil
}

// LoadOrDefault loads the config file when path is non-empty, otherwise
// returns defaults.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
