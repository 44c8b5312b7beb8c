// Package config loads the application configuration.
//
// Config is an explicit, immutable value: it is loaded once in main and
// passed into constructors. There is no process-wide mutable configuration
// state, and components never re-read the file at runtime.
package config

import (
	"fmt"
	"os"

	"bagman/internal/catalog"
	"bagman/internal/storage"

	"gopkg.in/yaml.v3"
)

// Config describes the storage root, metadata conventions, and catalog
// backend selection.
type Config struct {
	// StorageRoot is the directory holding recording directories.
	StorageRoot string `yaml:"recordings_storage"`

	// MetadataFile is the per-recording metadata file name, stored inside
	// each recording directory.
	MetadataFile string `yaml:"metadata_file"`

	// LogPattern is the glob matching a recording's log files.
	LogPattern string `yaml:"log_pattern"`

	// Database selects and parameterizes the catalog backend.
	Database catalog.Config `yaml:"database"`

	// SortKey is the field by which the catalog is kept ordered after
	// every ingest.
	SortKey string `yaml:"sort_key"`

	// Columns lists the fields every catalog record is expected to carry;
	// the integrity check reports records missing any of them.
	Columns []string `yaml:"database_columns"`
}

// Default returns the configuration defaults applied under Load.
func Default() Config {
	return Config{
		MetadataFile: "rec_metadata.yaml",
		LogPattern:   storage.DefaultLogPattern,
		SortKey:      "start_time",
		Database:     catalog.Config{Backend: "file"},
		Columns: []string{
			"name", "path", "start_time", "end_time", "duration",
			"size", "time_modified", "time_added", "files", "topics",
		},
	}
}

// Load reads the YAML configuration at path and applies defaults for
// omitted fields.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.StorageRoot == "" {
		return Config{}, fmt.Errorf("config %s: recordings_storage is required", path)
	}
	return cfg, nil
}
