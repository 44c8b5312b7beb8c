package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "recordings_storage: /data/recordings\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageRoot != "/data/recordings" {
		t.Errorf("storage root = %q", cfg.StorageRoot)
	}
	if cfg.MetadataFile != "rec_metadata.yaml" {
		t.Errorf("metadata file = %q", cfg.MetadataFile)
	}
	if cfg.SortKey != "start_time" {
		t.Errorf("sort key = %q", cfg.SortKey)
	}
	if cfg.Database.Backend != "file" {
		t.Errorf("backend = %q", cfg.Database.Backend)
	}
	if len(cfg.Columns) == 0 {
		t.Error("default columns missing")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
recordings_storage: /data/recordings
metadata_file: meta.yaml
log_pattern: "**/*.bag"
sort_key: name
database:
  type: mongodb
  uri: mongodb://localhost:27017
  name: fleet
database_columns: [name, path]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetadataFile != "meta.yaml" || cfg.LogPattern != "**/*.bag" || cfg.SortKey != "name" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Database.Backend != "mongodb" || cfg.Database.URI != "mongodb://localhost:27017" || cfg.Database.Name != "fleet" {
		t.Errorf("database config = %+v", cfg.Database)
	}
	if len(cfg.Columns) != 2 {
		t.Errorf("columns = %v", cfg.Columns)
	}
}

func TestLoadRequiresStorageRoot(t *testing.T) {
	path := writeConfig(t, "sort_key: name\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing recordings_storage")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
