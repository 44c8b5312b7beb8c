package recording

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// The per-recording metadata file lives alongside the log files and
// round-trips through Reconcile: structural fields reflect the latest
// aggregation, user-editable fields survive verbatim.

// LoadMetadataFile reads a metadata YAML file.
// Returns (nil, nil) if the file does not exist.
func LoadMetadataFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse metadata file %s: %w", filepath.Base(path), err)
	}

	// Inline decoding routes unknown keys into Fields, including reserved
	// ones like a stray time_added. Those are catalog-owned, not user data.
	for k := range m.Fields {
		if structural(k) {
			delete(m.Fields, k)
		}
	}
	return &m, nil
}

// SaveMetadataFile writes the metadata as YAML, atomically via a temp file
// and rename so readers never observe a partial document.
func SaveMetadataFile(path string, m *Metadata) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write metadata temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace metadata file: %w", err)
	}
	return nil
}
