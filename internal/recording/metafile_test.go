package recording

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMetadataFileNotExist(t *testing.T) {
	m, err := LoadMetadataFile(filepath.Join(t.TempDir(), "rec_metadata.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil metadata, got %+v", m)
	}
}

func TestMetadataFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec_metadata.yaml")

	original := &Metadata{
		Name:      "run_007",
		Path:      "/data/run_007",
		StartTime: 12.5,
		EndTime:   22.5,
		Duration:  10,
		Size:      512,
		Files: []FileInfo{
			{Path: "log.mcap", StartTime: 12.5, EndTime: 22.5, Duration: 10, MD5Sum: "d41d8cd9", Size: 512},
		},
		Topics: []TopicInfo{
			{Name: "/imu", Type: "sensor_msgs/Imu", Count: 1000, StartTime: 12.5, EndTime: 22.5, Duration: 10, Frequency: 100},
		},
		Fields: map[string]any{"vehicle": "rover-2"},
	}

	if err := SaveMetadataFile(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadMetadataFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected metadata, got nil")
	}

	if loaded.Name != original.Name || loaded.StartTime != original.StartTime {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Files) != 1 || loaded.Files[0] != original.Files[0] {
		t.Errorf("files = %+v", loaded.Files)
	}
	if len(loaded.Topics) != 1 || loaded.Topics[0] != original.Topics[0] {
		t.Errorf("topics = %+v", loaded.Topics)
	}
	if loaded.Fields["vehicle"] != "rover-2" {
		t.Errorf("fields = %v", loaded.Fields)
	}
}

func TestLoadMetadataFileScrubsReservedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec_metadata.yaml")

	// A stray time_added in the file is catalog-owned, not user data.
	content := "name: rec\ntime_added: 123.0\ndescription: hand edited\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMetadataFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := m.Fields["time_added"]; ok {
		t.Error("time_added leaked into user fields")
	}
	if m.Fields["description"] != "hand edited" {
		t.Errorf("description = %v", m.Fields["description"])
	}
}

func TestSaveMetadataFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec_metadata.yaml")

	if err := SaveMetadataFile(path, &Metadata{Name: "first"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveMetadataFile(path, &Metadata{Name: "second"}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	m, err := LoadMetadataFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "second" {
		t.Errorf("name = %q, want second", m.Name)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
