package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bagman/internal/catalog"
	"bagman/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLogFilesSortedAndFiltered(t *testing.T) {
	root := New(t.TempDir(), "", logging.Discard())
	rec := root.RecordingPath("run_001")
	writeFile(t, filepath.Join(rec, "b.mcap"), "b")
	writeFile(t, filepath.Join(rec, "a.mcap"), "a")
	writeFile(t, filepath.Join(rec, "rec_metadata.yaml"), "name: run_001")

	files, err := root.LogFiles("run_001")
	if err != nil {
		t.Fatalf("LogFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 log files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.mcap" || filepath.Base(files[1]) != "b.mcap" {
		t.Errorf("files not sorted: %v", files)
	}
}

func TestLogFilesMissingRecording(t *testing.T) {
	root := New(t.TempDir(), "", logging.Discard())

	_, err := root.LogFiles("absent")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogFilesInRecursivePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.mcap"), "t")
	writeFile(t, filepath.Join(dir, "sub", "deep.mcap"), "d")

	files, err := LogFilesIn(dir, "**/*.mcap")
	if err != nil {
		t.Fatalf("LogFilesIn: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
}

func TestUploadDirectory(t *testing.T) {
	src := t.TempDir()
	recSrc := filepath.Join(src, "run_001")
	writeFile(t, filepath.Join(recSrc, "log.mcap"), "data")

	root := New(t.TempDir(), "", logging.Discard())
	name, err := root.Upload(recSrc, false, false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "run_001" {
		t.Errorf("name = %q, want run_001", name)
	}
	if !root.Exists("run_001") {
		t.Fatal("recording missing from storage after upload")
	}
	if _, err := os.Stat(recSrc); err != nil {
		t.Error("source removed without move flag")
	}
}

func TestUploadSingleFileBecomesDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "solo.mcap")
	writeFile(t, src, "data")

	root := New(t.TempDir(), "", logging.Discard())
	name, err := root.Upload(src, false, false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "solo" {
		t.Errorf("name = %q, want solo", name)
	}

	files, err := root.LogFiles("solo")
	if err != nil {
		t.Fatalf("LogFiles: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "solo.mcap" {
		t.Errorf("files = %v", files)
	}
}

func TestUploadConflict(t *testing.T) {
	src := t.TempDir()
	recSrc := filepath.Join(src, "run_001")
	writeFile(t, filepath.Join(recSrc, "log.mcap"), "old")

	root := New(t.TempDir(), "", logging.Discard())
	if _, err := root.Upload(recSrc, false, false); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	if _, err := root.Upload(recSrc, false, false); !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Override replaces the stored copy wholesale.
	writeFile(t, filepath.Join(recSrc, "extra.mcap"), "new")
	if _, err := root.Upload(recSrc, false, true); err != nil {
		t.Fatalf("override upload: %v", err)
	}
	files, err := root.LogFiles("run_001")
	if err != nil {
		t.Fatalf("LogFiles: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected replaced recording with 2 files, got %v", files)
	}
}

func TestUploadSingleFileConflict(t *testing.T) {
	root := New(t.TempDir(), "", logging.Discard())
	writeFile(t, filepath.Join(root.RecordingPath("run_001"), "old.mcap"), "old")

	// The bare file stores under "run_001" (extension dropped), so it
	// collides with the existing recording.
	src := filepath.Join(t.TempDir(), "run_001.mcap")
	writeFile(t, src, "new")

	if _, err := root.Upload(src, false, false); !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	files, err := root.LogFiles("run_001")
	if err != nil {
		t.Fatalf("LogFiles: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "old.mcap" {
		t.Fatalf("rejected upload modified storage: %v", files)
	}

	// Override replaces the whole recording with the single-file upload.
	if _, err := root.Upload(src, false, true); err != nil {
		t.Fatalf("override upload: %v", err)
	}
	files, err = root.LogFiles("run_001")
	if err != nil {
		t.Fatalf("LogFiles: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "run_001.mcap" {
		t.Errorf("files = %v, want [run_001.mcap]", files)
	}
}

func TestRecordingName(t *testing.T) {
	dir := t.TempDir()
	recDir := filepath.Join(dir, "run_001")
	writeFile(t, filepath.Join(recDir, "log.mcap"), "x")
	file := filepath.Join(dir, "run_002.mcap")
	writeFile(t, file, "y")

	if name, err := RecordingName(recDir); err != nil || name != "run_001" {
		t.Errorf("RecordingName(dir) = %q, %v", name, err)
	}
	if name, err := RecordingName(file); err != nil || name != "run_002" {
		t.Errorf("RecordingName(file) = %q, %v", name, err)
	}
	if _, err := RecordingName(filepath.Join(dir, "absent")); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadMoveRemovesSource(t *testing.T) {
	src := t.TempDir()
	recSrc := filepath.Join(src, "run_001")
	writeFile(t, filepath.Join(recSrc, "log.mcap"), "data")

	root := New(t.TempDir(), "", logging.Discard())
	if _, err := root.Upload(recSrc, true, false); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := os.Stat(recSrc); !os.IsNotExist(err) {
		t.Error("source still present after move")
	}
	if !root.Exists("run_001") {
		t.Error("recording missing from storage after move")
	}
}

func TestDelete(t *testing.T) {
	root := New(t.TempDir(), "", logging.Discard())
	writeFile(t, filepath.Join(root.RecordingPath("run_001"), "log.mcap"), "data")

	if err := root.Delete("run_001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if root.Exists("run_001") {
		t.Error("recording still exists after delete")
	}

	if err := root.Delete("run_001"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
