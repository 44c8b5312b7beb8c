// Package storage manages the recordings storage root: a directory whose
// immediate children are recording directories, each holding one or more
// log files. The storage root is a collaborator of the catalog, never part
// of it: deleting from storage does not touch catalog records and vice
// versa.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"bagman/internal/catalog"
	"bagman/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultLogPattern matches the MCAP container files of a recording.
const DefaultLogPattern = "*.mcap"

// Root is a recordings storage root.
type Root struct {
	dir     string
	pattern string
	logger  *slog.Logger
}

// New creates a storage root over dir. pattern is the doublestar glob used
// to discover log files inside a recording directory; empty means
// DefaultLogPattern.
func New(dir, pattern string, logger *slog.Logger) *Root {
	if pattern == "" {
		pattern = DefaultLogPattern
	}
	logger = logging.Default(logger)
	return &Root{
		dir:     dir,
		pattern: pattern,
		logger:  logger.With("component", "storage"),
	}
}

// Dir returns the storage root directory.
func (r *Root) Dir() string { return r.dir }

// RecordingPath returns the canonical storage path for a recording name.
func (r *Root) RecordingPath(name string) string {
	return filepath.Join(r.dir, name)
}

// Exists reports whether the recording exists in storage.
func (r *Root) Exists(name string) bool {
	_, err := os.Stat(r.RecordingPath(name))
	return err == nil
}

// Pattern returns the log file glob in use.
func (r *Root) Pattern() string { return r.pattern }

// LogFiles returns the absolute paths of the recording's log files, sorted
// lexicographically.
func (r *Root) LogFiles(name string) ([]string, error) {
	return LogFilesIn(r.RecordingPath(name), r.pattern)
}

// LogFilesIn globs dir for log files matching pattern, sorted
// lexicographically. dir need not be under a storage root.
func LogFilesIn(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultLogPattern
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("recording directory %q: %w", dir, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("stat recording: %w", err)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob log files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// RecordingName returns the name a local recording would be stored under:
// the directory base name, or the file base name without its extension.
func RecordingName(src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("local recording %q: %w", src, catalog.ErrNotFound)
		}
		return "", fmt.Errorf("stat local recording: %w", err)
	}
	name := filepath.Base(filepath.Clean(src))
	if !info.IsDir() {
		// A bare log file becomes a single-file recording directory.
		name = trimExt(name)
	}
	return name, nil
}

// Upload copies a local recording (a directory of log files, or a single
// file) into the storage root and returns the recording name. With move
// set, the source is removed after a successful copy. An existing
// recording of the same name is only replaced when override is set.
func (r *Root) Upload(src string, move, override bool) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("local recording %q: %w", src, catalog.ErrNotFound)
		}
		return "", fmt.Errorf("stat local recording: %w", err)
	}

	// The conflict check must see the final storage name, which for a bare
	// file drops the extension.
	name := filepath.Base(filepath.Clean(src))
	if !info.IsDir() {
		name = trimExt(name)
	}
	dst := r.RecordingPath(name)

	if _, err := os.Stat(dst); err == nil {
		if !override {
			return "", fmt.Errorf("recording %q in storage: %w", name, catalog.ErrConflict)
		}
		if err := os.RemoveAll(dst); err != nil {
			return "", fmt.Errorf("replace existing recording: %w", err)
		}
	}

	if info.IsDir() {
		err = copyTree(src, dst)
	} else {
		if mkErr := os.MkdirAll(dst, 0755); mkErr != nil {
			return "", fmt.Errorf("create recording directory: %w", mkErr)
		}
		err = copyFile(src, filepath.Join(dst, filepath.Base(src)))
	}
	if err != nil {
		return "", err
	}

	if move {
		if err := os.RemoveAll(src); err != nil {
			return "", fmt.Errorf("remove source after move: %w", err)
		}
	}

	r.logger.Info("uploaded recording", "name", name, "move", move)
	return name, nil
}

// Delete removes the recording from storage. The catalog is untouched.
func (r *Root) Delete(name string) error {
	dir := r.RecordingPath(name)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("recording %q: %w", name, catalog.ErrNotFound)
		}
		return fmt.Errorf("stat recording: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	r.logger.Info("deleted recording from storage", "name", name)
	return nil
}

func trimExt(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		return name[:len(name)-len(ext)]
	}
	return name
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
