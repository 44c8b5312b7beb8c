// Package file provides the embedded catalog backend: a single JSON
// document file on local disk.
//
// Records are persisted as a versioned JSON envelope:
//
//	{"version": 1, "records": [ ... ]}
//
// Every mutation loads the full file, mutates in memory, and atomically
// flushes the entire file via temp file + rename. This is the nature of a
// single-file document store; the catalog is small enough that rewriting
// it is cheaper than maintaining an on-disk index.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bagman/internal/catalog"
)

const currentVersion = 1

// envelope is the versioned on-disk format.
type envelope struct {
	Version int                `json:"version"`
	Records []catalog.Document `json:"records"`
}

// Store is the embedded file-backed catalog store.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ catalog.Store = (*Store)(nil)

// NewStore creates a file-backed catalog store persisting to path.
// The file is not touched until the first operation; use Provision to
// create an empty catalog.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// load reads and parses the catalog file.
func (s *Store) load() ([]catalog.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog file %s: %w", s.path, catalog.ErrNotProvisioned)
		}
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if env.Version > currentVersion {
		return nil, fmt.Errorf("catalog file version %d is newer than supported version %d", env.Version, currentVersion)
	}
	return env.Records, nil
}

// flush atomically writes the records to disk.
func (s *Store) flush(records []catalog.Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	env := envelope{Version: currentVersion, Records: records}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

// GetAll returns every record in stored order.
func (s *Store) GetAll(ctx context.Context) ([]catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Upsert replaces all records matching key=value, or appends doc if none match.
func (s *Store) Upsert(ctx context.Context, doc catalog.Document, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	matched := false
	for i, r := range records {
		if catalog.Matches(r, key, value) {
			records[i] = doc
			matched = true
		}
	}
	if !matched {
		records = append(records, doc)
	}
	return s.flush(records)
}

// Insert appends a record unconditionally.
func (s *Store) Insert(ctx context.Context, doc catalog.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	return s.flush(append(records, doc))
}

// Contains reports whether any record matches key=value.
func (s *Store) Contains(ctx context.Context, key string, value any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if catalog.Matches(r, key, value) {
			return true, nil
		}
	}
	return false, nil
}

// Get returns the first record matching key=value, or (nil, nil).
func (s *Store) Get(ctx context.Context, key string, value any) (catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if catalog.Matches(r, key, value) {
			return r, nil
		}
	}
	return nil, nil
}

// Search returns all records matching key=value.
func (s *Store) Search(ctx context.Context, key string, value any) ([]catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []catalog.Document
	for _, r := range records {
		if catalog.Matches(r, key, value) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Remove deletes all records matching key=value.
func (s *Store) Remove(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !catalog.Matches(r, key, value) {
			kept = append(kept, r)
		}
	}
	return s.flush(kept)
}

// Truncate deletes all records, leaving the file in place.
func (s *Store) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(); err != nil {
		return err
	}
	return s.flush(nil)
}

// InsertMultiple appends records in order.
func (s *Store) InsertMultiple(ctx context.Context, docs []catalog.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	return s.flush(append(records, docs...))
}

// Provision creates an empty catalog file if none exists.
func (s *Store) Provision(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat catalog file: %w", err)
	}
	return s.flush(nil)
}

// IsConnected verifies the catalog file exists and parses.
func (s *Store) IsConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.load()
	return err
}

// Close is a no-op; the store holds no open handles between operations.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
