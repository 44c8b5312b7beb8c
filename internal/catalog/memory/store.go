// Package memory provides an in-memory catalog backend.
// Intended for tests; records are not persisted across restarts.
//
// Documents are copied on the way in and out, so callers never hold live
// references into the store. That matches the persisted backends, where
// every operation round-trips through an encoding.
package memory

import (
	"context"
	"sync"

	"bagman/internal/catalog"
)

// Store is an in-memory catalog store.
type Store struct {
	mu      sync.RWMutex
	records []catalog.Document
}

var _ catalog.Store = (*Store)(nil)

// NewStore creates an empty in-memory catalog store.
func NewStore() *Store {
	return &Store{}
}

// GetAll returns a copy of every record in stored order.
func (s *Store) GetAll(ctx context.Context) ([]catalog.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Document, len(s.records))
	for i, r := range s.records {
		out[i] = cloneDocument(r)
	}
	return out, nil
}

// Upsert replaces all records matching key=value, or appends doc if none match.
func (s *Store) Upsert(ctx context.Context, doc catalog.Document, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := false
	for i, r := range s.records {
		if catalog.Matches(r, key, value) {
			s.records[i] = cloneDocument(doc)
			matched = true
		}
	}
	if !matched {
		s.records = append(s.records, cloneDocument(doc))
	}
	return nil
}

// Insert appends a record unconditionally.
func (s *Store) Insert(ctx context.Context, doc catalog.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, cloneDocument(doc))
	return nil
}

// Contains reports whether any record matches key=value.
func (s *Store) Contains(ctx context.Context, key string, value any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if catalog.Matches(r, key, value) {
			return true, nil
		}
	}
	return false, nil
}

// Get returns a copy of the first record matching key=value, or (nil, nil).
func (s *Store) Get(ctx context.Context, key string, value any) (catalog.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if catalog.Matches(r, key, value) {
			return cloneDocument(r), nil
		}
	}
	return nil, nil
}

// Search returns copies of all records matching key=value.
func (s *Store) Search(ctx context.Context, key string, value any) ([]catalog.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Document
	for _, r := range s.records {
		if catalog.Matches(r, key, value) {
			out = append(out, cloneDocument(r))
		}
	}
	return out, nil
}

// Remove deletes all records matching key=value.
func (s *Store) Remove(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if !catalog.Matches(r, key, value) {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

// Truncate deletes all records.
func (s *Store) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// InsertMultiple appends records in order.
func (s *Store) InsertMultiple(ctx context.Context, docs []catalog.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.records = append(s.records, cloneDocument(doc))
	}
	return nil
}

// Provision is a no-op.
func (s *Store) Provision(ctx context.Context) error { return nil }

// IsConnected always succeeds.
func (s *Store) IsConnected(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error { return nil }

func cloneDocument(d catalog.Document) catalog.Document {
	out := make(catalog.Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
