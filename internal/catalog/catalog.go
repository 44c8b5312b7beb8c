// Package catalog defines the backend-agnostic catalog store contract.
//
// A catalog is the searchable collection of recording records, independent
// of where it is persisted. Three interchangeable backends implement the
// contract: an embedded JSON document store (catalog/file), a networked
// document database (catalog/mongo), and a search index (catalog/elastic);
// catalog/memory backs tests. Backend selection is static: the wiring layer
// switches on the configured backend type and constructs one concrete
// store. There is no dynamic dispatch beyond the interface itself.
//
// Semantics required of every backend:
//   - All lookups are exact matches on a single field. A backend whose
//     native text matching is tokenized must query a non-analyzed variant
//     of the field or fail loudly; fuzzy matches are a correctness bug.
//   - GetAll returns every record with no implicit cap. Backends with
//     result-window limits paginate internally.
//   - Operations are synchronous and respect ctx deadlines; callers bound
//     full-catalog scans by passing a ctx with a timeout.
//
// The catalog does not guarantee concurrent multi-writer safety. Writers
// serialize above this contract (see orchestrator).
package catalog

import (
	"context"
)

// Document is a schema-agnostic catalog record, JSON-shaped: nested
// documents are map[string]any, lists are []any. The recording package
// owns conversion to and from the typed model.
type Document = map[string]any

// KeyName is the field used as the catalog's natural key.
const KeyName = "name"

// Store is the catalog store contract. All backends implement identical
// query, upsert, and ordering semantics.
type Store interface {
	// GetAll returns every record in stored order.
	GetAll(ctx context.Context) ([]Document, error)

	// Upsert replaces the record(s) whose field key equals value, or
	// inserts the document if no match exists.
	Upsert(ctx context.Context, doc Document, key string, value any) error

	// Insert adds a record unconditionally, with no uniqueness check.
	Insert(ctx context.Context, doc Document) error

	// Contains reports whether a record with field key equal to value exists.
	Contains(ctx context.Context, key string, value any) (bool, error)

	// Get returns the first record whose field key equals value, or
	// (nil, nil) if there is no match.
	Get(ctx context.Context, key string, value any) (Document, error)

	// Search returns all records whose field key equals value.
	Search(ctx context.Context, key string, value any) ([]Document, error)

	// Remove deletes all records whose field key equals value.
	Remove(ctx context.Context, key string, value any) error

	// Truncate deletes all records, leaving the store structure intact.
	Truncate(ctx context.Context) error

	// InsertMultiple bulk-inserts records, preserving their order where
	// the backend allows it.
	InsertMultiple(ctx context.Context, docs []Document) error

	// Provision creates whatever the backend needs to operate (file,
	// collection, index with exact-match mappings). Idempotent.
	Provision(ctx context.Context) error

	// IsConnected verifies the store is usable. It returns nil on success
	// or an error wrapping ErrUnreachable, ErrUnauthorized, or
	// ErrNotProvisioned so callers can fail fast or auto-provision.
	IsConnected(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Backend is one of "file", "memory", "mongodb", "elasticsearch".
	Backend string `yaml:"type"`
	// URI is a local path (file) or connection string (networked backends).
	URI string `yaml:"uri"`
	// Name is the database/collection/index name. Unused by the file and
	// memory backends.
	Name string `yaml:"name"`
}
