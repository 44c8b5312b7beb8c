package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Low-level backend client errors are wrapped into these at
// the store boundary; callers react with errors.Is.
var (
	// ErrNotFound is returned when a recording is missing from the catalog
	// (or from storage, at the orchestrator boundary).
	ErrNotFound = errors.New("not found")

	// ErrUnreachable is returned when a backend cannot be reached.
	ErrUnreachable = errors.New("backend unreachable")

	// ErrUnauthorized is returned when backend credentials are rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotProvisioned is returned when the backend's file, collection,
	// or index does not exist (or lacks required exact-match mappings).
	ErrNotProvisioned = errors.New("not provisioned")

	// ErrConflict is returned when an add targets an existing record and
	// the caller did not request an override.
	ErrConflict = errors.New("record already exists")
)

// IntegrityError reports catalog records missing expected schema fields.
// It is a warning: the catalog remains usable, but consumers relying on the
// configured columns should be told which ones are absent.
type IntegrityError struct {
	MissingColumns []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog records are missing columns: %s",
		strings.Join(e.MissingColumns, ", "))
}
