package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"bagman/internal/catalog"
	"bagman/internal/recording"
	"bagman/internal/storage"
)

// Remove deletes the recording's catalog record. Storage is untouched:
// the recording transitions from catalogued back to storage-only.
func (o *Orchestrator) Remove(ctx context.Context, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ok, err := o.store.Contains(ctx, catalog.KeyName, name)
	if err != nil {
		return fmt.Errorf("look up catalog record: %w", err)
	}
	if !ok {
		return fmt.Errorf("recording %q not in catalog: %w", name, catalog.ErrNotFound)
	}

	if err := o.store.Remove(ctx, catalog.KeyName, name); err != nil {
		return fmt.Errorf("remove catalog record: %w", err)
	}
	o.logger.Info("recording removed from catalog", "recording", name)
	return nil
}

// Contains reports whether the recording has a catalog record.
func (o *Orchestrator) Contains(ctx context.Context, name string) (bool, error) {
	return o.store.Contains(ctx, catalog.KeyName, name)
}

// Get returns the recording's catalog record, or (nil, nil) if absent.
func (o *Orchestrator) Get(ctx context.Context, name string) (catalog.Document, error) {
	return o.store.Get(ctx, catalog.KeyName, name)
}

// GetAll returns every catalog record in stored (sorted) order.
func (o *Orchestrator) GetAll(ctx context.Context) ([]catalog.Document, error) {
	return o.store.GetAll(ctx)
}

// CheckIntegrity verifies that the configured schema columns appear across
// the catalog's records. A missing column is a warning, not a failure: the
// returned IntegrityError lists the absent columns and err covers only the
// scan itself. An empty catalog has nothing to validate.
func (o *Orchestrator) CheckIntegrity(ctx context.Context) (*catalog.IntegrityError, error) {
	docs, err := o.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if len(docs) == 0 || len(o.opts.Columns) == 0 {
		return nil, nil
	}

	present := make(map[string]bool)
	for _, doc := range docs {
		for k := range doc {
			present[k] = true
		}
	}

	var missing []string
	for _, col := range o.opts.Columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	o.logger.Warn("catalog integrity check failed", "missing_columns", missing)
	return &catalog.IntegrityError{MissingColumns: missing}, nil
}

// GenerateMetadata aggregates the recording at recordingPath, reconciles
// the result against its metadata file, and (with storeFile) persists the
// reconciled document back. The catalog is not involved; this is the
// standalone metadata generation entry point.
//
// Returns (nil, nil) when the recording has no log files.
func (o *Orchestrator) GenerateMetadata(ctx context.Context, recordingPath string, storeFile bool) (*recording.Metadata, error) {
	// The path may point outside the storage root (metadata for a local,
	// not-yet-uploaded recording), so glob it directly.
	files, err := storage.LogFilesIn(recordingPath, o.root.Pattern())
	if err != nil {
		return nil, err
	}

	computed, err := o.aggregator.Aggregate(ctx, recordingPath, files)
	if err != nil {
		return nil, err
	}
	if computed == nil {
		return nil, nil
	}

	metadataPath := filepath.Join(recordingPath, o.opts.MetadataFile)
	persisted, err := recording.LoadMetadataFile(metadataPath)
	if err != nil {
		return nil, err
	}
	meta := recording.Reconcile(computed, persisted)

	if storeFile {
		if err := recording.SaveMetadataFile(metadataPath, meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}
