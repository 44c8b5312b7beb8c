// Package orchestrator implements the catalog ingest workflow. It is the
// only component that writes to the catalog store; read-only consumers go
// through its accessors (or the store contract directly) and never bypass
// it for writes.
//
// Concurrency model:
//   - A single mutex serializes Ingest and Remove, so concurrent writers
//     queue rather than interleave.
//   - The resort step (truncate + bulk re-insert) is not atomic with
//     respect to concurrent readers: a GetAll issued mid-resort observes
//     an empty or partial catalog. Cataloging is a manually triggered
//     batch operation, so this window is documented rather than locked
//     against readers.
//   - There is no retry policy and no cancellation beyond ctx propagation
//     into backend calls; an in-flight ingest runs to completion or
//     returns the first error.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"bagman/internal/catalog"
	"bagman/internal/logging"
	"bagman/internal/recording"
	"bagman/internal/storage"

	"github.com/google/uuid"
)

// Mode selects the ingest precondition.
type Mode string

const (
	// ModeAdd ingests a recording that exists in storage. It fails with
	// ErrNotFound when the recording directory is missing, and with
	// ErrConflict when a catalog record exists and Override is unset.
	ModeAdd Mode = "add"

	// ModeUpdate re-ingests a recording that is already catalogued. It
	// fails with ErrNotFound when no catalog record exists.
	ModeUpdate Mode = "update"
)

// Options carries the catalog conventions the orchestrator applies.
type Options struct {
	// MetadataFile is the per-recording metadata file name.
	MetadataFile string
	// SortKey is the field the catalog is kept ordered by.
	SortKey string
	// Columns are the fields the integrity check expects on records.
	Columns []string
}

// IngestRequest describes one add/update operation. The core never prompts:
// every decision a caller might be asked for interactively arrives here as
// a flag.
type IngestRequest struct {
	// Name is the recording name (directory base name in storage).
	Name string
	// Mode selects the add/update precondition.
	Mode Mode
	// UseExistingMetadataFile loads the recording's metadata file verbatim
	// instead of aggregating, when the file is present.
	UseExistingMetadataFile bool
	// StoreMetadataFile persists freshly generated metadata back to the
	// recording's metadata file.
	StoreMetadataFile bool
	// Override permits ModeAdd to replace an existing catalog record.
	Override bool
}

// Orchestrator coordinates aggregation, reconciliation, and catalog writes.
type Orchestrator struct {
	mu sync.Mutex

	store      catalog.Store
	root       *storage.Root
	aggregator *recording.Aggregator
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Orchestrator writing to store, reading recordings from
// root, and aggregating with aggregator.
func New(store catalog.Store, root *storage.Root, aggregator *recording.Aggregator, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MetadataFile == "" {
		opts.MetadataFile = "rec_metadata.yaml"
	}
	if opts.SortKey == "" {
		opts.SortKey = "start_time"
	}
	logger = logging.Default(logger)
	return &Orchestrator{
		store:      store,
		root:       root,
		aggregator: aggregator,
		opts:       opts,
		logger:     logger.With("component", "orchestrator"),
		now:        time.Now,
	}
}

// Ingest adds or updates one recording's catalog record.
//
// Returns the upserted record, or (nil, nil) when the recording has no log
// files (an empty recording has no aggregated metadata; not creating a
// record is the defined no-op, not an error).
//
// On success the catalog is left sorted ascending by the configured sort
// key. If the upsert succeeds but the resort does not, the error says so:
// catalog order is transiently violated but no data is lost.
func (o *Orchestrator) Ingest(ctx context.Context, req IngestRequest) (catalog.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch req.Mode {
	case ModeAdd, ModeUpdate:
	default:
		return nil, fmt.Errorf("unknown ingest mode %q", req.Mode)
	}

	logger := o.logger.With("op", uuid.Must(uuid.NewV7()).String(), "recording", req.Name, "mode", string(req.Mode))

	recordingPath := o.root.RecordingPath(req.Name)
	if req.Mode == ModeAdd && !o.root.Exists(req.Name) {
		return nil, fmt.Errorf("recording %q not in storage: %w", req.Name, catalog.ErrNotFound)
	}

	existing, err := o.store.Get(ctx, catalog.KeyName, req.Name)
	if err != nil {
		return nil, fmt.Errorf("look up catalog record: %w", err)
	}
	if req.Mode == ModeUpdate && existing == nil {
		return nil, fmt.Errorf("recording %q not in catalog: %w", req.Name, catalog.ErrNotFound)
	}
	if req.Mode == ModeAdd && existing != nil && !req.Override {
		return nil, fmt.Errorf("recording %q: %w", req.Name, catalog.ErrConflict)
	}

	meta, err := o.sourceMetadata(ctx, req, recordingPath, logger)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		logger.Warn("recording has no log files, nothing catalogued")
		return nil, nil
	}

	// Self-healing against moved storage roots: the record's path is
	// always the canonical storage path, whatever the metadata file says.
	if meta.Path != recordingPath || meta.Name == "" {
		meta.Path = recordingPath
		if meta.Name == "" {
			meta.Name = req.Name
		}
		if req.StoreMetadataFile {
			if err := recording.SaveMetadataFile(filepath.Join(recordingPath, o.opts.MetadataFile), meta); err != nil {
				return nil, err
			}
		}
	}

	rec := recording.Record{
		Metadata:  *meta,
		TimeAdded: float64(o.now().UnixNano()) / 1e9,
	}
	// time_added is append-only: the first insertion's stamp survives
	// every later re-ingest of the same name.
	if existing != nil {
		if prev, ok := toFloat(existing["time_added"]); ok {
			rec.TimeAdded = prev
		}
	}

	doc := rec.Document()
	if err := o.store.Upsert(ctx, doc, catalog.KeyName, rec.Name); err != nil {
		return nil, fmt.Errorf("upsert catalog record: %w", err)
	}

	if err := o.resort(ctx); err != nil {
		return nil, fmt.Errorf("record %q upserted but catalog resort did not run: %w", rec.Name, err)
	}

	logger.Info("recording catalogued",
		"files", len(meta.Files), "topics", len(meta.Topics), "bytes", meta.Size)
	return doc, nil
}

// sourceMetadata yields the recording metadata to catalogue: the existing
// metadata file verbatim when requested and present, otherwise a fresh
// aggregation reconciled against the persisted file.
func (o *Orchestrator) sourceMetadata(ctx context.Context, req IngestRequest, recordingPath string, logger *slog.Logger) (*recording.Metadata, error) {
	metadataPath := filepath.Join(recordingPath, o.opts.MetadataFile)

	if req.UseExistingMetadataFile {
		meta, err := recording.LoadMetadataFile(metadataPath)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			logger.Debug("using existing metadata file", "file", o.opts.MetadataFile)
			return meta, nil
		}
		// No file to reuse; fall through to aggregation.
	}

	files, err := o.root.LogFiles(req.Name)
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

	persisted, err := recording.LoadMetadataFile(metadataPath)
	if err != nil {
		return nil, err
	}
	meta := recording.Reconcile(computed, persisted)

	if req.StoreMetadataFile {
		if err := recording.SaveMetadataFile(metadataPath, meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// resort rewrites the whole catalog in sort-key order. O(N) per ingest: no
// backend offers positional insert through the store contract, so keeping
// the sort invariant means truncate + ordered bulk insert. Do not replace
// this with a backend-side sort; stored order is the contract.
func (o *Orchestrator) resort(ctx context.Context) error {
	docs, err := o.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	SortDocuments(docs, o.opts.SortKey)

	if err := o.store.Truncate(ctx); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}
	if err := o.store.InsertMultiple(ctx, docs); err != nil {
		return fmt.Errorf("reinsert catalog: %w", err)
	}
	return nil
}

// SortDocuments stable-sorts docs ascending by key. A missing key sorts
// before everything; numbers sort before strings. Records with equal keys
// keep their relative order.
func SortDocuments(docs []catalog.Document, key string) {
	sort.SliceStable(docs, func(i, j int) bool {
		return lessValue(docs[i][key], docs[j][key])
	})
}

func lessValue(a, b any) bool {
	an, aNum := toFloat(a)
	bn, bNum := toFloat(b)
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	case aNum && bNum:
		return an < bn
	case aNum != bNum:
		return aNum
	default:
		as, _ := a.(string)
		bs, _ := b.(string)
		return as < bs
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
