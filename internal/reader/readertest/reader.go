// Package readertest provides a deterministic stub reader for tests.
package readertest

import (
	"context"
	"fmt"
	"path/filepath"

	"bagman/internal/reader"
)

// Reader serves canned per-channel statistics keyed by file base name.
type Reader struct {
	// Files maps a file base name to the channel stats its scan reports.
	Files map[string][]reader.ChannelInfo

	// Scanned records the base names of scanned files in call order.
	Scanned []string
}

var _ reader.Reader = (*Reader)(nil)

// ScanFile returns the canned stats for the file's base name.
// Scanning a file with no canned entry is an error, so tests catch
// unexpected file discovery.
func (r *Reader) ScanFile(ctx context.Context, path string) ([]reader.ChannelInfo, error) {
	name := filepath.Base(path)
	r.Scanned = append(r.Scanned, name)
	infos, ok := r.Files[name]
	if !ok {
		return nil, fmt.Errorf("no stub data for file %q", name)
	}
	return infos, nil
}
