package recording

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bagman/internal/logging"
	"bagman/internal/reader"
)

// Aggregator merges per-file channel statistics into one recording-level
// Metadata record. It reads log files through the injected reader and has
// no other side effects: given identical files and reader output, the
// result is identical.
type Aggregator struct {
	reader reader.Reader
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator scanning files with r.
func NewAggregator(r reader.Reader, logger *slog.Logger) *Aggregator {
	logger = logging.Default(logger)
	return &Aggregator{
		reader: r,
		logger: logger.With("component", "aggregator"),
		now:    time.Now,
	}
}

// Aggregate scans the given log files of the recording at recordingPath and
// returns the merged metadata. Files are processed in lexicographic path
// order so the merge is reproducible regardless of discovery order.
//
// An empty file set returns (nil, nil): a recording with zero log files has
// no aggregated metadata. The caller decides whether that is an error.
func (a *Aggregator) Aggregate(ctx context.Context, recordingPath string, files []string) (*Metadata, error) {
	if len(files) == 0 {
		return nil, nil
	}

	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	m := &Metadata{
		Name:         filepath.Base(filepath.Clean(recordingPath)),
		Path:         recordingPath,
		TimeModified: float64(a.now().UnixNano()) / 1e9,
	}

	topics := make(map[string]*TopicInfo)
	haveBounds := false

	for _, file := range sorted {
		channels, err := a.reader.ScanFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", file, err)
		}

		sum, size, err := probeFile(file)
		if err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(recordingPath, file)
		if err != nil {
			rel = filepath.Base(file)
		}

		fi := FileInfo{Path: rel, MD5Sum: sum, Size: size}
		for i, ch := range channels {
			if i == 0 || ch.StartTime < fi.StartTime {
				fi.StartTime = ch.StartTime
			}
			if i == 0 || ch.EndTime > fi.EndTime {
				fi.EndTime = ch.EndTime
			}
		}
		fi.Duration = fi.EndTime - fi.StartTime
		m.Files = append(m.Files, fi)
		m.Size += size

		// A file with no messages contributes size only, never time bounds.
		if len(channels) > 0 {
			if !haveBounds || fi.StartTime < m.StartTime {
				m.StartTime = fi.StartTime
			}
			if !haveBounds || fi.EndTime > m.EndTime {
				m.EndTime = fi.EndTime
			}
			haveBounds = true
		}

		for _, ch := range channels {
			ti, ok := topics[ch.Topic]
			if !ok {
				ti = &TopicInfo{
					Name:      ch.Topic,
					StartTime: ch.StartTime,
					EndTime:   ch.EndTime,
				}
				topics[ch.Topic] = ti
			}
			if ch.MessageType != "" {
				ti.Type = ch.MessageType
			}
			ti.Count += ch.Count
			if ch.StartTime < ti.StartTime {
				ti.StartTime = ch.StartTime
			}
			if ch.EndTime > ti.EndTime {
				ti.EndTime = ch.EndTime
			}
		}

		a.logger.Debug("aggregated file",
			"recording", m.Name, "file", rel, "channels", len(channels), "bytes", size)
	}

	m.Duration = m.EndTime - m.StartTime

	for _, ti := range topics {
		ti.Duration = ti.EndTime - ti.StartTime
		if ti.Duration > 0 {
			ti.Frequency = float64(ti.Count) / ti.Duration
		}
		m.Topics = append(m.Topics, *ti)
	}
	sort.Slice(m.Topics, func(i, j int) bool { return m.Topics[i].Name < m.Topics[j].Name })

	return m, nil
}

// probeFile computes the MD5 checksum and byte size of a file in one pass.
func probeFile(path string) (sum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
