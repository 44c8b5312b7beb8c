// Package recording defines the recording-level metadata model and the two
// pure operations on it: aggregation of per-file channel statistics into one
// metadata record, and reconciliation of freshly computed metadata with a
// previously persisted document.
//
// All timestamps are float64 seconds since the Unix epoch. That is the
// on-disk and in-catalog representation; consumers convert for display.
package recording

// FileInfo describes one log file of a recording. It is recomputed wholesale
// on every ingest, never patched incrementally.
type FileInfo struct {
	// Path is relative to the recording directory.
	Path      string  `yaml:"path" json:"path"`
	StartTime float64 `yaml:"start_time" json:"start_time"`
	EndTime   float64 `yaml:"end_time" json:"end_time"`
	Duration  float64 `yaml:"duration" json:"duration"`
	MD5Sum    string  `yaml:"md5sum" json:"md5sum"`
	// Size is the file size in bytes.
	Size int64 `yaml:"size" json:"size"`
}

// TopicInfo describes one channel merged across all files of a recording.
type TopicInfo struct {
	Name      string  `yaml:"name" json:"name"`
	Type      string  `yaml:"type" json:"type"`
	Count     int64   `yaml:"count" json:"count"`
	StartTime float64 `yaml:"start_time" json:"start_time"`
	EndTime   float64 `yaml:"end_time" json:"end_time"`
	Duration  float64 `yaml:"duration" json:"duration"`
	// Frequency is Count/Duration. A topic with zero duration has
	// frequency 0, never null; keeping a single sentinel keeps the
	// serialized documents schema-stable across backends.
	Frequency float64 `yaml:"frequency" json:"frequency"`
}

// Metadata is the recording-level record: structural facts derived from the
// log files plus free-form user-editable fields.
type Metadata struct {
	// Name is the recording's unique natural key (the directory base name).
	Name string `yaml:"name"`
	// Path is the canonical storage path of the recording directory.
	Path         string      `yaml:"path"`
	StartTime    float64     `yaml:"start_time"`
	EndTime      float64     `yaml:"end_time"`
	Duration     float64     `yaml:"duration"`
	Size         int64       `yaml:"size"`
	TimeModified float64     `yaml:"time_modified"`
	Files        []FileInfo  `yaml:"files"`
	Topics       []TopicInfo `yaml:"topics"`

	// Fields holds user-editable keys (description, operator, vehicle, ...).
	// Aggregation never touches them; reconciliation preserves them.
	Fields map[string]any `yaml:",inline"`
}

// Record is a catalog entry: metadata plus the append-only insertion stamp.
type Record struct {
	Metadata  `yaml:",inline"`
	TimeAdded float64 `yaml:"time_added"`
}

// structural reports whether key is owned by aggregation (or the catalog)
// rather than by the user. Persisted copies of these keys never survive
// reconciliation.
func structural(key string) bool {
	switch key {
	case "name", "path", "start_time", "end_time", "duration", "size",
		"time_modified", "time_added", "files", "topics":
		return true
	}
	return false
}
