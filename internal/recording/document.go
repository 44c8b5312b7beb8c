package recording

// Catalog backends are schema-agnostic and exchange records as plain
// map[string]any documents (JSON-shaped: nested maps, []any, numbers as
// float64 or integer types). The conversions here are explicit rather than
// reflective so that numeric widening across encodings (JSON float64, BSON
// int32/int64) is handled in exactly one place.

// Document converts the record to a catalog document. User fields are laid
// down first; structural keys always win.
func (r Record) Document() map[string]any {
	doc := r.Metadata.document()
	doc["time_added"] = r.TimeAdded
	return doc
}

func (m Metadata) document() map[string]any {
	doc := make(map[string]any, len(m.Fields)+10)
	for k, v := range m.Fields {
		if structural(k) {
			continue
		}
		doc[k] = v
	}

	files := make([]any, len(m.Files))
	for i, f := range m.Files {
		files[i] = map[string]any{
			"path":       f.Path,
			"start_time": f.StartTime,
			"end_time":   f.EndTime,
			"duration":   f.Duration,
			"md5sum":     f.MD5Sum,
			"size":       f.Size,
		}
	}
	topics := make([]any, len(m.Topics))
	for i, t := range m.Topics {
		topics[i] = map[string]any{
			"name":       t.Name,
			"type":       t.Type,
			"count":      t.Count,
			"start_time": t.StartTime,
			"end_time":   t.EndTime,
			"duration":   t.Duration,
			"frequency":  t.Frequency,
		}
	}

	doc["name"] = m.Name
	doc["path"] = m.Path
	doc["start_time"] = m.StartTime
	doc["end_time"] = m.EndTime
	doc["duration"] = m.Duration
	doc["size"] = m.Size
	doc["time_modified"] = m.TimeModified
	doc["files"] = files
	doc["topics"] = topics
	return doc
}

// RecordFromDocument converts a catalog document back into a typed Record.
// Unknown keys land in Fields. Missing structural keys decode to zero
// values; schema validation is the integrity check's concern, not this
// function's.
func RecordFromDocument(doc map[string]any) Record {
	var r Record
	r.Metadata = metadataFromDocument(doc)
	r.TimeAdded = asFloat(doc["time_added"])
	return r
}

func metadataFromDocument(doc map[string]any) Metadata {
	m := Metadata{
		Name:         asString(doc["name"]),
		Path:         asString(doc["path"]),
		StartTime:    asFloat(doc["start_time"]),
		EndTime:      asFloat(doc["end_time"]),
		Duration:     asFloat(doc["duration"]),
		Size:         asInt(doc["size"]),
		TimeModified: asFloat(doc["time_modified"]),
	}

	for _, v := range asSlice(doc["files"]) {
		fm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		m.Files = append(m.Files, FileInfo{
			Path:      asString(fm["path"]),
			StartTime: asFloat(fm["start_time"]),
			EndTime:   asFloat(fm["end_time"]),
			Duration:  asFloat(fm["duration"]),
			MD5Sum:    asString(fm["md5sum"]),
			Size:      asInt(fm["size"]),
		})
	}
	for _, v := range asSlice(doc["topics"]) {
		tm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		m.Topics = append(m.Topics, TopicInfo{
			Name:      asString(tm["name"]),
			Type:      asString(tm["type"]),
			Count:     asInt(tm["count"]),
			StartTime: asFloat(tm["start_time"]),
			EndTime:   asFloat(tm["end_time"]),
			Duration:  asFloat(tm["duration"]),
			Frequency: asFloat(tm["frequency"]),
		})
	}

	for k, v := range doc {
		if structural(k) {
			continue
		}
		if m.Fields == nil {
			m.Fields = make(map[string]any)
		}
		m.Fields[k] = v
	}
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	}
	return 0
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
