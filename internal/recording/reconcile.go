package recording

// Reconcile merges freshly computed metadata with a previously persisted
// document for the same recording.
//
// Precedence: structural fields (name, path, time range, size, files,
// topics, time_modified) always come from computed — they are derived from
// the log files and a stale persisted copy must never override them. User
// fields from the persisted document win over computed ones, so edits made
// between ingests survive re-ingestion.
//
// A nil persisted document returns computed unchanged.
func Reconcile(computed, persisted *Metadata) *Metadata {
	if computed == nil {
		return nil
	}
	if persisted == nil {
		return computed
	}

	merged := *computed
	if len(persisted.Fields) > 0 {
		fields := make(map[string]any, len(persisted.Fields)+len(computed.Fields))
		for k, v := range computed.Fields {
			fields[k] = v
		}
		for k, v := range persisted.Fields {
			if structural(k) {
				continue
			}
			fields[k] = v
		}
		merged.Fields = fields
	}
	return &merged
}
