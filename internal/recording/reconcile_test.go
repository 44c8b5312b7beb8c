package recording

import "testing"

func TestReconcileNilPersisted(t *testing.T) {
	computed := &Metadata{Name: "rec", StartTime: 1}
	if got := Reconcile(computed, nil); got != computed {
		t.Fatalf("expected computed back unchanged, got %+v", got)
	}
}

func TestReconcileUserFieldsSurvive(t *testing.T) {
	computed := &Metadata{
		Name:      "rec",
		Path:      "/data/rec",
		StartTime: 10,
		EndTime:   20,
		Fields:    map[string]any{"operator": "auto"},
	}
	persisted := &Metadata{
		Name:      "rec",
		Path:      "/old/location/rec",
		StartTime: 99,
		Fields: map[string]any{
			"description": "rainy test drive",
			"operator":    "alice",
		},
	}

	merged := Reconcile(computed, persisted)

	if merged.Path != "/data/rec" || merged.StartTime != 10 || merged.EndTime != 20 {
		t.Errorf("structural fields must come from computed, got %+v", merged)
	}
	if merged.Fields["description"] != "rainy test drive" {
		t.Errorf("description = %v, want persisted value", merged.Fields["description"])
	}
	if merged.Fields["operator"] != "alice" {
		t.Errorf("operator = %v, persisted user field must win", merged.Fields["operator"])
	}
}

func TestReconcileIgnoresStructuralKeysInPersistedFields(t *testing.T) {
	computed := &Metadata{Name: "rec", Size: 100}
	persisted := &Metadata{
		Fields: map[string]any{
			"size":  int64(999999),
			"notes": "keep me",
		},
	}

	merged := Reconcile(computed, persisted)

	if merged.Size != 100 {
		t.Errorf("size = %d, want 100", merged.Size)
	}
	if _, ok := merged.Fields["size"]; ok {
		t.Error("structural key leaked into merged user fields")
	}
	if merged.Fields["notes"] != "keep me" {
		t.Errorf("notes = %v", merged.Fields["notes"])
	}
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	computed := &Metadata{Name: "rec", Fields: map[string]any{"a": 1}}
	persisted := &Metadata{Fields: map[string]any{"b": 2}}

	Reconcile(computed, persisted)

	if len(computed.Fields) != 1 {
		t.Errorf("computed fields mutated: %v", computed.Fields)
	}
	if len(persisted.Fields) != 1 {
		t.Errorf("persisted fields mutated: %v", persisted.Fields)
	}
}
