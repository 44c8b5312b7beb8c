package catalog

import "testing"

func TestMatches(t *testing.T) {
	doc := Document{
		"name":       "run-2024-01-01",
		"start_time": float64(100),
		"size":       int64(2048),
		"archived":   true,
	}

	tests := []struct {
		name  string
		key   string
		value any
		want  bool
	}{
		{"exact string", "name", "run-2024-01-01", true},
		{"string token", "name", "run", false},
		{"string case", "name", "RUN-2024-01-01", false},
		{"missing key", "vehicle", "v1", false},
		{"float vs float", "start_time", float64(100), true},
		{"int vs float", "start_time", 100, true},
		{"int64 vs int64", "size", int64(2048), true},
		{"int vs int64", "size", 2048, true},
		{"numeric mismatch", "start_time", 101, false},
		{"number vs string", "start_time", "100", false},
		{"bool", "archived", true, true},
		{"bool mismatch", "archived", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(doc, tt.key, tt.value); got != tt.want {
				t.Errorf("Matches(%q, %v) = %v, want %v", tt.key, tt.value, got, tt.want)
			}
		})
	}
}
