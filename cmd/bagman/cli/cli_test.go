package cli

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90); got != "1m30s" {
		t.Errorf("formatDuration(90) = %q, want 1m30s", got)
	}
	if got := formatDuration(0.4); got != "0s" {
		t.Errorf("formatDuration(0.4) = %q, want 0s", got)
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(0); got != "-" {
		t.Errorf("formatTime(0) = %q, want -", got)
	}
	if got := formatTime(1700000000); got != "2023-11-14 22:13:20" {
		t.Errorf("formatTime(1700000000) = %q", got)
	}
}
