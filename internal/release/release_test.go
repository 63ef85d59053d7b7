package release

import (
	"testing"
	"time"
)

func TestFromRef(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 15, 250_000_000, time.FixedZone("CEST", 2*3600))
	stamp := "2024-06-01T07:30:15.250Z"

	tests := []struct {
		ref  string
		want string
	}{
		{"q1.2.3", "1.2.3"},
		{"q2024.06.01", "2024.06.01"},
		{"q1.0.0-rc1", "1.0.0-rc1"},
		{"master", stamp},
		{"v1.2.3", stamp},
		{"q1.2", stamp},
		{"q1.2.x", stamp},
		{"", stamp},
	}
	for _, tt := range tests {
		if got := FromRef(tt.ref, now); got != tt.want {
			t.Errorf("FromRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestResolveExplicitWins(t *testing.T) {
	if got := Resolve("2024.06.01", "q9.9.9", time.Now()); got != "2024.06.01" {
		t.Errorf("Resolve = %q, want explicit release", got)
	}
	if got := Resolve("", "q9.9.9", time.Now()); got != "9.9.9" {
		t.Errorf("Resolve = %q, want release from ref", got)
	}
}
