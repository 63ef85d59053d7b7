package descriptor

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewAndEncode(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := New("Foo extension", "2024.06.01", now)

	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("encoded descriptor is not JSON: %v", err)
	}
	want := map[string]any{
		"description":  "Foo extension",
		"version":      "1",
		"release":      "2024.06.01",
		"date":         "2024-06-01T12:00:00Z",
		"dependencies": []any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeNilDependencies(t *testing.T) {
	d := Descriptor{Version: SchemaVersion, Release: "1", Date: "2024-06-01T12:00:00Z"}
	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `"dependencies": []`) {
		t.Errorf("dependencies should encode as an empty array:\n%s", data)
	}
}

func TestEncodeRejectsEmptyRelease(t *testing.T) {
	d := New("Foo", "", time.Now())
	_, err := d.Encode()
	var inv *InvalidError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidError, got %v", err)
	}
	if len(inv.Issues) == 0 || inv.Issues[0].Path != "/release" {
		t.Errorf("expected issue at /release, got %+v", inv.Issues)
	}
}

func TestValidateMissingKey(t *testing.T) {
	err := Validate([]byte(`{"description":"x","version":"1","date":"2024-06-01T12:00:00Z","dependencies":[]}`))
	var inv *InvalidError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidError, got %v", err)
	}
	if !strings.Contains(inv.Error(), "release") {
		t.Errorf("error should mention release: %v", inv)
	}
}

func TestValidateBadDate(t *testing.T) {
	err := Validate([]byte(`{"description":"x","version":"1","release":"1","date":"yesterday","dependencies":[]}`))
	if err == nil {
		t.Fatal("expected error for non RFC 3339 date")
	}
}
