package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChmodSetsExactBits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no permission bits on Windows")
	}

	path := filepath.Join(t.TempDir(), "build")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := Chmod(path, 0755); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0755 {
		t.Errorf("permissions = %o, want 755", perm)
	}
}

func TestChmodMissingFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no-op on Windows")
	}
	if err := Chmod(filepath.Join(t.TempDir(), "absent"), 0644); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSymlinkRelativeTarget(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Foo.pm"), []byte("1;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(dir, "Alias.pm")
	if err := Symlink("Foo.pm", link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	data, err := os.ReadFile(link)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1;\n" {
		t.Errorf("link content = %q", data)
	}
}

func TestSymlinkExistingLink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	if err := os.WriteFile(link, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := Symlink("target", link); err == nil {
		t.Error("expected error when link path exists")
	}
}
