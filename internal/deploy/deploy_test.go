package deploy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/agentx-labs/extbuild/internal/descriptor"
	"github.com/agentx-labs/extbuild/internal/logging"
)

func writeArtifact(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
		t.Fatal(err)
	}
}

func legacySet(name string) []Artifact {
	return []Artifact{
		Required(PackageName(name)),
		Required(InstallerName(name)),
		Required(name + ".txt"),
	}
}

func TestDeployAllPresent(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "deploy")

	contents := map[string][]byte{
		"Foo.tgz":       {0x1f, 0x8b, 0x08, 0x00, 0xff, 0x00},
		"Foo_installer": []byte("#!/usr/bin/perl\nprint 1;\n"),
		"Foo.txt":       []byte("Foo extension\n"),
	}
	for name, c := range contents {
		writeArtifact(t, root, name, c)
	}

	d := &Deployer{Logger: logging.Discard()}
	deployed, err := d.Deploy(root, out, legacySet("Foo"))
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if len(deployed) != 3 {
		t.Errorf("deployed %v, want 3 artifacts", deployed)
	}

	for name, want := range contents {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("reading deployed %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s differs from source", name)
		}
	}
}

func TestDeployMissingPackageAborts(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeArtifact(t, root, "Foo_installer", []byte("x"))
	writeArtifact(t, root, "Foo.txt", []byte("y"))

	d := &Deployer{Policy: AbortOnFirst, Logger: logging.Discard()}
	deployed, err := d.Deploy(root, out, legacySet("Foo"))

	var re *CopyReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected CopyReadError, got %v", err)
	}
	if filepath.Base(re.Path) != "Foo.tgz" {
		t.Errorf("CopyReadError.Path = %q", re.Path)
	}
	if len(deployed) != 0 {
		t.Errorf("abort policy should stop before later artifacts, deployed %v", deployed)
	}
	if _, err := os.Stat(filepath.Join(out, "Foo_installer")); err == nil {
		t.Error("installer should not be copied after abort")
	}
}

func TestDeployMissingPackageAttemptAll(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeArtifact(t, root, "Foo_installer", []byte("x"))

	d := &Deployer{Policy: AttemptAll, Logger: logging.Discard()}
	deployed, err := d.Deploy(root, out, legacySet("Foo"))
	if err == nil {
		t.Fatal("expected aggregated error")
	}

	var re *CopyReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected CopyReadError in %v", err)
	}
	if !strings.Contains(err.Error(), "Foo.tgz") || !strings.Contains(err.Error(), "Foo.txt") {
		t.Errorf("aggregated error should name both missing files: %v", err)
	}
	if len(deployed) != 1 || deployed[0] != "Foo_installer" {
		t.Errorf("deployed = %v, want [Foo_installer]", deployed)
	}
}

func TestDeploySynthesizesMissing(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeArtifact(t, root, "Foo.tgz", []byte("pkg"))

	meta := descriptor.New("Foo", "2024.06.01", time.Now())
	artifacts := []Artifact{
		Required(PackageName("Foo")),
		EmptyPlaceholder(InstallerName("Foo")),
		Metadata(meta),
	}

	d := &Deployer{Logger: logging.Discard()}
	if _, err := d.Deploy(root, out, artifacts); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	info, err := os.Stat(filepath.Join(out, "Foo_installer"))
	if err != nil {
		t.Fatalf("installer placeholder missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("installer placeholder size = %d, want 0", info.Size())
	}

	data, err := os.ReadFile(filepath.Join(out, descriptor.FileName))
	if err != nil {
		t.Fatalf("metadata missing: %v", err)
	}
	if !strings.Contains(string(data), `"release": "2024.06.01"`) {
		t.Errorf("metadata missing release:\n%s", data)
	}
}

func TestDeployPrefersBuiltArtifactOverSynthesized(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeArtifact(t, root, "Foo_installer", []byte("real installer"))

	d := &Deployer{Logger: logging.Discard()}
	if _, err := d.Deploy(root, out, []Artifact{EmptyPlaceholder("Foo_installer")}); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(filepath.Join(out, "Foo_installer"))
	if string(got) != "real installer" {
		t.Errorf("installer = %q, want the built one", got)
	}
}

func TestDeployUnwritableDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}

	root := t.TempDir()
	writeArtifact(t, root, "Foo.tgz", []byte("pkg"))
	out := t.TempDir()
	if err := os.Chmod(out, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(out, 0755) })

	d := &Deployer{Logger: logging.Discard()}
	_, err := d.Deploy(root, out, []Artifact{Required("Foo.tgz")})
	var we *CopyWriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected CopyWriteError, got %v", err)
	}
}

func TestCopyToPreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not enforced on Windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "Foo_installer")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "copy")
	if err := copyTo(LocalTarget{}, src, dst); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(dst)
	if info.Mode().Perm()&0111 == 0 {
		t.Error("executable bit lost")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", AbortOnFirst, false},
		{"abort", AbortOnFirst, false},
		{"all", AttemptAll, false},
		{"retry", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}
