//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/extbuild/internal/config"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir   string // HOME, where ~/.extbuild/config.yaml would live
	WorkDir   string // BUILD_PATH
	DeployDir string // DEPLOY_PATH
	SourceDir string // LOCAL_SOURCE_PATH
	LibDir    string // FOSWIKI_LIBS
}

// setupTestEnv creates isolated temp directories and points every setting
// variable at them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:   t.TempDir(),
		WorkDir:   filepath.Join(t.TempDir(), "work"),
		DeployDir: filepath.Join(t.TempDir(), "deploy"),
		SourceDir: t.TempDir(),
		LibDir:    t.TempDir(),
	}

	t.Setenv("HOME", env.HomeDir)
	for _, k := range config.Keys() {
		t.Setenv(config.EnvName(k), "")
		os.Unsetenv(config.EnvName(k))
	}
	t.Setenv("BUILD_PATH", env.WorkDir)
	t.Setenv("DEPLOY_PATH", env.DeployDir)
	t.Setenv("FOSWIKI_LIBS", env.LibDir)

	return env
}

// loadRequest resolves settings from the environment only.
func loadRequest(t *testing.T) *config.BuildRequest {
	t.Helper()
	r, err := config.Load(config.LoadOptions{DotEnvFile: filepath.Join(t.TempDir(), "absent.env")})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return r
}

// legacyExtension is a Foswiki-style plugin checkout whose build.pl writes
// the three release artifacts into the current directory.
var legacyExtension = map[string]string{
	"lib/Foswiki/Plugins/FooPlugin.pm": `package Foswiki::Plugins::FooPlugin;
use strict;
our $VERSION = '$Rev: 4711 $';
our $RELEASE = '0.1';
1;
`,
	"lib/Foswiki/Plugins/FooPlugin/build.pl": `#!/usr/bin/env perl
use strict;
die "usage: build.pl release\n" unless ($ARGV[0] || '') eq 'release';
die "FOSWIKI_LIBS not set\n" unless $ENV{FOSWIKI_LIBS};
print "NODE_ENV leaked\n" if exists $ENV{NODE_ENV};
for my $f ('FooPlugin.tgz', 'FooPlugin_installer', 'FooPlugin.txt') {
    open(my $fh, '>', $f) or die "$f: $!";
    print $fh "$f\n";
    close($fh);
}
print "built FooPlugin\n";
`,
	"data/System/FooPlugin.txt": "---+ FooPlugin\n",
}

// writeTree creates files under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), body)
	}
}

// writeFile creates a file with the given content, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	mode := os.FileMode(0644)
	if strings.HasPrefix(content, "#!") {
		mode = 0755
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// tarball builds a GitHub-style tar.gz with a single top-level directory.
func tarball(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	// GitHub tarballs start with a pax global header carrying the commit.
	if err := tw.WriteHeader(&tar.Header{
		Typeflag:   tar.TypeXGlobalHeader,
		Name:       "pax_global_header",
		PAXRecords: map[string]string{"comment": "abc1234"},
	}); err != nil {
		t.Fatal(err)
	}

	for name, body := range files {
		mode := int64(0644)
		if strings.HasPrefix(body, "#!") {
			mode = 0755
		}
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     prefix + "/" + name,
			Mode:     mode,
			Size:     int64(len(body)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
