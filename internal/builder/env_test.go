package builder

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvOverlay(t *testing.T) {
	base := []string{
		"PATH=/usr/bin",
		"NODE_ENV=production",
		"FOSWIKI_LIBS=/old",
		"HOME=/home/builder",
	}
	orig := append([]string(nil), base...)

	got := Env(base, Overlay{
		LibPath:       "/opt/foswiki/lib",
		AuthToken:     "gh-token",
		RegistryToken: "npm-token",
	})

	want := []string{
		"PATH=/usr/bin",
		"FOSWIKI_LIBS=/opt/foswiki/lib",
		"HOME=/home/builder",
		"GITHUB_AUTH_TOKEN=gh-token",
		"NPM_AUTH_TOKEN=npm-token",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig, base); diff != "" {
		t.Errorf("base environment was modified (-want +got):\n%s", diff)
	}
}

func TestEnvEmptyOverlayOnlyStrips(t *testing.T) {
	got := Env([]string{"NODE_ENV=production", "A=1", "NODE_ENVIRONMENT=x"}, Overlay{})
	want := []string{"A=1", "NODE_ENVIRONMENT=x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvDoesNotTouchProcessEnvironment(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	_ = Env([]string{"NODE_ENV=production"}, Overlay{LibPath: "/lib"})

	// The process table is only read by callers, never written.
	if v, ok := os.LookupEnv("NODE_ENV"); !ok || v != "production" {
		t.Errorf("process NODE_ENV changed: %q, %v", v, ok)
	}
	if _, ok := os.LookupEnv(EnvLibPath); ok {
		t.Errorf("process %s should not be set", EnvLibPath)
	}
}
