// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into
// the binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	UserAgent      string `yaml:"user_agent"`
	DefaultAPIBase string `yaml:"default_api_base"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "extbuild",
			DisplayName:    "ExtBuild",
			Description:    "Build and deploy a single Foswiki extension from source",
			HomeDir:        ".extbuild",
			EnvPrefix:      "EXTBUILD",
			UserAgent:      "extbuild",
			DefaultAPIBase: "https://api.github.com",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "extbuild").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".extbuild").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the prefix for tool-specific environment variables.
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// UserAgent returns the User-Agent sent with archive downloads.
func UserAgent() string { load(); return defaults.UserAgent }

// DefaultAPIBase returns the archive host used when none is configured.
func DefaultAPIBase() string { load(); return defaults.DefaultAPIBase }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("log_level") → "EXTBUILD_LOG_LEVEL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
