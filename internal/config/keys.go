package config

import (
	"strings"

	"github.com/agentx-labs/extbuild/internal/branding"
)

// Setting keys. Each is read from the upper-cased environment variable of
// the same name and from the flag with underscores turned into dashes.
const (
	KeyOrganization    = "github_organization"
	KeyRepository      = "github_repository"
	KeyRef             = "github_ref"
	KeyAuthToken       = "github_auth_token"
	KeyAPIBase         = "github_api_base"
	KeyBuildPath       = "build_path"
	KeyDeployPath      = "deploy_path"
	KeyLibPath         = "foswiki_libs"
	KeyRelease         = "release"
	KeyRegistryToken   = "npm_auth_token"
	KeyUseLocalSource  = "use_local_source"
	KeyLocalSourcePath = "local_source_path"
	KeyFlatLayout      = "flat_layout"
	KeyBuilder         = "builder"
	KeyBuilderFlags    = "builder_flags"
	KeyArchiveFormat   = "archive_format"
	KeyCopyPolicy      = "copy_policy"
	KeyBuildTimeout    = "build_timeout"
	KeyFetchTimeout    = "fetch_timeout"
	KeyDescription     = "description"
	KeyDeployKey       = "deploy_ssh_key"
	KeyDeployPassword  = "deploy_ssh_password"
	KeyDeployKnownHost = "deploy_ssh_known_hosts"
)

type keyInfo struct {
	key   string
	def   any
	usage string
}

// keys is ordered as `config show` prints it.
var keys = []keyInfo{
	{key: KeyOrganization, usage: "GitHub organization owning the extension repository"},
	{key: KeyRepository, usage: "extension (and repository) name"},
	{key: KeyRef, usage: "git ref to build; q<version> refs set the release"},
	{key: KeyAuthToken, usage: "GitHub token for the archive download and the build"},
	{key: KeyAPIBase, def: branding.DefaultAPIBase(), usage: "archive API base URL"},
	{key: KeyBuildPath, usage: "working directory the source is materialized in"},
	{key: KeyDeployPath, usage: "directory artifacts are deployed to, local or sftp://user@host/dir"},
	{key: KeyLibPath, usage: "Foswiki lib directory exported to the build as FOSWIKI_LIBS"},
	{key: KeyRelease, usage: "release string; derived from the ref when empty"},
	{key: KeyRegistryToken, usage: "npm registry token exported to the build"},
	{key: KeyUseLocalSource, def: false, usage: "copy the local checkout instead of downloading"},
	{key: KeyLocalSourcePath, def: "/source", usage: "path of the local checkout"},
	{key: KeyFlatLayout, def: false, usage: "run the builder in the working directory itself"},
	{key: KeyBuilder, def: "legacy", usage: "build convention: legacy (build.pl) or script (./build)"},
	{key: KeyBuilderFlags, usage: "extra arguments passed to the build tool"},
	{key: KeyArchiveFormat, def: "zip", usage: "archive format to download: zip or tar"},
	{key: KeyCopyPolicy, def: "abort", usage: "artifact failure policy: abort or all"},
	{key: KeyBuildTimeout, def: "0s", usage: "build tool deadline, 0 waits forever"},
	{key: KeyFetchTimeout, def: "0s", usage: "archive download deadline, 0 waits forever"},
	{key: KeyDescription, usage: "description written to metadata.json"},
	{key: KeyDeployKey, usage: "private key for sftp:// deploy targets"},
	{key: KeyDeployPassword, usage: "password for sftp:// deploy targets"},
	{key: KeyDeployKnownHost, usage: "known_hosts file verifying sftp:// hosts; empty accepts any host key"},
}

var keyIndex = func() map[string]keyInfo {
	m := make(map[string]keyInfo, len(keys))
	for _, k := range keys {
		m[k.key] = k
	}
	return m
}()

// EnvName returns the environment variable for key.
func EnvName(key string) string { return strings.ToUpper(key) }

// FlagName returns the command-line flag for key.
func FlagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// Keys returns every setting key in display order.
func Keys() []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.key
	}
	return out
}

// Usage returns the help text for key.
func Usage(key string) string { return keyIndex[key].usage }

// sensitivePatterns are substrings that indicate a value should be redacted.
var sensitivePatterns = []string{"TOKEN", "SECRET", "PASSWORD", "KEY", "CREDENTIAL"}

// RedactValue returns a redacted version of value if the key name contains
// a sensitive pattern (case-insensitive substring match).
// Values with 4+ chars show the first 4 chars + "***".
// Values with fewer than 4 chars are fully redacted as "***".
func RedactValue(key, value string) string {
	if value == "" {
		return ""
	}
	upper := strings.ToUpper(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(upper, pattern) {
			if len(value) >= 4 {
				return value[:4] + "***"
			}
			return "***"
		}
	}
	return value
}

// Default returns the built-in default for key, or nil when it has none.
func Default(key string) any { return keyIndex[key].def }
