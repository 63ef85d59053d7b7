package builder

import "strings"

// Environment keys the build tools read.
const (
	EnvLibPath       = "FOSWIKI_LIBS"
	EnvAuthToken     = "GITHUB_AUTH_TOKEN"
	EnvRegistryToken = "NPM_AUTH_TOKEN"
)

// strippedKeys are removed from every build environment. NODE_ENV=production
// sends the build's npm steps down a path that expects prebuilt assets.
var strippedKeys = []string{"NODE_ENV"}

// Overlay holds the build-specific values layered over the inherited
// environment. Empty fields are not set.
type Overlay struct {
	LibPath       string
	AuthToken     string
	RegistryToken string
}

// Env returns a new environment built from base with o applied and the
// stripped keys removed. base is not modified.
func Env(base []string, o Overlay) []string {
	env := make([]string, 0, len(base)+3)
	for _, kv := range base {
		if !isStripped(kv) {
			env = append(env, kv)
		}
	}

	if o.LibPath != "" {
		env = setEnv(env, EnvLibPath, o.LibPath)
	}
	if o.AuthToken != "" {
		env = setEnv(env, EnvAuthToken, o.AuthToken)
	}
	if o.RegistryToken != "" {
		env = setEnv(env, EnvRegistryToken, o.RegistryToken)
	}
	return env
}

func isStripped(kv string) bool {
	key, _, _ := strings.Cut(kv, "=")
	for _, k := range strippedKeys {
		if key == k {
			return true
		}
	}
	return false
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
