// Package config resolves the BuildRequest for one pipeline run.
//
// Values come from, highest precedence first: command-line flags, the
// process environment, a .env file, the config file (by default
// ~/.extbuild/config.yaml), and built-in defaults. The .env file is read
// without touching the process environment.
package config
