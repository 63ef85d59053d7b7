// Package cli defines the Cobra command tree for the extbuild CLI. Each file
// in this package registers one top-level command with the root command.
// Command implementations delegate to internal packages for the pipeline
// and only handle flag parsing, settings resolution and output formatting.
package cli
