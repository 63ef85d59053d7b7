// Package builder drives the external build tool that packages an
// extension. A Builder strategy turns a Spec into a Command and names the
// artifacts that build convention leaves behind; the Invoker runs the
// Command with a derived environment and streams its output to the log.
// Dispatch selects the strategy from the configured variant tag.
package builder
