// Package descriptor models the metadata.json file deployed next to an
// extension package when the build tool does not write one itself, and
// validates it against an embedded JSON Schema before it is written.
package descriptor
