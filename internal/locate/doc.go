// Package locate finds the two things the pipeline needs inside a fetched
// source tree: the extension's version file and the directory the build
// tool runs from.
//
// Both lookups are first-match-wins over lexicographically ordered
// candidates. Extra candidates are logged as warnings, never errors.
package locate
