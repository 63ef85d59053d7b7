// Package source materializes an extension's source tree in the build
// working directory, either by downloading a GitHub archive of a ref and
// extracting it, or by copying a locally mounted checkout.
//
// Both modes leave the content wrapped in one top-level directory under
// the working directory, so the build root convention holds regardless
// of where the source came from.
package source
