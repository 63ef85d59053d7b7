// Package deploy copies a build's artifacts from the build root to the
// deployment directory, synthesizing the ones a build tool may not
// produce.
//
// The deployment directory is either a local path or an
// sftp://user@host[:port]/dir location reached over SSH.
package deploy
