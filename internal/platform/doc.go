// Package platform provides the few filesystem operations whose behavior
// differs between Unix and Windows: exact permission bits and symlinks.
package platform
