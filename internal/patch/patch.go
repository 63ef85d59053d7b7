// Package patch rewrites the RELEASE and legacy VERSION declarations in an
// extension's Perl module so they carry the release being built.
package patch

import (
	"fmt"
	"os"
	"regexp"
)

var (
	// $RELEASE = '...';  (optionally prefixed with "our")
	releaseDecl = regexp.MustCompile(`(?m)^(\s*(?:our\s*)?\$RELEASE\s*=\s*['"]).*(['"]\s*;)`)

	// $VERSION = '$Rev: 1234 $';  Only the SVN keyword form is rewritten.
	svnVersionDecl = regexp.MustCompile(`(?m)^(\s*(?:our\s*)?\$VERSION\s*=\s*['"])\$Rev.*(['"]\s*;)`)
)

// Content returns src with the first RELEASE declaration and the first
// SVN-style VERSION declaration set to release. The boolean reports
// whether anything changed.
func Content(src, release string) (string, bool) {
	out := replaceFirst(releaseDecl, src, release)
	out = replaceFirst(svnVersionDecl, out, release)
	return out, out != src
}

// File patches the file at path in place. A file without any matching
// declaration is left untouched and is not an error.
func File(path, release string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat version file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading version file: %w", err)
	}

	patched, changed := Content(string(data), release)
	if !changed {
		return nil
	}

	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// replaceFirst substitutes the first match of re, keeping capture groups 1
// and 2 around value.
func replaceFirst(re *regexp.Regexp, src, value string) string {
	loc := re.FindStringSubmatchIndex(src)
	if loc == nil {
		return src
	}
	prefix := src[loc[2]:loc[3]]
	suffix := src[loc[4]:loc[5]]
	return src[:loc[0]] + prefix + value + suffix + src[loc[1]:]
}
