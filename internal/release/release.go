// Package release derives the release string written into an extension's
// version file.
package release

import (
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
)

// TimestampLayout is the ISO-8601 form used when a ref carries no release.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// releaseRef matches refs such as "q1.2.3" or "q2024.06.01-rc1".
var releaseRef = regexp.MustCompile(`^q(\d+\.\d+\.\d+.*)$`)

// FromRef returns the release for ref. A ref of the form q<semver> yields
// the version without its "q" prefix. Anything else yields now in UTC.
func FromRef(ref string, now time.Time) string {
	if m := releaseRef.FindStringSubmatch(ref); m != nil {
		if _, err := semver.NewVersion(m[1]); err == nil {
			return m[1]
		}
	}
	return now.UTC().Format(TimestampLayout)
}

// Resolve returns explicit when set, otherwise FromRef(ref, now).
func Resolve(explicit, ref string, now time.Time) string {
	if explicit != "" {
		return explicit
	}
	return FromRef(ref, now)
}
