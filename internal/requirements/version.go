package requirements

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// PEP 440 public version with optional local segment.
var pep440 = regexp.MustCompile(`(?i)^v?(?:\d+!)?\d+(?:\.\d+)*` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?\d*)?` +
	`(?:-\d+|[-_.]?(?:post|rev|r)[-_.]?\d*)?` +
	`(?:[-_.]?(dev)[-_.]?\d*)?` +
	`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?$`)

// IsPrerelease reports whether version is a pre or development release.
// Versions that parse as neither PEP 440 nor semver are not pre-releases.
func IsPrerelease(version string) bool {
	version = strings.TrimSpace(version)
	if m := pep440.FindStringSubmatch(version); m != nil {
		return m[1] != "" || m[2] != ""
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v) && semver.Prerelease(v) != ""
}
