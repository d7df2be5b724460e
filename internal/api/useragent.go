package api

import (
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set at build time with -ldflags "-X ...api.Version=1.2.3".
var Version = "dev"

// UserAgent returns the User-Agent for version. Versions that are not
// semantic versions are reported as "dev".
func UserAgent(version string) string {
	if version == "" {
		version = Version
	}
	return "bridge-sdk-go/" + CanonicalVersion(version) + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}

// CanonicalVersion returns version without the leading "v" in canonical
// semver form ("1.2" becomes "1.2.0"), or "dev".
func CanonicalVersion(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "dev"
	}
	canonical := semver.Canonical(v)
	if build := semver.Build(v); build != "" {
		canonical += build
	}
	return strings.TrimPrefix(canonical, "v")
}
