// Package version exposes the wishboard build version.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devVersion is reported when the binary was built without -ldflags.
const devVersion = "0.0.0-dev"

// version is set at build time:
//
//	go build -ldflags "-X github.com/rshade/wishboard/pkg/version.version=1.2.3"
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = devVersion

// GetVersion returns the normalized build version. A build-time value that is
// not valid semver falls back to the development version.
func GetVersion() string {
	v, err := Parse(version)
	if err != nil {
		return devVersion
	}
	return v.String()
}

// Parse parses a version string, tolerating a leading "v".
func Parse(s string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimSpace(s))
}

// UserAgent returns the User-Agent used for outbound requests.
func UserAgent() string {
	return "wishboard/" + GetVersion()
}
