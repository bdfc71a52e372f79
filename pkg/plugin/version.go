package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version: %s", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version: %s", parts[1])
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return Version{}, fmt.Errorf("invalid patch version: %s", parts[2])
	}

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// less reports whether v sorts before o.
func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks a plugin's protocol version against the host.
// Rules:
// - Major version must match exactly (breaking changes).
// - The version must not be older than MinCompatibleVersion.
// - Higher minor and patch versions are accepted.
func IsCompatible(pluginVersionStr string) (bool, error) {
	pluginVersion, err := Parse(pluginVersionStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}

	current := GetCurrentVersion()
	if pluginVersion.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: plugin is %s, thumbweave requires %d.x.x",
			pluginVersion.String(),
			current.Major,
		)
	}

	minVersion, err := Parse(MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if pluginVersion.less(minVersion) {
		return false, fmt.Errorf(
			"plugin version %s is too old, minimum required is %s",
			pluginVersion.String(),
			MinCompatibleVersion,
		)
	}

	return true, nil
}

// GetCurrentVersion returns the current protocol version as a Version struct.
func GetCurrentVersion() Version {
	v, err := Parse(ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
