// Package versioning negotiates the API version between clients and the
// server, so older automation against the schedules API keeps working as
// endpoints evolve.
package versioning

import (
	"fmt"
	"regexp"
	"strconv"
)

// APIVersion represents a semantic version for the API
type APIVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// String returns the version as a string (e.g., "1.2.0")
func (v APIVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare compares this version with another version
// Returns: -1 if this < other, 0 if equal, 1 if this > other
func (v APIVersion) Compare(other APIVersion) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// Version constants
var (
	V1_0_0 = APIVersion{Major: 1, Minor: 0, Patch: 0}
	V1_1_0 = APIVersion{Major: 1, Minor: 1, Patch: 0}
)

// Current API version
var CurrentVersion = V1_1_0

// Minimum supported version for backwards compatibility
var MinimumSupportedVersion = V1_0_0

var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// ParseVersion parses a version string into an APIVersion
func ParseVersion(versionStr string) (APIVersion, error) {
	matches := versionRe.FindStringSubmatch(versionStr)
	if len(matches) != 4 {
		return APIVersion{}, fmt.Errorf("invalid version format: %s", versionStr)
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])

	return APIVersion{Major: major, Minor: minor, Patch: patch}, nil
}

// Compatibility describes how a requested version relates to the server's.
type Compatibility struct {
	Requested  APIVersion `json:"requested"`
	Current    APIVersion `json:"current"`
	Compatible bool       `json:"compatible"`
	Reason     string     `json:"reason,omitempty"`
}

// CheckCompatibility reports whether the server can serve a client that
// requested the given version. Same major and at least the minimum
// supported version is required.
func CheckCompatibility(requested APIVersion) Compatibility {
	result := Compatibility{
		Requested: requested,
		Current:   CurrentVersion,
	}

	if requested.Major != CurrentVersion.Major {
		result.Reason = fmt.Sprintf("major version %d is not supported", requested.Major)
		return result
	}
	if requested.Compare(MinimumSupportedVersion) < 0 {
		result.Reason = fmt.Sprintf("version %s is older than minimum supported %s", requested, MinimumSupportedVersion)
		return result
	}
	if requested.Compare(CurrentVersion) > 0 {
		result.Reason = fmt.Sprintf("version %s is newer than current %s", requested, CurrentVersion)
		return result
	}

	result.Compatible = true
	return result
}
