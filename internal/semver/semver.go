// Package semver implements the strict three-component version scheme used
// across release manifests: exactly "MAJOR.MINOR.PATCH" with non-negative
// decimal components and no prerelease or build metadata.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed MAJOR.MINOR.PATCH triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// versionRe matches exactly three dot-separated non-negative integers.
// Leading zeros are tolerated ("1.02.3") since manifests in the wild carry
// them, but no prefix, suffix, or extra components are accepted.
var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Parse parses a strict MAJOR.MINOR.PATCH string.
func Parse(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}

	var v Version
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, fmt.Errorf("invalid major component in %q: %w", s, err)
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, fmt.Errorf("invalid minor component in %q: %w", s, err)
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, fmt.Errorf("invalid patch component in %q: %w", s, err)
	}
	return v, nil
}

// IsValid reports whether s is a well-formed MAJOR.MINOR.PATCH string.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String formats the version without a "v" prefix.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag formats the version as a git tag with the given prefix (usually "v").
func (v Version) Tag(prefix string) string {
	return prefix + v.String()
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater than o.
func (v Version) Compare(o Version) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, o.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Bump parts accepted by Bump.
const (
	BumpMajor = "major"
	BumpMinor = "minor"
	BumpPatch = "patch"
)

// Bump returns the successor of v for the given part. Lower-order components
// reset to zero, npm-version style.
func (v Version) Bump(part string) (Version, error) {
	switch strings.ToLower(part) {
	case BumpMajor:
		return Version{Major: v.Major + 1}, nil
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, fmt.Errorf("unknown bump part %q: expected major, minor, or patch", part)
	}
}

// IsBumpPart reports whether s names a bumpable component.
func IsBumpPart(s string) bool {
	switch strings.ToLower(s) {
	case BumpMajor, BumpMinor, BumpPatch:
		return true
	}
	return false
}
