// Package manifest reads and rewrites the version field of a project
// manifest file. The rewrite is surgical: only the quoted version triple on
// the matching assignment line changes, every other byte of the file is
// preserved.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/prismforge/capstan/internal/semver"
)

// Format identifies how the version assignment is written in the manifest.
type Format string

const (
	// FormatTOML matches `version = "X.Y.Z"` at the start of a line
	// (Cargo.toml, pyproject.toml and friends).
	FormatTOML Format = "toml"
	// FormatJSON matches `"version": "X.Y.Z"` (package.json and friends).
	FormatJSON Format = "json"
	// FormatAuto picks a format from the file name.
	FormatAuto Format = "auto"
)

var (
	tomlVersionRe = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)"(\d+\.\d+\.\d+)"`)
	jsonVersionRe = regexp.MustCompile(`(?m)^(\s*"version"\s*:\s*)"(\d+\.\d+\.\d+)"`)
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTOML:
		return FormatTOML, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatAuto, "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown manifest format %q: expected toml, json, or auto", s)
}

// DetectFormat resolves FormatAuto against a file name. Unrecognized names
// fall back to TOML, the original manifest style this tool grew up with.
func DetectFormat(format Format, path string) Format {
	if format != FormatAuto {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	}
	if strings.EqualFold(filepath.Base(path), "package.json") {
		return FormatJSON
	}
	return FormatTOML
}

func versionPattern(f Format) *regexp.Regexp {
	if f == FormatJSON {
		return jsonVersionRe
	}
	return tomlVersionRe
}

// Manifest is a handle on a manifest file.
type Manifest struct {
	Path   string
	Format Format
}

// New returns a manifest handle with the format resolved against the path.
func New(path string, format Format) Manifest {
	return Manifest{Path: path, Format: DetectFormat(format, path)}
}

// CurrentVersion reads the manifest and extracts the first version
// assignment matching the manifest's format.
func (m Manifest) CurrentVersion() (semver.Version, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return semver.Version{}, fmt.Errorf("reading manifest %s: %w", m.Path, err)
	}
	return ExtractVersion(string(data), m.Format)
}

// SetVersion rewrites the first matching version assignment to newVersion,
// leaving the rest of the file untouched. The file is read fully and written
// back whole; there is no partial-write guarantee.
func (m Manifest) SetVersion(newVersion semver.Version) error {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", m.Path, err)
	}

	updated, err := ReplaceVersion(string(data), m.Format, newVersion)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", m.Path, err)
	}

	info, err := os.Stat(m.Path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(m.Path, []byte(updated), mode); err != nil {
		return fmt.Errorf("writing manifest %s: %w", m.Path, err)
	}
	return nil
}

// ExtractVersion finds the first version assignment in content and parses it.
func ExtractVersion(content string, format Format) (semver.Version, error) {
	m := versionPattern(format).FindStringSubmatch(content)
	if m == nil {
		return semver.Version{}, fmt.Errorf("no version assignment found (format %s)", format)
	}
	return semver.Parse(m[2])
}

// ReplaceVersion replaces the first version assignment in content with
// newVersion and returns the updated content. Only the quoted triple inside
// the matched assignment changes.
func ReplaceVersion(content string, format Format, newVersion semver.Version) (string, error) {
	re := versionPattern(format)
	loc := re.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", fmt.Errorf("no version assignment found (format %s)", format)
	}

	// loc[4:6] is the span of the captured version digits inside the quotes.
	var b strings.Builder
	b.Grow(len(content) + 8)
	b.WriteString(content[:loc[4]])
	b.WriteString(newVersion.String())
	b.WriteString(content[loc[5]:])
	return b.String(), nil
}
