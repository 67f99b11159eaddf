// Package config loads capstan configuration from file, environment, and
// flags with koanf.
package config

import "strings"

// Defaults for configuration values.
const (
	DefaultBranch         = "main"
	DefaultTagPrefix      = "v"
	DefaultCommitTemplate = ":rocket: Release version {version}"
	DefaultOutput         = "auto"
)

// Config is the resolved capstan configuration.
type Config struct {
	// Project is the display name used in commit context and the release
	// history. Defaults to the project root directory name.
	Project string `koanf:"project"`

	// Manifest is the path to the version manifest, relative to the project
	// root. Empty means discover a well-known manifest in the root.
	Manifest string `koanf:"manifest"`

	// ManifestFormat is toml, json, or auto.
	ManifestFormat string `koanf:"manifest_format"`

	// Branch is the only branch releases may be cut from.
	Branch string `koanf:"branch"`

	// Remote passed to git push; empty uses git's default.
	Remote string `koanf:"remote"`

	// TagPrefix is prepended to the version when tagging.
	TagPrefix string `koanf:"tag_prefix"`

	// CommitTemplate is the release commit message; "{version}" expands to
	// the new version.
	CommitTemplate string `koanf:"commit_template"`

	// Checks are the commands run before committing. Empty derives a
	// toolchain-appropriate default from the manifest name.
	Checks []string `koanf:"checks"`

	// HistoryDB is the release log path; empty uses ~/.capstan/history.db.
	HistoryDB string `koanf:"history_db"`

	Output  string `koanf:"output"`
	Verbose bool   `koanf:"verbose"`
	NoColor bool   `koanf:"no_color"`
	Yes     bool   `koanf:"yes"`

	// ProjectRoot is the directory the config was anchored to.
	ProjectRoot string `koanf:"-"`
}

// CommitMessage renders the commit template for a version string.
func (c *Config) CommitMessage(version string) string {
	return strings.ReplaceAll(c.CommitTemplate, "{version}", version)
}

// RequiredTools returns the external executables the release flow shells out
// to: git plus the leading word of every check command.
func (c *Config) RequiredTools() []string {
	tools := []string{"git"}
	seen := map[string]bool{"git": true}
	for _, line := range c.Checks {
		fields := strings.Fields(line)
		if len(fields) == 0 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		tools = append(tools, fields[0])
	}
	return tools
}
