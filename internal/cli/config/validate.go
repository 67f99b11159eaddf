package config

import (
	"fmt"
	"strings"

	"github.com/prismforge/capstan/internal/manifest"
)

// Validate checks the invariants a loaded config must satisfy before any
// command runs against it.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Branch) == "" {
		return fmt.Errorf("invalid config: branch must not be empty")
	}
	if _, err := manifest.ParseFormat(cfg.ManifestFormat); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !strings.Contains(cfg.CommitTemplate, "{version}") {
		return fmt.Errorf("invalid config: commit_template must contain {version}")
	}
	if strings.ContainsAny(cfg.TagPrefix, " \t\n") {
		return fmt.Errorf("invalid config: tag_prefix must not contain whitespace")
	}
	for _, check := range cfg.Checks {
		if strings.TrimSpace(check) == "" {
			return fmt.Errorf("invalid config: empty check command")
		}
	}
	return nil
}
