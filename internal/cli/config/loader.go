package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in the command context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for a
// config file.
const maxUpwardSearchLevels = 10

var configFileNames = []string{"capstan.yaml", "capstan.yml", ".capstan.yaml"}

// wellKnownManifests are probed, in order, when no manifest is configured.
var wellKnownManifests = []string{"Cargo.toml", "pyproject.toml", "package.json"}

var configFileUsed string

var currentConfig *Config

func configExistsIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a capstan config
// file and returns the directory holding it, or "" if none is found.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load resolves configuration with the precedence (highest first):
// flags > environment (CAPSTAN_*) > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// Project root: explicit config file's directory, else upward search
	// from the working directory, else the working directory itself.
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	projectRoot := cwd
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	} else if root := findProjectRootUpward(cwd); root != "" {
		projectRoot = root
	}

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"branch":          DefaultBranch,
		"tag_prefix":      DefaultTagPrefix,
		"commit_template": DefaultCommitTemplate,
		"manifest_format": "auto",
		"output":          DefaultOutput,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file.
	if cfgFile == "" {
		cfgFile = configExistsIn(projectRoot)
	}
	configFileUsed = cfgFile
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: CAPSTAN_TAG_PREFIX -> tag_prefix.
	if err := k.Load(env.Provider("CAPSTAN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CAPSTAN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, changed-only, kebab-case mapped to snake_case keys.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if cfg.Project == "" {
		cfg.Project = filepath.Base(projectRoot)
	}
	if cfg.Manifest == "" {
		cfg.Manifest = discoverManifest(projectRoot)
	}
	if cfg.Manifest != "" && !filepath.IsAbs(cfg.Manifest) {
		cfg.Manifest = filepath.Join(projectRoot, cfg.Manifest)
	}
	if len(cfg.Checks) == 0 {
		cfg.Checks = defaultChecks(cfg.Manifest)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	currentConfig = &cfg
	return &cfg, nil
}

// Current returns the most recently loaded config, or nil before Load.
func Current() *Config {
	return currentConfig
}

// discoverManifest probes the project root for a well-known manifest.
func discoverManifest(root string) string {
	for _, name := range wellKnownManifests {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return name
		}
	}
	return ""
}

// defaultChecks picks check commands matching the manifest's toolchain.
func defaultChecks(manifestPath string) []string {
	switch filepath.Base(manifestPath) {
	case "Cargo.toml":
		return []string{"cargo check", "cargo test"}
	case "package.json":
		return []string{"npm test"}
	case "pyproject.toml":
		return []string{"python -m pytest"}
	}
	return nil
}

// ConfigFileUsed returns the path of the config file that was loaded, if any.
func ConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key for the logger, shared with the cli
// package to avoid an import cycle.
func LoggerKey() interface{} { return loggerKey{} }

// GetLogger retrieves the logger from the command context, falling back to a
// discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
