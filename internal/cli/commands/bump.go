package commands

import (
	"fmt"
	"path/filepath"

	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/manifest"
	"github.com/prismforge/capstan/internal/semver"
	"github.com/spf13/cobra"
)

// BumpOptions holds options for the bump command.
type BumpOptions struct {
	DryRun bool
}

// NewBumpCommand creates the bump command.
func NewBumpCommand() *cobra.Command {
	opts := &BumpOptions{}
	cmd := &cobra.Command{
		Use:   "bump <major|minor|patch|version>",
		Short: "Rewrite the manifest version without touching git",
		Long: `Bump the version in the project manifest.

The argument is either a bump part (major, minor, patch) or an explicit
semantic version. Only the manifest file changes; committing and tagging is
the release command's job.`,
		Example: `  # 1.2.3 becomes 1.3.0
  capstan bump minor

  # Set an explicit version
  capstan bump 2.0.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, opts, args[0])
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"major", "minor", "patch"}, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the new version without writing the manifest")

	return cmd
}

// BumpOutput is the JSON output for the bump command.
type BumpOutput struct {
	Manifest   string `json:"manifest"`
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

func runBump(cmd *cobra.Command, opts *BumpOptions, arg string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if cfg.Manifest == "" {
		return fmt.Errorf("no version manifest found in %s; set manifest in the config", cfg.ProjectRoot)
	}
	m := manifest.New(cfg.Manifest, manifest.Format(cfg.ManifestFormat))
	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}

	var next semver.Version
	if semver.IsBumpPart(arg) {
		next, err = current.Bump(arg)
		if err != nil {
			return err
		}
	} else {
		next, err = semver.Parse(arg)
		if err != nil {
			return fmt.Errorf(
				"invalid version format %q. Please use major, minor, patch, or semantic versioning (e.g., 1.2.3)", arg)
		}
	}

	if !opts.DryRun {
		if err := m.SetVersion(next); err != nil {
			return err
		}
	}

	if r.Mode() == output.ModeJSON {
		return r.JSON(&BumpOutput{
			Manifest:   cfg.Manifest,
			OldVersion: current.String(),
			NewVersion: next.String(),
			DryRun:     opts.DryRun,
		})
	}
	if opts.DryRun {
		r.Printf("Would update %s from %s to %s\n", filepath.Base(cfg.Manifest), current, next)
		return nil
	}
	r.Success("Updated version in %s from %s to %s", filepath.Base(cfg.Manifest), current, next)
	return nil
}
