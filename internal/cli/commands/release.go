package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/prismforge/capstan/internal/banner"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/release"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ReleaseOptions holds options for the release command.
type ReleaseOptions struct {
	DryRun     bool
	SkipChecks bool
	NoBanner   bool
}

// NewReleaseCommand creates the release command.
func NewReleaseCommand() *cobra.Command {
	opts := &ReleaseOptions{}
	cmd := &cobra.Command{
		Use:   "release [version]",
		Short: "Cut a release: bump the manifest, run checks, commit, tag, push",
		Long: `Run the full release flow for the current project.

The flow verifies you are on the release branch with a clean working tree,
rewrites the version in the manifest, runs the configured checks, then
commits, tags, and pushes. Without a version argument you are prompted for
one. Every failure aborts the release.`,
		Example: `  # Release interactively
  capstan release

  # Release a specific version without prompts
  capstan release 1.3.0 --yes

  # See what would happen
  capstan release 1.3.0 --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) > 0 {
				version = args[0]
			}
			return runRelease(cmd, opts, version)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Walk the flow without writing files or touching git")
	cmd.Flags().BoolVar(&opts.SkipChecks, "skip-checks", false, "Skip the configured check commands")
	cmd.Flags().BoolVar(&opts.NoBanner, "no-banner", false, "Suppress the startup banner")

	return cmd
}

// ReleaseOutput is the JSON output for the release command.
type ReleaseOutput struct {
	Project    string `json:"project"`
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
	Branch     string `json:"branch"`
	Tag        string `json:"tag"`
	Commit     string `json:"commit,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

func runRelease(cmd *cobra.Command, opts *ReleaseOptions, version string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if !opts.NoBanner && r.Mode() != output.ModeJSON {
		printBanner(r, cfg.NoColor)
	}

	store, err := openHistory(cfg)
	if err != nil {
		r.Warning("Release history unavailable: %v", err)
	} else {
		defer store.Close()
	}

	flow := release.New(cfg, r, store)
	res, err := flow.Run(cmd.Context(), release.Options{
		Version:    version,
		DryRun:     opts.DryRun,
		SkipChecks: opts.SkipChecks,
		Yes:        cfg.Yes,
	})
	if err != nil {
		return err
	}

	if r.Mode() == output.ModeJSON {
		return r.JSON(&ReleaseOutput{
			Project:    res.Project,
			OldVersion: res.OldVersion.String(),
			NewVersion: res.NewVersion.String(),
			Branch:     res.Branch,
			Tag:        res.Tag,
			Commit:     res.Commit,
			DurationMS: res.Duration.Milliseconds(),
			DryRun:     res.DryRun,
		})
	}
	if cfg.Verbose {
		r.Printf("Completed in %s\n", res.Duration.Round(time.Millisecond))
	}
	return nil
}

// printBanner draws the startup banner. A terminal narrower than the banner
// gets a plain one-line header instead.
func printBanner(r *output.Renderer, noColor bool) {
	bannerOpts := banner.Options{NoColor: noColor || !r.Styled()}
	if f, ok := r.Writer().(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w < 80 {
			fmt.Fprintln(r.Writer(), "⚓ capstan release manager")
			return
		}
	}
	fmt.Fprintln(r.Writer(), banner.Render(bannerOpts))
}
