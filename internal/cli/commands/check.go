package commands

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/prismforge/capstan/internal/cli/config"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/gitutil"
	"github.com/prismforge/capstan/internal/manifest"
	"github.com/spf13/cobra"
	modsemver "golang.org/x/mod/semver"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the project is ready to release",
		Long: `Run the release preconditions without releasing anything.

Each precondition the release flow enforces is reported individually:
required tools, the release branch, a clean working tree, a parseable
manifest version, and the latest git tag. Failures exit non-zero.`,
		Example: `  # Check release readiness
  capstan check

  # Machine-readable report
  capstan check --output json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

// CheckResult is one precondition verdict.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail"
	Details string `json:"details,omitempty"`
}

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Project string        `json:"project"`
	Results []CheckResult `json:"results"`
	Ready   bool          `json:"ready"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	out := buildCheckOutput(cmd.Context(), cfg)

	if r.Mode() == output.ModeJSON {
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		renderCheckTable(r, out)
	}

	if !out.Ready {
		return fmt.Errorf("project is not ready to release")
	}
	return nil
}

func buildCheckOutput(ctx context.Context, cfg *config.Config) *CheckOutput {
	git := gitutil.Client{Dir: cfg.ProjectRoot}
	var results []CheckResult

	// Required executables.
	for _, tool := range cfg.RequiredTools() {
		res := CheckResult{Name: fmt.Sprintf("%s installed", tool), Status: "pass"}
		if !gitutil.Installed(tool) {
			res.Status = "fail"
			res.Details = fmt.Sprintf("%s not found in PATH", tool)
		}
		results = append(results, res)
	}

	results = append(results, branchCheck(ctx, git, cfg.Branch))
	results = append(results, cleanTreeCheck(ctx, git))

	manifestRes, current := manifestCheck(cfg)
	results = append(results, manifestRes)

	if current != "" {
		results = append(results, tagCheck(ctx, git, cfg.TagPrefix, current))
	}

	ready := true
	for _, res := range results {
		if res.Status == "fail" {
			ready = false
		}
	}
	return &CheckOutput{Project: cfg.Project, Results: results, Ready: ready}
}

func branchCheck(ctx context.Context, git gitutil.Client, want string) CheckResult {
	res := CheckResult{Name: fmt.Sprintf("on %s branch", want)}
	branch, err := git.CurrentBranch(ctx)
	switch {
	case err != nil:
		res.Status = "fail"
		res.Details = err.Error()
	case branch != want:
		res.Status = "fail"
		res.Details = fmt.Sprintf("currently on %s", branch)
	default:
		res.Status = "pass"
	}
	return res
}

func cleanTreeCheck(ctx context.Context, git gitutil.Client) CheckResult {
	res := CheckResult{Name: "clean working tree"}
	dirty, err := git.DirtyFiles(ctx)
	switch {
	case err != nil:
		res.Status = "fail"
		res.Details = err.Error()
	case len(dirty) > 0:
		res.Status = "fail"
		res.Details = fmt.Sprintf("%d uncommitted file(s)", len(dirty))
	default:
		res.Status = "pass"
	}
	return res
}

// manifestCheck verifies the manifest exists and holds a parseable version.
// The version string is returned for the tag comparison.
func manifestCheck(cfg *config.Config) (CheckResult, string) {
	res := CheckResult{Name: "manifest version"}
	if cfg.Manifest == "" {
		res.Status = "fail"
		res.Details = fmt.Sprintf("no version manifest found in %s", cfg.ProjectRoot)
		return res, ""
	}
	m := manifest.New(cfg.Manifest, manifest.Format(cfg.ManifestFormat))
	current, err := m.CurrentVersion()
	if err != nil {
		res.Status = "fail"
		res.Details = err.Error()
		return res, ""
	}
	res.Status = "pass"
	res.Details = current.String()
	return res, current.String()
}

// tagCheck compares the latest git tag against the manifest version. A tag
// ahead of the manifest usually means a release commit was never pulled.
func tagCheck(ctx context.Context, git gitutil.Client, prefix, current string) CheckResult {
	res := CheckResult{Name: "latest tag"}
	tag, err := git.LatestTag(ctx)
	switch {
	case err != nil:
		res.Status = "warn"
		res.Details = err.Error()
	case tag == "":
		res.Status = "pass"
		res.Details = "no tags yet"
	case !modsemver.IsValid("v" + strippedTag(tag, prefix)):
		res.Status = "warn"
		res.Details = fmt.Sprintf("%s is not a version tag", tag)
	case modsemver.Compare("v"+strippedTag(tag, prefix), "v"+current) > 0:
		res.Status = "warn"
		res.Details = fmt.Sprintf("%s is ahead of manifest version %s", tag, current)
	default:
		res.Status = "pass"
		res.Details = tag
	}
	return res
}

func strippedTag(tag, prefix string) string {
	if prefix != "" && len(tag) >= len(prefix) && tag[:len(prefix)] == prefix {
		return tag[len(prefix):]
	}
	return tag
}

func renderCheckTable(r *output.Renderer, out *CheckOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(table.Row{"Check", "Status", "Details"})
	for _, res := range out.Results {
		t.AppendRow(table.Row{res.Name, formatCheckStatus(r, res.Status), res.Details})
	}
	r.Printf("\nRelease readiness for %s\n", out.Project)
	t.Render()
	// A failure is reported once, through the returned error.
	if out.Ready {
		r.Success("Ready to release")
	}
}

func formatCheckStatus(r *output.Renderer, status string) string {
	if !r.Styled() {
		return status
	}
	switch status {
	case "pass":
		return text.FgGreen.Sprint("pass")
	case "warn":
		return text.FgYellow.Sprint("warn")
	default:
		return text.FgRed.Sprint("fail")
	}
}
