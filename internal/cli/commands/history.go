package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/history"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	All   bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past releases recorded by this machine",
		Long: `List releases from the local release log.

Every successful release is appended to a SQLite log under the operator's
home directory. By default only the current project's releases are shown.`,
		Example: `  # Last 20 releases of this project
  capstan history

  # Releases of every project, machine-readable
  capstan history --all --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of releases to show")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show releases of every project")

	return cmd
}

// HistoryEntry is the JSON output for one recorded release.
type HistoryEntry struct {
	Project     string    `json:"project"`
	Version     string    `json:"version"`
	PrevVersion string    `json:"prev_version,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	project := cfg.Project
	if opts.All {
		project = ""
	}
	releases, err := store.List(cmd.Context(), project, opts.Limit)
	if err != nil {
		return err
	}

	if r.Mode() == output.ModeJSON {
		entries := make([]HistoryEntry, 0, len(releases))
		for _, rel := range releases {
			entries = append(entries, HistoryEntry{
				Project:     rel.Project,
				Version:     rel.Version,
				PrevVersion: rel.PrevVersion,
				Branch:      rel.Branch,
				Tag:         rel.Tag,
				Commit:      rel.Commit,
				DurationMS:  rel.Duration.Milliseconds(),
				CreatedAt:   rel.CreatedAt,
			})
		}
		return r.JSON(entries)
	}

	if len(releases) == 0 {
		r.Warning("No releases recorded yet")
		return nil
	}

	renderHistoryTable(r, releases, opts.All)
	return nil
}

func renderHistoryTable(r *output.Renderer, releases []history.Release, withProject bool) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())

	header := table.Row{"Version", "Previous", "Tag", "Branch", "Commit", "When"}
	if withProject {
		header = append(table.Row{"Project"}, header...)
	}
	t.AppendHeader(header)

	for _, rel := range releases {
		row := table.Row{
			rel.Version,
			rel.PrevVersion,
			rel.Tag,
			rel.Branch,
			shortCommit(rel.Commit),
			rel.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
		if withProject {
			row = append(table.Row{rel.Project}, row...)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func shortCommit(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
