package commands

import (
	"log/slog"

	"github.com/prismforge/capstan/internal/cli/config"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/history"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config loaded by the
// root command. Running a command constructor standalone (as tests do) loads
// the config on demand.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.Current()
	if cfg == nil {
		var err error
		cfg, err = config.Load("", cmd.Root().PersistentFlags())
		if err != nil {
			return nil, err
		}
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	if cfg.NoColor {
		r.DisableStyles()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}, nil
}

// openHistory opens the release log configured for the project.
func openHistory(cfg *config.Config) (*history.Store, error) {
	return history.Open(cfg.HistoryDB)
}
