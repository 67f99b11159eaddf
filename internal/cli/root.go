// Package cli provides the command-line interface for capstan.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prismforge/capstan/internal/cli/commands"
	"github.com/prismforge/capstan/internal/cli/config"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "capstan",
		Short: "Capstan - Release Manager",
		Long: `Capstan automates cutting releases of versioned projects.

It bumps the semantic version in your project manifest, runs your build and
test checks, then commits, tags, and pushes, keeping a local log of every
release. Configuration comes from capstan.yaml, environment variables, and
flags.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			mode := output.Mode(cfg.Output)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			if cfg.NoColor {
				renderer.DisableStyles()
			}
			ctx = context.WithValue(ctx, rendererKey{}, renderer)

			// Verbose runs get a real logger; everything else discards.
			logger := slog.New(slog.DiscardHandler)
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			}
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.ConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Release manager for versioned projects
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./capstan.yaml)")
	rootCmd.PersistentFlags().String("manifest", "", "Path to the version manifest")
	rootCmd.PersistentFlags().String("manifest-format", "", "Manifest format (auto|toml|json)")
	rootCmd.PersistentFlags().String("branch", "", "Branch releases are cut from")
	rootCmd.PersistentFlags().String("remote", "", "Git remote to push to")
	rootCmd.PersistentFlags().String("tag-prefix", "", "Prefix for release tags")
	rootCmd.PersistentFlags().String("history-db", "", "Path to the release log database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every confirmation prompt")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for manifest-format flag
	_ = rootCmd.RegisterFlagCompletionFunc("manifest-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "toml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewReleaseCommand())
	rootCmd.AddCommand(commands.NewBumpCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Branch:         config.DefaultBranch,
		TagPrefix:      config.DefaultTagPrefix,
		CommitTemplate: config.DefaultCommitTemplate,
		Output:         config.DefaultOutput,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for capstan.

To load completions:

Bash:
  $ source <(capstan completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ capstan completion bash > /etc/bash_completion.d/capstan
  # macOS:
  $ capstan completion bash > $(brew --prefix)/etc/bash_completion.d/capstan

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ capstan completion zsh > "${fpath[1]}/_capstan"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ capstan completion fish | source

  # To load completions for each session, execute once:
  $ capstan completion fish > ~/.config/fish/completions/capstan.fish

PowerShell:
  PS> capstan completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> capstan completion powershell > capstan.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
