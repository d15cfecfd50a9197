// Package cli provides the command-line interface for cslkit.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/cslkit/internal/cli/commands"
	"github.com/leapstack-labs/cslkit/internal/cli/output"
	"github.com/leapstack-labs/cslkit/internal/config"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "cslkit",
		Short: "cslkit - Citation Style Language toolkit",
		Long: `cslkit loads Citation Style Language (CSL) styles and locale files into
typed document trees, validates them against the CSL grammar and answers
questions about them: which styles depend on which, what a term resolves
to through the locale fallback chain, what a style's node tree looks like.

Resources are found below a data directory (csl/styles, csl/locales and
csl/schema/csl.yaml) unless the directories are given explicitly.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose && cfg.ConfigFile != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.ConfigFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Citation Style Language toolkit built with Go
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./cslkit.yaml, searched upward)")
	flags.String("data-dir", "", "Data root holding csl/styles, csl/locales and csl/schema")
	flags.String("schema", "", "Path to the CSL grammar file (default: embedded grammar)")
	flags.String("locales-dir", "", "Path to the locales directory")
	flags.String("styles-dir", "", "Path to the styles directory")
	flags.StringP("locale", "l", "", "Preferred locales, comma separated (e.g. de-DE,en-US)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	flags.IntP("concurrency", "j", 0, "Number of documents loaded in parallel")
	flags.BoolP("verbose", "v", false, "Verbose output")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("locale", completeLocales)

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewStylesCommand())
	rootCmd.AddCommand(commands.NewLocalesCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewTermCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// completeLocales offers the locale codes of the configured locales
// directory.
func completeLocales(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load("", cmd.Root().PersistentFlags())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	codes, err := resource.DiscoverLocales(cfg.Resources().LocalesDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return codes, cobra.ShellCompDirectiveNoFileComp
}

// Execute runs the root command.
func Execute() error {
	// Interrupts cancel the command context so watch mode can exit cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		r := output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
		r.Error(err.Error())
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cslkit.

To load completions:

Bash:
  $ source <(cslkit completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cslkit completion bash > /etc/bash_completion.d/cslkit
  # macOS:
  $ cslkit completion bash > $(brew --prefix)/etc/bash_completion.d/cslkit

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cslkit completion zsh > "${fpath[1]}/_cslkit"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ cslkit completion fish | source

  # To load completions for each session, execute once:
  $ cslkit completion fish > ~/.config/fish/completions/cslkit.fish

PowerShell:
  PS> cslkit completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> cslkit completion powershell > cslkit.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
