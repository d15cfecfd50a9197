package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/cslkit/internal/cli/output"
	"github.com/leapstack-labs/cslkit/internal/config"
	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Loader   *csl.Loader
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a loader for the
// configured resource layout. Extra loader options are applied after the
// logger.
func NewCommandContext(cmd *cobra.Command, opts ...csl.Option) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutLoader(cmd)

	opts = append([]csl.Option{csl.WithLogger(cmdCtx.Logger)}, opts...)
	l, err := csl.NewLoader(cmdCtx.Cfg.Resources(), opts...)
	if err != nil {
		return nil, err
	}
	cmdCtx.Loader = l
	return cmdCtx, nil
}

// NewCommandContextWithoutLoader creates a CommandContext without a loader.
// Useful for commands that don't read CSL data.
func NewCommandContextWithoutLoader(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// pluralize returns "1 style" or "2 styles".
func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
