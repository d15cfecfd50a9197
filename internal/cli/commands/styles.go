package commands

import (
	"fmt"

	"github.com/leapstack-labs/cslkit/internal/registry"
	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/spf13/cobra"
)

// StylesOptions holds options for the styles command.
type StylesOptions struct {
	Independent bool   // Only independent styles
	Dependent   bool   // Only dependent styles
	Parent      string // Only dependents of this style
}

// StylesOutput is the structured output of the styles command.
type StylesOutput struct {
	Count  int               `json:"count" yaml:"count"`
	Styles []*registry.Entry `json:"styles" yaml:"styles"`
}

// NewStylesCommand creates the styles command.
func NewStylesCommand() *cobra.Command {
	opts := &StylesOptions{}
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List the styles of the styles directory",
		Long: `List every style found in the styles directory with its title, citation
class and, for dependent styles, the independent parent it renders through.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)
  - JSON/YAML: Machine-readable catalog`,
		Example: `  # List all styles
  cslkit styles

  # List dependent styles of APA
  cslkit styles --parent apa

  # Output as JSON
  cslkit styles --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStyles(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Independent, "independent", false, "Only list independent styles")
	cmd.Flags().BoolVar(&opts.Dependent, "dependent", false, "Only list dependent styles")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "Only list dependents of the given style")
	cmd.MarkFlagsMutuallyExclusive("independent", "dependent", "parent")

	return cmd
}

func runStyles(cmd *cobra.Command, opts *StylesOptions) error {
	// Diagnostics are summarized per style; skip the per-load warning.
	cmdCtx, err := NewCommandContext(cmd, csl.WithWarningHandler(func(*csl.Document) {}))
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	reg, err := registry.Build(cmd.Context(), cmdCtx.Loader, cmdCtx.Cfg.Concurrency)
	if reg == nil {
		return err
	}
	if err != nil {
		cmdCtx.Logger.Warn("some styles could not be loaded", "error", err)
	}

	entries, err := filterStyles(reg, opts)
	if err != nil {
		return err
	}

	if r.EffectiveMode().Structured() {
		return r.Structured(StylesOutput{Count: len(entries), Styles: entries})
	}

	if len(entries) == 0 {
		r.Muted(fmt.Sprintf("No styles found in %s", cmdCtx.Loader.Config().StylesDir))
		return nil
	}

	r.Header(1, fmt.Sprintf("Styles (%d total)", len(entries)))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		parent := e.Parent
		if p, ok := reg.Parent(e.ID); ok {
			parent = p.ID
		}
		status := "ok"
		if !e.Conformant() {
			status = pluralize(e.Diagnostics, "diagnostic")
		}
		rows = append(rows, []string{e.ID, e.Title, e.Class, parent, status})
	}
	r.Table([]string{"ID", "Title", "Class", "Parent", "Status"}, rows)
	return nil
}

func filterStyles(reg *registry.StyleRegistry, opts *StylesOptions) ([]*registry.Entry, error) {
	if opts.Parent != "" {
		id, ok := reg.Resolve(opts.Parent)
		if !ok {
			return nil, fmt.Errorf("unknown parent style %q", opts.Parent)
		}
		return reg.Dependents(id), nil
	}

	var entries []*registry.Entry
	for _, e := range reg.All() {
		switch {
		case opts.Independent && e.Dependent():
			continue
		case opts.Dependent && !e.Dependent():
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
