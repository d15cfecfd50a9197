package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/cslkit/internal/cli/output"
	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrNotConformant is returned by validate when a document fails to load
// or does not conform to the CSL grammar.
var ErrNotConformant = errors.New("documents do not conform to the CSL grammar")

// Document kinds.
const (
	KindStyle  = "style"
	KindLocale = "locale"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Locales  bool          // Also validate locale files
	Watch    bool          // Re-validate on change
	Debounce time.Duration // Watch debounce interval
}

// ValidationTarget names one document to validate.
type ValidationTarget struct {
	Kind string `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
}

// ValidationResult is the outcome of validating one document.
type ValidationResult struct {
	ValidationTarget `yaml:",inline"`
	Path             string    `json:"path,omitempty" yaml:"path,omitempty"`
	Conformant       bool      `json:"conformant" yaml:"conformant"`
	Error            string    `json:"error,omitempty" yaml:"error,omitempty"`
	Diagnostics      diag.List `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// ValidateSummary counts validation outcomes.
type ValidateSummary struct {
	Documents  int `json:"documents" yaml:"documents"`
	Conformant int `json:"conformant" yaml:"conformant"`
	Failed     int `json:"failed" yaml:"failed"`
}

// ValidateOutput is the structured output of the validate command.
type ValidateOutput struct {
	Summary ValidateSummary    `json:"summary" yaml:"summary"`
	Results []ValidationResult `json:"results" yaml:"results"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{Debounce: defaultDebounce}
	cmd := &cobra.Command{
		Use:   "validate [style...]",
		Short: "Validate styles and locales against the CSL grammar",
		Long: `Load styles (and optionally locale files) and report every parse and
grammar diagnostic. Without arguments all styles of the styles directory
are validated. Documents are loaded concurrently, bounded by --concurrency.

The command exits non-zero when a document fails to load or does not
conform. With --watch it keeps running and re-validates files as they change.`,
		Example: `  # Validate all styles
  cslkit validate

  # Validate two styles and every locale file
  cslkit validate apa chicago-author-date --locales

  # Re-validate on every save
  cslkit validate --watch

  # Machine-readable report
  cslkit validate -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Locales, "locales", false, "Also validate locale files")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch the data directories and re-validate on change")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	// Diagnostics are reported by the command; skip the per-load warning.
	cmdCtx, err := NewCommandContext(cmd, csl.WithWarningHandler(func(*csl.Document) {}))
	if err != nil {
		return err
	}
	l := cmdCtx.Loader
	r := cmdCtx.Renderer

	targets, err := validationTargets(l, args, opts.Locales)
	if err != nil {
		return err
	}

	results, err := validateAll(cmd.Context(), l, targets, cmdCtx.Cfg.Concurrency)
	if err != nil {
		return err
	}
	summary := summarize(results)
	if err := reportValidation(r, summary, results); err != nil {
		return err
	}

	if opts.Watch {
		return watchValidate(cmd.Context(), cmdCtx, opts)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d %w", summary.Failed, summary.Documents, ErrNotConformant)
	}
	return nil
}

// validationTargets lists the explicit styles, or every discovered style,
// plus every locale when includeLocales is set.
func validationTargets(l *csl.Loader, styles []string, includeLocales bool) ([]ValidationTarget, error) {
	if len(styles) == 0 {
		ids, err := l.AvailableStyles()
		if err != nil {
			return nil, fmt.Errorf("failed to list styles: %w", err)
		}
		styles = ids
	}

	targets := make([]ValidationTarget, 0, len(styles))
	for _, id := range styles {
		targets = append(targets, ValidationTarget{Kind: KindStyle, ID: id})
	}

	if includeLocales {
		codes, err := l.AvailableLocales()
		if err != nil {
			return nil, fmt.Errorf("failed to list locales: %w", err)
		}
		for _, code := range codes {
			targets = append(targets, ValidationTarget{Kind: KindLocale, ID: code})
		}
	}
	return targets, nil
}

// validateAll validates targets concurrently. Results keep target order.
func validateAll(ctx context.Context, l *csl.Loader, targets []ValidationTarget, concurrency int) ([]ValidationResult, error) {
	results := make([]ValidationResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = validateOne(l, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func validateOne(l *csl.Loader, target ValidationTarget) ValidationResult {
	res := ValidationResult{ValidationTarget: target}

	var (
		doc *csl.Document
		err error
	)
	switch target.Kind {
	case KindLocale:
		var loc *csl.Locale
		if loc, err = l.Locale(target.ID); err == nil {
			doc = loc.Document()
		}
	default:
		doc, err = l.LoadStyle(target.ID)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Path = doc.Source.Path()
	res.Conformant = doc.Conformant()
	res.Diagnostics = doc.Diagnostics
	return res
}

func summarize(results []ValidationResult) ValidateSummary {
	s := ValidateSummary{Documents: len(results)}
	for _, res := range results {
		if res.Conformant {
			s.Conformant++
		} else {
			s.Failed++
		}
	}
	return s
}

func reportValidation(r *output.Renderer, summary ValidateSummary, results []ValidationResult) error {
	if r.EffectiveMode().Structured() {
		return r.Structured(ValidateOutput{Summary: summary, Results: results})
	}

	for _, res := range results {
		name := res.Kind + " " + res.ID
		switch {
		case res.Error != "":
			r.StatusLine(name, "error", res.Error)
		case res.Conformant:
			r.StatusLine(name, "success", "")
		default:
			r.StatusLine(name, "warning", pluralize(len(res.Diagnostics), "diagnostic"))
			for _, d := range res.Diagnostics {
				r.Muted("    " + d.Error())
			}
		}
	}

	r.Println("")
	if summary.Failed == 0 {
		r.Success(fmt.Sprintf("All %s conform", pluralize(summary.Documents, "document")))
	} else {
		r.Warning(fmt.Sprintf("%d of %s do not conform", summary.Failed, pluralize(summary.Documents, "document")))
	}
	return nil
}

// watchValidate re-validates changed styles and locales until the command
// context is cancelled.
func watchValidate(ctx context.Context, cmdCtx *CommandContext, opts *ValidateOptions) error {
	l := cmdCtx.Loader
	r := cmdCtx.Renderer
	rc := l.Config()

	dirs := []string{rc.StylesDir}
	if opts.Locales {
		dirs = append(dirs, rc.LocalesDir)
	}

	w := &docWatcher{
		dirs:     dirs,
		debounce: opts.Debounce,
		logger:   cmdCtx.Logger,
		onChange: func(paths []string) {
			targets := targetsForPaths(paths, opts.Locales)
			if len(targets) == 0 {
				return
			}
			results, err := validateAll(ctx, l, targets, cmdCtx.Cfg.Concurrency)
			if err != nil {
				cmdCtx.Logger.Debug("validation interrupted", "error", err)
				return
			}
			_ = reportValidation(r, summarize(results), results)
		},
	}

	if !r.EffectiveMode().Structured() {
		r.Muted("Watching for changes (Ctrl+C to stop)...")
	}
	return w.run(ctx)
}

func targetsForPaths(paths []string, includeLocales bool) []ValidationTarget {
	var targets []ValidationTarget
	for _, p := range paths {
		if id, ok := resource.StyleID(p); ok {
			targets = append(targets, ValidationTarget{Kind: KindStyle, ID: id})
			continue
		}
		if code, ok := resource.LocaleCode(p); ok && includeLocales {
			targets = append(targets, ValidationTarget{Kind: KindLocale, ID: code})
		}
	}
	return targets
}
