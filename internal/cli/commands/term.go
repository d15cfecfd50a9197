package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/spf13/cobra"
)

// TermOptions holds options for the term command.
type TermOptions struct {
	Form string // Requested term form
}

// TermOutput is the structured output of the term command.
type TermOutput struct {
	Style          string   `json:"style" yaml:"style"`
	Name           string   `json:"name" yaml:"name"`
	Form           string   `json:"form" yaml:"form"`
	Found          bool     `json:"found" yaml:"found"`
	ResolvedForm   string   `json:"resolved_form,omitempty" yaml:"resolved_form,omitempty"`
	Single         string   `json:"single,omitempty" yaml:"single,omitempty"`
	Multiple       string   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Locale         string   `json:"locale,omitempty" yaml:"locale,omitempty"`
	Inline         bool     `json:"inline" yaml:"inline"`
	LocaleOrder    []string `json:"locale_order" yaml:"locale_order"`
	MissingLocales []string `json:"missing_locales,omitempty" yaml:"missing_locales,omitempty"`
}

// NewTermCommand creates the term command.
func NewTermCommand() *cobra.Command {
	opts := &TermOptions{Form: "long"}
	cmd := &cobra.Command{
		Use:   "term <style> <name>",
		Short: "Look up a localized term through a style's locale fallback",
		Long: `Resolve a term the way a processor would: inline locales of the style
first, then the locale files of the requested locales, their primary
dialects and finally en-US. Missing forms fall back along the CSL form
chain (verb-short → verb → long, symbol → short → long, short → long).

The requested locales come from --locale, a comma-separated list.`,
		Example: `  # Look up "editor" for the default locale
  cslkit term apa editor

  # Short form in German, falling back to English
  cslkit term apa editor --form short --locale de-DE,en-US`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerm(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Form, "form", opts.Form, "Term form (long, short, verb, verb-short, symbol)")
	_ = cmd.RegisterFlagCompletionFunc("form", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"long", "short", "verb", "verb-short", "symbol"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTerm(cmd *cobra.Command, identifier, name string, opts *TermOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	s, err := cmdCtx.Loader.Style(identifier, csl.WithLocale(cmdCtx.Cfg.Locales()...))
	if err != nil {
		return err
	}
	root, ok := s.Node()
	if !ok {
		return fmt.Errorf("%s: root element is not a style", identifier)
	}

	out := TermOutput{
		Style:          s.Document().Source.Name(),
		Name:           name,
		Form:           opts.Form,
		LocaleOrder:    localeOrder(root),
		MissingLocales: root.MissingLocales(),
	}
	if t, ok := root.LookupTerm(name, opts.Form); ok {
		out.Found = true
		out.ResolvedForm = t.Form()
		out.Single = t.Single()
		out.Multiple = t.Multiple()
		if loc, ok := owningLocale(t); ok {
			out.Locale = loc.Lang()
		}
		out.Inline = t.Tree() == s.Document().Tree
	}

	if r.EffectiveMode().Structured() {
		return r.Structured(out)
	}

	if !out.Found {
		r.Warning(fmt.Sprintf("Term %q (%s) not found in %s", name, opts.Form, out.Style))
	} else {
		r.Header(1, fmt.Sprintf("%s (%s)", name, out.ResolvedForm))
		r.KeyValue("Single", out.Single)
		r.KeyValue("Multiple", out.Multiple)
		r.KeyValue("Locale", describeTermSource(out))
	}
	r.KeyValue("Fallback order", joinOrNone(out.LocaleOrder))
	if len(out.MissingLocales) > 0 {
		r.Muted("Missing locale files: " + joinOrNone(out.MissingLocales))
	}
	return nil
}

// localeOrder names each locale of the fallback chain; inline locales
// without xml:lang are shown as "(inline)".
func localeOrder(s *node.Style) []string {
	order := []string{}
	for _, l := range s.Locales() {
		lang := l.Lang()
		switch {
		case l.Tree() == s.Tree() && lang == "":
			lang = "(inline)"
		case l.Tree() == s.Tree():
			lang += " (inline)"
		}
		order = append(order, lang)
	}
	return order
}

// owningLocale returns the locale element that defines t.
func owningLocale(t *node.Term) (*node.Locale, bool) {
	for p := t.Parent(); p != nil; p = p.Parent() {
		if l, ok := p.(*node.Locale); ok {
			return l, true
		}
	}
	return nil, false
}

func describeTermSource(out TermOutput) string {
	lang := out.Locale
	if lang == "" {
		lang = "any language"
	}
	if out.Inline {
		return lang + " (inline)"
	}
	return lang + " (locale file)"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
