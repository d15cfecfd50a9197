package commands

import (
	"fmt"

	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LocaleInfo describes one locale file.
type LocaleInfo struct {
	Code    string `json:"code" yaml:"code"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Native  string `json:"native,omitempty" yaml:"native,omitempty"`
	Primary bool   `json:"primary" yaml:"primary"`
}

// LocalesOutput is the structured output of the locales command.
type LocalesOutput struct {
	Count   int          `json:"count" yaml:"count"`
	Locales []LocaleInfo `json:"locales" yaml:"locales"`
}

// NewLocalesCommand creates the locales command.
func NewLocalesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List the locales of the locales directory",
		Long: `List every locale file (locales-<code>.xml) found in the locales directory
with its English and native language names. Primary marks the dialect a
bare language falls back to (de → de-DE).`,
		Example: `  # List all locales
  cslkit locales

  # Output as YAML
  cslkit locales -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocales(cmd)
		},
	}
}

func runLocales(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	codes, err := cmdCtx.Loader.AvailableLocales()
	if err != nil {
		return fmt.Errorf("failed to list locales: %w", err)
	}

	infos := make([]LocaleInfo, 0, len(codes))
	for _, code := range codes {
		infos = append(infos, describeLocale(code))
	}

	if r.EffectiveMode().Structured() {
		return r.Structured(LocalesOutput{Count: len(infos), Locales: infos})
	}

	if len(infos) == 0 {
		r.Muted(fmt.Sprintf("No locales found in %s", cmdCtx.Loader.Config().LocalesDir))
		return nil
	}

	r.Header(1, fmt.Sprintf("Locales (%d total)", len(infos)))
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		primary := ""
		if info.Primary {
			primary = "yes"
		}
		rows = append(rows, []string{info.Code, info.Name, info.Native, primary})
	}
	r.Table([]string{"Code", "Language", "Native", "Primary"}, rows)
	return nil
}

func describeLocale(code string) LocaleInfo {
	info := LocaleInfo{Code: code}
	tag, err := language.Parse(code)
	if err != nil {
		return info
	}
	info.Name = display.English.Tags().Name(tag)
	info.Native = display.Self.Name(tag)

	base, _ := tag.Base()
	if dialect, ok := node.PrimaryDialect(base.String()); ok {
		info.Primary = dialect == code
	}
	return info
}
