package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/cslkit/internal/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Flag        string
	Type        string
	Default     string
	Description string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/config/types.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "data_dir", Flag: "--data-dir", Type: "string", Default: config.DefaultDataDir, Description: "Data root holding csl/styles, csl/locales and csl/schema/csl.yaml"},
		{Name: "schema_path", Flag: "--schema", Type: "string", Description: "Grammar file; the embedded grammar is used when it does not exist"},
		{Name: "locales_dir", Flag: "--locales-dir", Type: "string", Description: "Locales directory (overrides data_dir)"},
		{Name: "styles_dir", Flag: "--styles-dir", Type: "string", Description: "Styles directory (overrides data_dir)"},
		{Name: "locale", Flag: "--locale", Type: "string", Default: config.DefaultLocale, Description: "Preferred locales, comma separated, most preferred first"},
		{Name: "log_level", Flag: "--log-level", Type: "string", Default: config.DefaultLogLevel, Description: "Log level: debug, info, warn, error"},
		{Name: "output", Flag: "--output", Type: "string", Default: config.DefaultOutput, Description: "Output format: " + strings.Join(config.OutputFormats, ", ")},
		{Name: "concurrency", Flag: "--concurrency", Type: "int", Default: "min(CPUs, 8)", Description: "Number of documents loaded in parallel"},
		{Name: "verbose", Flag: "--verbose", Type: "bool", Default: "false", Description: "Verbose output (forces debug logging)"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "cslkit configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("cslkit reads %s (or %s) from the working directory or the nearest parent directory holding one.",
		InlineCode(config.ConfigFileName), InlineCode(config.ConfigFileNameAlt)))

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		InlineCode(config.EnvPrefix+"*") + " environment variables",
		"The config file",
		"Built-in defaults",
	})

	w.Header(2, "Fields")
	headers := []string{"Field", "Flag", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{
			InlineCode(f.Name),
			InlineCode(f.Flag),
			f.Type,
			InlineCode(defVal),
			f.Description,
		})
	}
	w.Table(headers, rows)

	w.Paragraph("Relative paths in the config file resolve against the directory holding it. Relative paths given as flags resolve against the working directory.")

	// Full example
	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# cslkit.yaml

# Resource layout
data_dir: ./vendor/csl
# styles_dir: ./styles
# locales_dir: ./locales
# schema_path: ./csl.yaml

# Locale fallback, most preferred first
locale: de-DE,en-US

log_level: info
output: auto
concurrency: 4`)

	// Write file
	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
