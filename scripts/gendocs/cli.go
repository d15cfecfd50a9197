package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/cslkit/internal/cli"
	"github.com/leapstack-labs/cslkit/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes the command reference as a single page: an
// overview of the root command followed by one section per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	// cobra adds help lazily; do it now so it is skipped like the others.
	root.InitDefaultHelpCmd()

	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line reference for cslkit")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", root.Name()+" <command> [flags]")

	cmds := documented(root)
	var rows [][]string
	for _, cmd := range cmds {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](#%s)", InlineCode(cmd.Name()), anchor(cmd)),
			cleanDescription(cmd.Short),
		})
	}
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Flags")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	var env [][]string
	for _, f := range getConfigSchema() {
		env = append(env, []string{InlineCode(config.EnvPrefix + strings.ToUpper(f.Name)), InlineCode(f.Flag)})
	}
	w.Header(2, "Environment")
	w.Paragraph("Each global flag has an environment variable. Flags win over the environment, the environment over " +
		InlineCode(config.ConfigFileName) + ".")
	w.Table([]string{"Variable", "Flag"}, env)

	w.Header(2, "Exit Status")
	w.Paragraph(InlineCode("0") + " on success. " + InlineCode("1") + " on any error, including " +
		InlineCode("validate") + " finding a document that does not conform.")

	for _, cmd := range cmds {
		writeCommand(w, cmd, 2)
	}

	filename := filepath.Join(outDir, "index.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md (%d commands)", len(cmds))
	return nil
}

func writeCommand(w *MarkdownWriter, cmd *cobra.Command, level int) {
	w.Header(level, cmd.CommandPath())

	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		w.Paragraph("Aliases: " + InlineCode(strings.Join(cmd.Aliases, "`, `")))
	}
	if cmd.HasLocalFlags() {
		w.Table(flagHeaders, flagRows(cmd.LocalFlags()))
	}
	if cmd.Example != "" {
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	for _, sub := range documented(cmd) {
		writeCommand(w, sub, min(level+1, 4))
	}
}

// documented returns the subcommands that appear in the reference.
func documented(cmd *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" {
			continue
		}
		cmds = append(cmds, sub)
	}
	return cmds
}

// anchor is the heading id a markdown renderer derives from the command path.
func anchor(cmd *cobra.Command) string {
	return strings.ReplaceAll(strings.ToLower(cmd.CommandPath()), " ", "-")
}

var flagHeaders = []string{"Flag", "Default", "Description"}

func flagRows(fs *pflag.FlagSet) [][]string {
	var rows [][]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		def := "-"
		if f.DefValue != "" && f.DefValue != "[]" {
			def = InlineCode(f.DefValue)
		}
		rows = append(rows, []string{name, def, cleanDescription(f.Usage)})
	})
	return rows
}

// dedent strips the indentation of the first non-blank line from every line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	var indent string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			break
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}
