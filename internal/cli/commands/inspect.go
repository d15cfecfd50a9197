package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cslkit/internal/cli/output"
	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/spf13/cobra"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Depth int // Maximum tree depth; 0 is unlimited
}

// InspectAttr is one attribute of an inspected node.
type InspectAttr struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// InspectNode is one element of the typed tree.
type InspectNode struct {
	Tag        string         `json:"tag" yaml:"tag"`
	Type       string         `json:"type" yaml:"type"`
	Line       int            `json:"line" yaml:"line"`
	Column     int            `json:"column" yaml:"column"`
	Attributes []InspectAttr  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Text       string         `json:"text,omitempty" yaml:"text,omitempty"`
	Children   []*InspectNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// InspectOutput is the structured output of the inspect command.
type InspectOutput struct {
	Source      string       `json:"source" yaml:"source"`
	Conformant  bool         `json:"conformant" yaml:"conformant"`
	Diagnostics diag.List    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Root        *InspectNode `json:"root,omitempty" yaml:"root,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <style>",
		Short: "Show the typed node tree of a style",
		Long: `Load a style and print its typed node tree: every element with the node
type it is bound to, its source position and its attributes.

The argument is a style identifier from the styles directory or a path to
a .csl file. Non-conformant styles are still shown, followed by their
diagnostics.`,
		Example: `  # Show the tree of a style
  cslkit inspect apa

  # Only the top two levels
  cslkit inspect apa --depth 2

  # Inspect a file outside the styles directory
  cslkit inspect ./my-style.csl -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Maximum tree depth to show (0 for unlimited)")

	return cmd
}

func runInspect(cmd *cobra.Command, identifier string, opts *InspectOptions) error {
	if opts.Depth < 0 {
		return errors.New("--depth must not be negative")
	}

	cmdCtx, err := NewCommandContext(cmd, csl.WithWarningHandler(func(*csl.Document) {}))
	if err != nil {
		return err
	}
	doc, err := cmdCtx.Loader.LoadStyle(identifier)
	if err != nil {
		return err
	}

	out := InspectOutput{
		Source:      doc.Source.Name(),
		Conformant:  doc.Conformant(),
		Diagnostics: doc.Diagnostics,
		Root:        inspectNode(doc.Root, opts.Depth),
	}
	return reportInspect(cmdCtx.Renderer, out)
}

func reportInspect(r *output.Renderer, out InspectOutput) error {
	if r.EffectiveMode().Structured() {
		return r.Structured(out)
	}

	r.Header(1, out.Source)
	tree := formatTree(out.Root)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println("```")
		r.Printf("%s", tree)
		r.Println("```")
	} else {
		r.Printf("%s", tree)
	}

	if !out.Conformant {
		r.Println("")
		r.Warning(pluralize(len(out.Diagnostics), "diagnostic"))
		for _, d := range out.Diagnostics {
			r.Muted("  " + d.Error())
		}
	}
	return nil
}

// inspectNode converts n and its descendants up to depth levels. A depth of
// zero keeps the whole tree.
func inspectNode(n node.Node, depth int) *InspectNode {
	if n == nil {
		return nil
	}
	in := &InspectNode{
		Tag:    n.Tag(),
		Type:   nodeTypeName(n),
		Line:   n.Line(),
		Column: n.Column(),
		Text:   strings.TrimSpace(n.Text()),
	}
	for _, a := range n.Attrs() {
		in.Attributes = append(in.Attributes, InspectAttr{Name: a.Name, Value: a.Value})
	}
	if depth == 1 {
		return in
	}
	next := 0
	if depth > 1 {
		next = depth - 1
	}
	for _, c := range n.Children() {
		in.Children = append(in.Children, inspectNode(c, next))
	}
	return in
}

// nodeTypeName returns the bound Go type, e.g. "Style" or "Element".
func nodeTypeName(n node.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*node.")
}

// formatTree renders the tree with box-drawing branches:
//
//	style (Style) 2:1 class="in-text"
//	├── info (Info) 3:3
//	│   └── title (Title) 4:5 "Test"
func formatTree(root *InspectNode) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(formatNodeLine(root))
	sb.WriteByte('\n')
	writeChildren(&sb, root.Children, "")
	return sb.String()
}

func writeChildren(sb *strings.Builder, children []*InspectNode, prefix string) {
	for i, c := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(branch)
		sb.WriteString(formatNodeLine(c))
		sb.WriteByte('\n')
		writeChildren(sb, c.Children, prefix+indent)
	}
}

func formatNodeLine(n *InspectNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) %d:%d", n.Tag, n.Type, n.Line, n.Column)
	for _, a := range n.Attributes {
		fmt.Fprintf(&sb, " %s=%q", a.Name, a.Value)
	}
	if n.Text != "" {
		fmt.Fprintf(&sb, " %q", n.Text)
	}
	return sb.String()
}
