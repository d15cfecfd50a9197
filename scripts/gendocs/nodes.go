package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/schema"
)

// generateNodeDocs generates the node type reference: which Go type each
// CSL element is bound to, and which grammar elements stay generic.
func generateNodeDocs(outDir string) error {
	log.Printf("Generating node docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	grammar := make(map[string]bool)
	for _, tag := range schema.Default().Elements() {
		grammar[tag] = true
	}

	variants := node.Variants()
	sort.Slice(variants, func(i, j int) bool { return variants[i].Tag() < variants[j].Tag() })

	w := NewMarkdownWriter()
	w.Frontmatter("Node Types", "Typed nodes of the CSL document tree")
	w.GeneratedMarker()

	w.Header(1, "Node Types")
	w.Paragraph("Every element of a style or locale is built as a typed node. " +
		"The tag is derived from the type name (" + InlineCode("DatePart") + " binds " + InlineCode("date-part") + "). " +
		"Elements without a binding become a generic " + InlineCode("node.Element") + ".")

	w.Header(2, "Bound Elements")
	headers := []string{"Element", "Node Type", "In Grammar"}
	var rows [][]string
	bound := make(map[string]bool, len(variants))
	for _, v := range variants {
		tag := v.Tag()
		bound[tag] = true
		inGrammar := "no"
		if grammar[tag] {
			inGrammar = "yes"
		}
		rows = append(rows, []string{InlineCode(tag), InlineCode(nodeTypeName(v.New())), inGrammar})
	}
	w.Table(headers, rows)

	var generic []string
	for tag := range grammar {
		if !bound[tag] {
			generic = append(generic, InlineCode(tag))
		}
	}
	if len(generic) > 0 {
		sort.Strings(generic)
		w.Header(2, "Generic Elements")
		w.Paragraph("These grammar elements have no dedicated type and are built as " + InlineCode("node.Element") + ":")
		w.BulletList(generic)
	}

	filename := filepath.Join(outDir, "nodes.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated nodes.md")
	return nil
}

func nodeTypeName(n node.Node) string {
	return "node." + strings.TrimPrefix(fmt.Sprintf("%T", n), "*node.")
}
