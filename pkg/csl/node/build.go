package node

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"golang.org/x/net/html/charset"
)

// Tree is a parsed CSL document.
type Tree struct {
	Root      Node
	Namespace string

	locales LocaleSource
}

// SetLocaleSource attaches the source used to load locale files during
// locale prioritization.
func (t *Tree) SetLocaleSource(src LocaleSource) { t.locales = src }

// LocaleSource returns the attached locale source, if any.
func (t *Tree) LocaleSource() LocaleSource { return t.locales }

// Build parses XML from r into a typed tree, instantiating each element
// through the binding table as it is encountered. Comments, processing
// instructions and directives are dropped; external entities are never
// resolved. Syntax errors do not abort the build: they are returned as
// diagnostics and the partial tree is kept. Root is nil only when no element
// was read at all.
func Build(r io.Reader, table *Table) (*Tree, diag.List) {
	if table == nil {
		table = DefaultTable()
	}
	tree := &Tree{Namespace: table.Namespace()}

	d := xml.NewDecoder(r)
	d.Strict = true
	d.CharsetReader = charset.NewReaderLabel

	var (
		diags diag.List
		stack []Node
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				line, col := d.InputPos()
				diags = append(diags, diag.Diagnostic{
					Code:    diag.CodeXMLParse,
					Message: fmt.Sprintf("unexpected end of input, %d element(s) left open", len(stack)),
					Path:    Path(stack[len(stack)-1]),
					Line:    line,
					Column:  col,
				})
			}
			break
		}
		if err != nil {
			line, col := d.InputPos()
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				line = syn.Line
			}
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeXMLParse,
				Message: err.Error(),
				Line:    line,
				Column:  col,
			})
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, col := d.InputPos()
			if len(stack) == 0 && tree.Root != nil {
				diags = append(diags, diag.Diagnostic{
					Code:    diag.CodeExtraRoot,
					Message: fmt.Sprintf("element %q after the document element ignored", t.Name.Local),
					Line:    line,
					Column:  col,
				})
				if err := d.Skip(); err != nil {
					diags = append(diags, diag.Diagnostic{Code: diag.CodeXMLParse, Message: err.Error(), Line: line})
					return tree, diags
				}
				continue
			}

			n := table.New(t.Name.Space, t.Name.Local)
			e := n.element()
			e.space = t.Name.Space
			e.tag = t.Name.Local
			e.attrs = convertAttrs(t.Attr)
			e.line, e.column = line, col
			e.tree = tree

			if len(stack) == 0 {
				tree.Root = n
			} else {
				parent := stack[len(stack)-1]
				e.parent = parent
				pe := parent.element()
				pe.children = append(pe.children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].element().text.Write(t)
			}
		}
	}
	return tree, diags
}

// convertAttrs drops namespace declarations and names attributes the way
// Attr looks them up.
func convertAttrs(in []xml.Attr) []Attr {
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		switch {
		case a.Name.Space == "xmlns", a.Name.Space == "" && a.Name.Local == "xmlns":
			continue
		case a.Name.Space == xmlNamespace:
			out = append(out, Attr{Name: "xml:" + a.Name.Local, Value: a.Value})
		case a.Name.Space != "":
			out = append(out, Attr{Name: a.Name.Space + ":" + a.Name.Local, Value: a.Value})
		default:
			out = append(out, Attr{Name: a.Name.Local, Value: a.Value})
		}
	}
	return out
}
