// Package node provides the typed CSL document tree.
//
// Every XML element of a style or locale is bound to a semantic node type
// (Style, Citation, Names, Date, ...) through a binding Table consulted while
// the tree is built. Elements without a specific binding become a plain
// *Element, so structure is never lost.
package node

import (
	"strings"
)

// Namespace is the CSL XML namespace.
const Namespace = "http://purl.org/net/xbiblio/csl"

// xmlNamespace is the namespace bound to the reserved "xml" prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Node is implemented by every element of a CSL tree. The set of
// implementations is closed to types embedding Element.
type Node interface {
	// Tag returns the local element name, e.g. "date-part".
	Tag() string
	// Namespace returns the element namespace URI.
	Namespace() string
	// Attr returns the value of an attribute. Attributes in the XML
	// namespace are addressed as "xml:lang".
	Attr(name string) (string, bool)
	// Attrs returns the attributes in document order.
	Attrs() []Attr
	// Children returns the child elements in document order.
	Children() []Node
	// Parent returns the enclosing element, or nil for the root.
	Parent() Node
	// Text returns the character data directly inside the element.
	Text() string
	// Line and Column locate the element in its source.
	Line() int
	Column() int
	// Tree returns the tree the element belongs to.
	Tree() *Tree

	element() *Element
}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is the generic node. It is the default binding for tags without a
// dedicated type and is embedded by every concrete node type.
type Element struct {
	space    string
	tag      string
	attrs    []Attr
	children []Node
	parent   Node
	text     strings.Builder
	line     int
	column   int
	tree     *Tree
}

// NewElement is the default node factory.
func NewElement() Node { return &Element{} }

func (e *Element) element() *Element { return e }

// Tag returns the local element name.
func (e *Element) Tag() string { return e.tag }

// Namespace returns the element namespace URI.
func (e *Element) Namespace() string { return e.space }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Attrs returns the attributes in document order.
func (e *Element) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Children returns the child elements in document order.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// Parent returns the enclosing element.
func (e *Element) Parent() Node { return e.parent }

// Text returns the raw character data of the element.
func (e *Element) Text() string { return e.text.String() }

// Line returns the source line of the element.
func (e *Element) Line() int { return e.line }

// Column returns the source column of the element.
func (e *Element) Column() int { return e.column }

// Tree returns the owning tree.
func (e *Element) Tree() *Tree { return e.tree }

// First returns the first child of type T.
func First[T Node](n Node) (T, bool) {
	for _, c := range n.element().children {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// All returns every child of type T.
func All[T Node](n Node) []T {
	var out []T
	for _, c := range n.element().children {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.element().children {
		Walk(c, fn)
	}
}

// Path returns the slash-separated element path from the root, e.g.
// "/style/citation/layout".
func Path(n Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.Tag())
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// ancestor returns the nearest enclosing node of type T.
func ancestor[T Node](n Node) (T, bool) {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if t, ok := cur.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
