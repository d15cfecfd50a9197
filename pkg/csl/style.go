package csl

import (
	"fmt"

	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/render"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
)

// Style is a loaded style ready to render. The locale list of its root has
// been set before the Style is handed out.
type Style struct {
	doc  *Document
	root node.Root
}

type styleOptions struct {
	locales   []string
	formatter node.Formatter
}

// StyleOption configures style construction.
type StyleOption func(*styleOptions)

// WithLocale sets the requested locale codes, most preferred first. The
// default is en-US.
func WithLocale(codes ...string) StyleOption {
	return func(o *styleOptions) { o.locales = codes }
}

// WithFormatter attaches the formatter the style renders with.
func WithFormatter(f node.Formatter) StyleOption {
	return func(o *styleOptions) { o.formatter = f }
}

type formatterSetter interface {
	SetFormatter(node.Formatter)
}

// Style loads a style by identifier. An identifier that names an existing
// file is read from that file; otherwise it is looked up in the styles
// directory. Resolution failures are reported as *UnknownStyleError.
func (l *Loader) Style(identifier string, opts ...StyleOption) (*Style, error) {
	doc, err := l.LoadStyle(identifier)
	if err != nil {
		return nil, err
	}
	return newStyle(doc, opts)
}

// LoadStyle resolves and loads a style document the way Style does, without
// preparing it for rendering.
func (l *Loader) LoadStyle(identifier string) (*Document, error) {
	src := l.locator.Style(identifier)
	return l.load(src, "", func(error) error {
		return &UnknownStyleError{Identifier: identifier, Path: src.Path()}
	})
}

// StyleFromSource loads a style from an explicit source.
func (l *Loader) StyleFromSource(src resource.Source, opts ...StyleOption) (*Style, error) {
	doc, err := l.load(src, "", func(error) error {
		return &UnknownStyleError{Identifier: src.Name(), Path: src.Path()}
	})
	if err != nil {
		return nil, err
	}
	return newStyle(doc, opts)
}

func newStyle(doc *Document, opts []StyleOption) (*Style, error) {
	o := styleOptions{locales: []string{node.DefaultLocale}}
	for _, opt := range opts {
		opt(&o)
	}

	root, ok := doc.Root.(node.Root)
	if !ok {
		return nil, &RootTypeError{Source: doc.Source.Name(), Tag: doc.Root.Tag(), Want: "style"}
	}
	if err := root.SetLocaleList(o.locales...); err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Source.Name(), err)
	}
	if o.formatter != nil {
		fs, ok := root.(formatterSetter)
		if !ok {
			return nil, fmt.Errorf("%s: style root %T does not accept a formatter", doc.Source.Name(), root)
		}
		fs.SetFormatter(o.formatter)
	}
	return &Style{doc: doc, root: root}, nil
}

// Document returns the loaded document.
func (s *Style) Document() *Document { return s.doc }

// Root returns the style root.
func (s *Style) Root() node.Root { return s.root }

// Node returns the root as a *node.Style when it has that type.
func (s *Style) Node() (*node.Style, bool) {
	n, ok := s.root.(*node.Style)
	return n, ok
}

// RenderCitation renders one cite through the root's citation element.
// Results and errors are returned unchanged.
func (s *Style) RenderCitation(item *render.Reference, opts render.Options) (string, error) {
	c, err := s.root.Citation()
	if err != nil {
		return "", err
	}
	return c.Render(item, opts)
}

// RenderBibliography renders the reference list through the root's
// bibliography element. Results and errors are returned unchanged.
func (s *Style) RenderBibliography(items []*render.Reference, opts render.Options) ([]string, error) {
	b, err := s.root.Bibliography()
	if err != nil {
		return nil, err
	}
	return b.Render(items, opts)
}
