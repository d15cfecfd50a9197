package node

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/cslkit/pkg/csl/render"
)

// ErrNoFormatter is returned when rendering is attempted on a style that has
// no formatter attached.
var ErrNoFormatter = errors.New("no formatter attached to style")

// MissingElementError reports a structural element that a style lacks. It is
// raised lazily, when the element is first needed.
type MissingElementError struct {
	Parent string
	Tag    string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("%s has no %s element", e.Parent, e.Tag)
}

// CitationRenderer renders a single cite.
type CitationRenderer interface {
	Render(item *render.Reference, opts render.Options) (string, error)
}

// BibliographyRenderer renders a list of references, one entry per item.
type BibliographyRenderer interface {
	Render(items []*render.Reference, opts render.Options) ([]string, error)
}

// Root is the contract a style document element fulfils for the style
// facade: locale prioritization and access to the two rendering
// sub-structures.
type Root interface {
	Node
	SetLocaleList(codes ...string) error
	Citation() (CitationRenderer, error)
	Bibliography() (BibliographyRenderer, error)
}

// Formatter turns a bound citation or bibliography subtree into output. It
// is supplied by the caller; this package ships no formatting rules.
type Formatter interface {
	FormatCitation(c *Citation, item *render.Reference, opts render.Options) (string, error)
	FormatBibliography(b *Bibliography, items []*render.Reference, opts render.Options) ([]string, error)
}

// Style is the root of a style document.
type Style struct {
	Element

	codes     []string
	locales   []*Locale
	missing   []string
	formatter Formatter
}

var _ Root = (*Style)(nil)

// Class returns the citation class ("in-text" or "note").
func (s *Style) Class() string { return s.AttrOr("class", "") }

// Version returns the CSL version the style targets.
func (s *Style) Version() string { return s.AttrOr("version", "") }

// DefaultLocale returns the default-locale attribute.
func (s *Style) DefaultLocale() string { return s.AttrOr("default-locale", "") }

// Info returns the style metadata, if present.
func (s *Style) Info() (*Info, bool) { return First[*Info](s) }

// IndependentParent returns the parent style URI of a dependent style.
func (s *Style) IndependentParent() (string, bool) {
	info, ok := s.Info()
	if !ok {
		return "", false
	}
	for _, l := range info.Links() {
		if l.Rel() == "independent-parent" {
			return l.Href(), true
		}
	}
	return "", false
}

// Macro returns the macro with the given name.
func (s *Style) Macro(name string) (*Macro, bool) {
	for _, m := range All[*Macro](s) {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// InlineLocales returns the locale elements embedded in the style.
func (s *Style) InlineLocales() []*Locale { return All[*Locale](s) }

// CitationElement returns the citation element, if present.
func (s *Style) CitationElement() (*Citation, bool) { return First[*Citation](s) }

// BibliographyElement returns the bibliography element, if present.
func (s *Style) BibliographyElement() (*Bibliography, bool) { return First[*Bibliography](s) }

// Citation returns the citation renderer.
func (s *Style) Citation() (CitationRenderer, error) {
	c, ok := s.CitationElement()
	if !ok {
		return nil, &MissingElementError{Parent: "style", Tag: "citation"}
	}
	return c, nil
}

// Bibliography returns the bibliography renderer.
func (s *Style) Bibliography() (BibliographyRenderer, error) {
	b, ok := s.BibliographyElement()
	if !ok {
		return nil, &MissingElementError{Parent: "style", Tag: "bibliography"}
	}
	return b, nil
}

// SetFormatter attaches the formatter used by Render calls.
func (s *Style) SetFormatter(f Formatter) { s.formatter = f }

// Formatter returns the attached formatter.
func (s *Style) Formatter() Formatter { return s.formatter }

// Citation describes how cites are rendered.
type Citation struct{ Element }

// Layout returns the citation layout.
func (c *Citation) Layout() (*Layout, bool) { return First[*Layout](c) }

// Sort returns the citation sort specification.
func (c *Citation) Sort() (*Sort, bool) { return First[*Sort](c) }

// Render formats one cite with the style's formatter.
func (c *Citation) Render(item *render.Reference, opts render.Options) (string, error) {
	f, err := formatterOf(c)
	if err != nil {
		return "", err
	}
	return f.FormatCitation(c, item, opts)
}

// Bibliography describes how the reference list is rendered.
type Bibliography struct{ Element }

// Layout returns the bibliography layout.
func (b *Bibliography) Layout() (*Layout, bool) { return First[*Layout](b) }

// Sort returns the bibliography sort specification.
func (b *Bibliography) Sort() (*Sort, bool) { return First[*Sort](b) }

// Render formats the reference list with the style's formatter.
func (b *Bibliography) Render(items []*render.Reference, opts render.Options) ([]string, error) {
	f, err := formatterOf(b)
	if err != nil {
		return nil, err
	}
	return f.FormatBibliography(b, items, opts)
}

// formatterHolder is satisfied by *Style and by types embedding it.
type formatterHolder interface {
	Node
	Formatter() Formatter
}

func formatterOf(n Node) (Formatter, error) {
	s, ok := ancestor[formatterHolder](n)
	if !ok || s.Formatter() == nil {
		return nil, ErrNoFormatter
	}
	return s.Formatter(), nil
}
