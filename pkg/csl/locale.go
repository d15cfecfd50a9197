package csl

import (
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
)

// Locale is a loaded locale file.
type Locale struct {
	code string
	doc  *Document
	root *node.Locale
}

// Locale loads locales-<code>.xml from the locales directory. Every call
// reads and validates the file again. A code without a locale file is
// reported as *UnknownLocaleError; a document whose root is not a locale
// element loads with a diagnostic and a nil Root.
func (l *Loader) Locale(code string) (*Locale, error) {
	src := l.locator.Locale(code)
	doc, err := l.load(src, "locale", func(error) error {
		available, _ := resource.DiscoverLocales(l.cfg.LocalesDir)
		return &UnknownLocaleError{Code: code, Path: src.Path(), Available: available}
	})
	if err != nil {
		return nil, err
	}
	root, _ := doc.Root.(*node.Locale)
	return &Locale{code: code, doc: doc, root: root}, nil
}

// Code returns the requested locale code.
func (l *Locale) Code() string { return l.code }

// Document returns the loaded document.
func (l *Locale) Document() *Document { return l.doc }

// Root returns the locale root element, or nil when the document element is
// not a locale.
func (l *Locale) Root() *node.Locale { return l.root }

// Term looks up a term in this locale only; no fallback applies.
func (l *Locale) Term(name, form string) (*node.Term, bool) {
	if l.root == nil {
		return nil, false
	}
	return l.root.Term(name, form)
}
