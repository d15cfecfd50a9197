// Package csl loads Citation Style Language styles and locales into typed
// document trees.
//
// A Loader resolves a style identifier or locale code to a source, builds
// the typed tree through the node binding table, validates it against the
// grammar and hands the result to the Style and Locale facades. Validation
// is advisory: non-conformant documents load with their diagnostics
// attached and one warning reported per load.
package csl

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
	"github.com/leapstack-labs/cslkit/pkg/csl/schema"
)

// State is a step of the load pipeline.
type State int

// Load states, in order. Every successful load passes through all of them.
const (
	StateStart State = iota
	StateResolved
	StateParsed
	StateValidated
	StateReady
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateResolved:
		return "resolved"
	case StateParsed:
		return "parsed"
	case StateValidated:
		return "validated"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Document is the result of a load: the typed tree and every parse and
// validation diagnostic found.
type Document struct {
	// ID correlates the log records of one load.
	ID          string
	Source      resource.Source
	Tree        *node.Tree
	Root        node.Node
	Diagnostics diag.List
}

// Conformant reports whether the document parsed cleanly and matched the
// grammar.
func (d *Document) Conformant() bool { return len(d.Diagnostics) == 0 }

// WarningHandler receives non-conformant documents. It is called exactly
// once per such load.
type WarningHandler func(doc *Document)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithBindingTable replaces the default element binding table.
func WithBindingTable(t *node.Table) Option {
	return func(l *Loader) { l.table = t }
}

// WithSchema sets the grammar, overriding Config.SchemaPath.
func WithSchema(s *schema.Schema) Option {
	return func(l *Loader) { l.schema = s }
}

// WithWarningHandler replaces the default handler, which logs a warning.
func WithWarningHandler(h WarningHandler) Option {
	return func(l *Loader) { l.warn = h }
}

// Loader loads styles and locales. It is safe for concurrent use.
type Loader struct {
	cfg     resource.Config
	locator *resource.Locator
	table   *node.Table
	schema  *schema.Schema
	logger  *slog.Logger
	warn    WarningHandler

	mu      sync.Mutex
	locales map[string]*node.Locale
}

// NewLoader creates a loader for the given resource layout. A grammar file
// that exists but cannot be loaded is an error; a missing one selects the
// embedded grammar.
func NewLoader(cfg resource.Config, opts ...Option) (*Loader, error) {
	l := &Loader{
		cfg:     cfg,
		locator: resource.NewLocator(cfg),
		locales: make(map[string]*node.Locale),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.table == nil {
		l.table = node.DefaultTable()
	}
	if l.warn == nil {
		l.warn = l.logWarning
	}

	if l.schema == nil {
		s, err := loadSchema(cfg.SchemaPath, l.logger)
		if err != nil {
			return nil, err
		}
		l.schema = s
	}
	return l, nil
}

func loadSchema(path string, logger *slog.Logger) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("grammar file not found, using embedded grammar", "path", path)
			return schema.Default(), nil
		}
		return nil, fmt.Errorf("failed to access grammar: %w", err)
	}
	s, err := schema.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", err)
	}
	return s, nil
}

// Config returns the resource layout of the loader.
func (l *Loader) Config() resource.Config { return l.cfg }

// Schema returns the grammar documents are validated against.
func (l *Loader) Schema() *schema.Schema { return l.schema }

// Load reads, builds and validates a document from src. Only opening the
// source can fail; syntax and grammar problems are reported through
// Document.Diagnostics and the warning handler.
func (l *Loader) Load(src resource.Source) (*Document, error) {
	return l.load(src, "", func(err error) error {
		return fmt.Errorf("failed to open %s: %w", src.Name(), err)
	})
}

// load runs the pipeline for src. A non-empty want names the document
// element the caller expects; any other root is reported as a diagnostic.
func (l *Loader) load(src resource.Source, want string, openErr func(error) error) (*Document, error) {
	doc := &Document{ID: uuid.NewString(), Source: src}
	log := l.logger.With("load_id", doc.ID, "source", src.Name())
	log.Debug("load", "state", StateStart)

	rc, err := src.Open()
	if err != nil {
		log.Debug("source not readable", "error", err)
		return nil, openErr(err)
	}
	defer func() { _ = rc.Close() }()
	log.Debug("load", "state", StateResolved)

	tree, diags := node.Build(rc, l.table)
	if tree.Root == nil {
		return nil, &EmptyDocumentError{Source: src.Name(), Diagnostics: diags}
	}
	tree.SetLocaleSource(l)
	doc.Tree = tree
	doc.Root = tree.Root
	log.Debug("load", "state", StateParsed, "root", tree.Root.Tag(), "parse_errors", len(diags))

	diags = append(diags, l.schema.Validate(tree.Root)...)
	if want != "" && tree.Root.Tag() != want && !diags.Has(diag.CodeRoot) {
		diags = append(diags, diag.Diagnostic{
			Code:     diag.CodeRoot,
			Message:  fmt.Sprintf("document element %q, want %q", tree.Root.Tag(), want),
			Path:     node.Path(tree.Root),
			Expected: []string{want},
			Line:     tree.Root.Line(),
			Column:   tree.Root.Column(),
		})
	}
	doc.Diagnostics = diags
	if !doc.Conformant() {
		l.warn(doc)
	}
	log.Debug("load", "state", StateValidated, "diagnostics", len(diags))

	log.Debug("load", "state", StateReady)
	return doc, nil
}

func (l *Loader) logWarning(doc *Document) {
	l.logger.Warn("document does not conform to the CSL grammar",
		"load_id", doc.ID,
		"source", doc.Source.Name(),
		"diagnostics", len(doc.Diagnostics),
		"first", doc.Diagnostics[0].Error(),
	)
}

// LoadLocale returns the locale file for a code. It implements
// node.LocaleSource for locale prioritization, so the result is cached:
// styles resolved by the same loader share one parsed locale per code. A
// file whose root is not a locale element is an error here.
func (l *Loader) LoadLocale(code string) (*node.Locale, error) {
	l.mu.Lock()
	root, ok := l.locales[code]
	l.mu.Unlock()
	if ok {
		return root, nil
	}

	loc, err := l.Locale(code)
	if err != nil {
		return nil, err
	}
	if loc.root == nil {
		doc := loc.doc
		return nil, &RootTypeError{Source: doc.Source.Name(), Tag: doc.Root.Tag(), Want: "locale"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.locales[code]; ok {
		return cached, nil
	}
	l.locales[code] = loc.root
	return loc.root, nil
}

// AvailableStyles lists the identifiers in the styles directory.
func (l *Loader) AvailableStyles() ([]string, error) {
	return resource.DiscoverStyles(l.cfg.StylesDir)
}

// AvailableLocales lists the codes in the locales directory.
func (l *Loader) AvailableLocales() ([]string, error) {
	return resource.DiscoverLocales(l.cfg.LocalesDir)
}
