// Package registry provides the style catalog of a styles directory.
// It maps style identifiers, style URIs and independent-parent links to
// catalog entries, so dependent styles can be related to the styles they
// borrow their rendering from.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"golang.org/x/sync/errgroup"
)

// Entry describes one style of the catalog.
type Entry struct {
	// ID is the identifier the style is loaded by (its file name without .csl).
	ID          string `json:"id" yaml:"id"`
	Path        string `json:"path" yaml:"path"`
	URI         string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Class       string `json:"class,omitempty" yaml:"class,omitempty"`
	Updated     string `json:"updated,omitempty" yaml:"updated,omitempty"`
	Parent      string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Diagnostics int    `json:"diagnostics" yaml:"diagnostics"`
}

// Dependent reports whether the style links to an independent parent.
func (e *Entry) Dependent() bool { return e.Parent != "" }

// Conformant reports whether the style loaded without diagnostics.
func (e *Entry) Conformant() bool { return e.Diagnostics == 0 }

// StyleRegistry maps style identifiers and URIs to catalog entries.
type StyleRegistry struct {
	mu sync.RWMutex

	// byID maps identifiers to entries: "apa" → *Entry
	byID map[string]*Entry

	// byURI maps style URIs to identifiers:
	//   "http://www.zotero.org/styles/apa" → "apa"
	byURI map[string]string
}

// NewStyleRegistry creates a new empty registry.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{
		byID:  make(map[string]*Entry),
		byURI: make(map[string]string),
	}
}

// Register adds an entry to the registry, replacing any entry with the
// same identifier.
func (r *StyleRegistry) Register(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[e.ID] = e
	if e.URI != "" {
		r.byURI[e.URI] = e.ID
	}
}

// Get returns the entry for an identifier.
func (r *StyleRegistry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Resolve maps a style reference to an identifier. The reference may be
// an identifier, a style URI, or a URI whose last path segment is a known
// identifier.
func (r *StyleRegistry) Resolve(ref string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// 1. Exact identifier
	if _, ok := r.byID[ref]; ok {
		return ref, true
	}

	// 2. Style URI
	if id, ok := r.byURI[ref]; ok {
		return id, true
	}

	// 3. Last segment of a URI
	if strings.Contains(ref, "/") {
		last := path.Base(strings.TrimSuffix(ref, "/"))
		if _, ok := r.byID[last]; ok {
			return last, true
		}
	}

	return "", false
}

// Parent returns the independent parent entry of a dependent style.
func (r *StyleRegistry) Parent(id string) (*Entry, bool) {
	e, ok := r.Get(id)
	if !ok || !e.Dependent() {
		return nil, false
	}
	parentID, ok := r.Resolve(e.Parent)
	if !ok {
		return nil, false
	}
	return r.Get(parentID)
}

// Dependents returns the entries whose independent parent resolves to id,
// sorted by identifier.
func (r *StyleRegistry) Dependents(id string) []*Entry {
	var out []*Entry
	for _, e := range r.All() {
		if !e.Dependent() {
			continue
		}
		if parentID, ok := r.Resolve(e.Parent); ok && parentID == id {
			out = append(out, e)
		}
	}
	return out
}

// All returns all registered entries sorted by identifier.
func (r *StyleRegistry) All() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Count returns the number of registered entries.
func (r *StyleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Build loads every style of the loader's styles directory, at most
// concurrency at a time, and registers an entry for each. Styles that fail
// to load are returned joined in the error alongside the partial registry.
func Build(ctx context.Context, l *csl.Loader, concurrency int) (*StyleRegistry, error) {
	ids, err := l.AvailableStyles()
	if err != nil {
		return nil, fmt.Errorf("failed to list styles: %w", err)
	}

	r := NewStyleRegistry()
	errs := make([]error, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := l.LoadStyle(id)
			if err != nil {
				errs[i] = err
				return nil
			}
			r.Register(EntryFor(id, doc))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, errors.Join(errs...)
}

// EntryFor describes a loaded style document.
func EntryFor(id string, doc *csl.Document) *Entry {
	e := &Entry{
		ID:          id,
		Path:        doc.Source.Path(),
		Diagnostics: len(doc.Diagnostics),
	}
	style, ok := doc.Root.(*node.Style)
	if !ok {
		return e
	}
	e.Class = style.Class()
	if info, ok := style.Info(); ok {
		e.Title = info.Title()
		e.URI = info.ID()
		e.Updated = info.Updated()
	}
	if parent, ok := style.IndependentParent(); ok {
		e.Parent = parent
	}
	return e
}
