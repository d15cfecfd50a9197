package node

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Factory creates a fresh, empty node of one concrete type.
type Factory func() Node

// Variant declares a node type for registration in a Table. Name is the
// type identifier from which the element tag is derived.
type Variant struct {
	Name string
	New  Factory
}

// Tag returns the element tag bound to the variant.
func (v Variant) Tag() string { return TagName(v.Name) }

// TagCollisionError is returned when two variants derive the same tag.
type TagCollisionError struct {
	Tag    string
	First  string
	Second string
}

func (e *TagCollisionError) Error() string {
	return fmt.Sprintf("node types %s and %s both bind to tag %q", e.First, e.Second, e.Tag)
}

// Table binds (namespace, tag) pairs to node factories. Lookups are total:
// any element outside the table's namespace or without a registered tag is
// built by the fallback factory. A Table is read-only after construction.
type Table struct {
	namespace string
	fallback  Factory
	byTag     map[string]Variant
}

// NewTable builds a binding table for one namespace. A nil fallback selects
// NewElement.
func NewTable(namespace string, fallback Factory, variants ...Variant) (*Table, error) {
	if fallback == nil {
		fallback = NewElement
	}
	t := &Table{
		namespace: namespace,
		fallback:  fallback,
		byTag:     make(map[string]Variant, len(variants)),
	}
	for _, v := range variants {
		if v.New == nil {
			return nil, fmt.Errorf("node type %s has no factory", v.Name)
		}
		tag := v.Tag()
		if tag == "" {
			return nil, fmt.Errorf("node type %q derives an empty tag", v.Name)
		}
		if prev, ok := t.byTag[tag]; ok {
			return nil, &TagCollisionError{Tag: tag, First: prev.Name, Second: v.Name}
		}
		t.byTag[tag] = v
	}
	return t, nil
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(Namespace, NewElement, Variants()...)
	if err != nil {
		// The variant set is static; a collision is a programming error.
		panic(err)
	}
	return t
})

// DefaultTable returns the process-wide CSL binding table. It is built once
// from Variants and never modified.
func DefaultTable() *Table { return defaultTable() }

// Namespace returns the namespace the table binds.
func (t *Table) Namespace() string { return t.namespace }

// New instantiates the node type bound to an element name.
func (t *Table) New(space, local string) Node {
	if space == t.namespace {
		if v, ok := t.byTag[local]; ok {
			return v.New()
		}
	}
	return t.fallback()
}

// Lookup returns the variant bound to a tag in the table's namespace.
func (t *Table) Lookup(tag string) (Variant, bool) {
	v, ok := t.byTag[tag]
	return v, ok
}

// Tags returns the bound tags, sorted.
func (t *Table) Tags() []string {
	tags := make([]string, 0, len(t.byTag))
	for tag := range t.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Override returns a copy of the table where the given variants replace
// (or add to) the existing bindings for their tags.
func (t *Table) Override(variants ...Variant) *Table {
	out := &Table{
		namespace: t.namespace,
		fallback:  t.fallback,
		byTag:     make(map[string]Variant, len(t.byTag)+len(variants)),
	}
	for tag, v := range t.byTag {
		out.byTag[tag] = v
	}
	for _, v := range variants {
		out.byTag[v.Tag()] = v
	}
	return out
}

// TagName derives an element tag from a type identifier: word boundaries
// become hyphens and the result is lower-cased. Underscores, hyphens and
// spaces count as boundaries, as do lower-to-upper transitions and the end
// of an acronym ("DatePart" -> "date-part", "ElseIf" -> "else-if",
// "ISSNL" -> "issnl", "date_part" -> "date-part").
func TagName(identifier string) string {
	runes := []rune(identifier)
	var b strings.Builder
	hyphen := func() {
		s := b.String()
		if s != "" && !strings.HasSuffix(s, "-") {
			b.WriteByte('-')
		}
	}

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			hyphen()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				hyphen()
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(b.String(), "-")
}
