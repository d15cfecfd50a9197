// Package schema validates CSL document trees against a grammar.
//
// The grammar is a YAML resource describing the permitted root elements,
// the attributes each element accepts (with enumerated or typed values), the
// children it may contain and whether it carries text. A default CSL 1.0
// grammar is embedded; a custom one can be loaded from disk. Validation is
// advisory: it reports diagnostics and never modifies the tree.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed csl.yaml
var defaultGrammar []byte

// Attribute types understood by the validator.
const (
	TypeText     = ""
	TypeBoolean  = "boolean"
	TypeInteger  = "integer"
	TypeLocale   = "locale"
	TypeVariable = "variable"
)

// AttributeRule constrains one attribute.
type AttributeRule struct {
	Required bool     `yaml:"required"`
	Type     string   `yaml:"type"`
	Values   []string `yaml:"values"`
	Enum     string   `yaml:"enum"`
	List     bool     `yaml:"list"`
	Category string   `yaml:"category"`
}

// ElementRule constrains one element.
type ElementRule struct {
	Attributes map[string]AttributeRule `yaml:"attributes"`
	Groups     []string                 `yaml:"groups"`
	Content    []string                 `yaml:"content"`
	Children   []string                 `yaml:"children"`
	Required   []string                 `yaml:"required"`
	Text       bool                     `yaml:"text"`
}

// Grammar is the decoded grammar resource.
type Grammar struct {
	Namespace       string                              `yaml:"namespace"`
	Roots           []string                            `yaml:"roots"`
	Enums           map[string][]string                 `yaml:"enums"`
	AttributeGroups map[string]map[string]AttributeRule `yaml:"attribute-groups"`
	ContentGroups   map[string][]string                 `yaml:"content-groups"`
	Elements        map[string]ElementRule              `yaml:"elements"`
}

// Schema is a compiled grammar. It is immutable and safe for concurrent use.
type Schema struct {
	namespace string
	roots     []string
	rules     map[string]*rule
}

type rule struct {
	attrs     map[string]AttributeRule
	attrNames []string
	children  []string
	required  []string
	text      bool
}

// Load decodes and compiles a grammar. Unknown keys are rejected.
func Load(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var g Grammar
	if err := dec.Decode(&g); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("grammar is empty")
		}
		return nil, fmt.Errorf("failed to decode grammar: %w", err)
	}
	return Compile(&g)
}

// LoadFile loads a grammar from a file.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grammar: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var defaultSchema = sync.OnceValue(func() *Schema {
	s, err := Load(bytes.NewReader(defaultGrammar))
	if err != nil {
		panic(fmt.Sprintf("embedded CSL grammar: %v", err))
	}
	return s
})

// Default returns the embedded CSL 1.0 grammar.
func Default() *Schema { return defaultSchema() }

// Compile resolves enum, attribute group and content group references.
func Compile(g *Grammar) (*Schema, error) {
	if g.Namespace == "" {
		return nil, errors.New("grammar has no namespace")
	}
	if len(g.Roots) == 0 {
		return nil, errors.New("grammar declares no root elements")
	}

	s := &Schema{
		namespace: g.Namespace,
		roots:     slices.Clone(g.Roots),
		rules:     make(map[string]*rule, len(g.Elements)),
	}

	resolve := func(where, name string, a AttributeRule) (AttributeRule, error) {
		if a.Enum != "" {
			values, ok := g.Enums[a.Enum]
			if !ok {
				return a, fmt.Errorf("%s: attribute %s references unknown enum %q", where, name, a.Enum)
			}
			a.Values = append(slices.Clone(a.Values), values...)
		}
		switch a.Type {
		case TypeText, TypeBoolean, TypeInteger, TypeLocale, TypeVariable:
		default:
			return a, fmt.Errorf("%s: attribute %s has unknown type %q", where, name, a.Type)
		}
		if a.Category != "" && a.Type != TypeVariable {
			return a, fmt.Errorf("%s: attribute %s sets a category without type variable", where, name)
		}
		return a, nil
	}

	for key, el := range g.Elements {
		r := &rule{
			attrs:    make(map[string]AttributeRule),
			required: slices.Clone(el.Required),
			text:     el.Text,
		}
		for _, group := range el.Groups {
			attrs, ok := g.AttributeGroups[group]
			if !ok {
				return nil, fmt.Errorf("element %s: unknown attribute group %q", key, group)
			}
			for name, a := range attrs {
				ra, err := resolve("element "+key, name, a)
				if err != nil {
					return nil, err
				}
				r.attrs[name] = ra
			}
		}
		for name, a := range el.Attributes {
			ra, err := resolve("element "+key, name, a)
			if err != nil {
				return nil, err
			}
			r.attrs[name] = ra
		}

		children := slices.Clone(el.Children)
		for _, group := range el.Content {
			tags, ok := g.ContentGroups[group]
			if !ok {
				return nil, fmt.Errorf("element %s: unknown content group %q", key, group)
			}
			children = append(children, tags...)
		}
		sort.Strings(children)
		r.children = slices.Compact(children)

		for name := range r.attrs {
			r.attrNames = append(r.attrNames, name)
		}
		sort.Strings(r.attrNames)
		s.rules[key] = r
	}

	for key, r := range s.rules {
		for _, child := range append(slices.Clone(r.children), r.required...) {
			if s.lookup(key, child) == nil {
				return nil, fmt.Errorf("element %s: child %q has no rule", key, child)
			}
		}
	}
	for _, root := range s.roots {
		if _, ok := s.rules[root]; !ok {
			return nil, fmt.Errorf("root element %q has no rule", root)
		}
	}
	return s, nil
}

// Namespace returns the namespace the grammar describes.
func (s *Schema) Namespace() string { return s.namespace }

// Roots returns the permitted document elements.
func (s *Schema) Roots() []string { return slices.Clone(s.roots) }

// Elements returns the element tags the grammar declares, sorted.
func (s *Schema) Elements() []string {
	seen := make(map[string]bool)
	var out []string
	for key := range s.rules {
		tag := key
		if i := strings.LastIndexByte(key, '>'); i >= 0 {
			tag = key[i+1:]
		}
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// lookup returns the rule for tag in the context of its parent. Parent
// keys are tag names without context, so "parent>tag" rules match whatever
// the parent's own ancestry.
func (s *Schema) lookup(parent, tag string) *rule {
	if i := strings.LastIndexByte(parent, '>'); i >= 0 {
		parent = parent[i+1:]
	}
	if parent != "" {
		if r, ok := s.rules[parent+">"+tag]; ok {
			return r
		}
	}
	return s.rules[tag]
}
