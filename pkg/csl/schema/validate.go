package schema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/variable"
	"golang.org/x/text/language"
)

// Validate checks a tree against the grammar and returns every violation
// found. A nil root yields no diagnostics.
func (s *Schema) Validate(root node.Node) diag.List {
	if root == nil {
		return nil
	}
	v := &validator{schema: s}

	if root.Namespace() != s.namespace {
		v.report(root, diag.CodeNamespace,
			fmt.Sprintf("document element %q is not in namespace %s", root.Tag(), s.namespace), nil)
		return v.diags
	}
	if !slices.Contains(s.roots, root.Tag()) {
		v.report(root, diag.CodeRoot,
			fmt.Sprintf("%q is not a permitted document element", root.Tag()), s.roots)
		return v.diags
	}
	v.element(root, s.rules[root.Tag()])
	return v.diags
}

type validator struct {
	schema *Schema
	diags  diag.List
}

func (v *validator) report(n node.Node, code diag.Code, msg string, expected []string) {
	v.diags = append(v.diags, diag.Diagnostic{
		Code:     code,
		Message:  msg,
		Path:     node.Path(n),
		Expected: expected,
		Line:     n.Line(),
		Column:   n.Column(),
	})
}

func (v *validator) element(n node.Node, r *rule) {
	v.attributes(n, r)

	if !r.text && strings.TrimSpace(n.Text()) != "" {
		v.report(n, diag.CodeUnexpectedText,
			fmt.Sprintf("element %q does not allow text content", n.Tag()), nil)
	}

	present := make(map[string]bool)
	for _, c := range n.Children() {
		if c.Namespace() != v.schema.namespace {
			v.report(c, diag.CodeNamespace,
				fmt.Sprintf("element %q is not in namespace %s", c.Tag(), v.schema.namespace), nil)
			continue
		}
		present[c.Tag()] = true

		cr := v.schema.lookup(n.Tag(), c.Tag())
		if cr == nil {
			v.report(c, diag.CodeUnknownElement,
				fmt.Sprintf("unknown element %q", c.Tag()), r.children)
			continue
		}
		if _, ok := slices.BinarySearch(r.children, c.Tag()); !ok {
			v.report(c, diag.CodeUnexpectedElement,
				fmt.Sprintf("element %q is not allowed in %q", c.Tag(), n.Tag()), r.children)
		}
		v.element(c, cr)
	}

	for _, req := range r.required {
		if !present[req] {
			v.report(n, diag.CodeMissingElement,
				fmt.Sprintf("element %q requires a %q child", n.Tag(), req), []string{req})
		}
	}
}

func (v *validator) attributes(n node.Node, r *rule) {
	seen := make(map[string]bool)
	for _, a := range n.Attrs() {
		seen[a.Name] = true
		ar, ok := r.attrs[a.Name]
		if !ok {
			v.report(n, diag.CodeUnknownAttribute,
				fmt.Sprintf("element %q does not accept attribute %q", n.Tag(), a.Name), r.attrNames)
			continue
		}
		if msg, expected := checkValue(ar, a.Value); msg != "" {
			v.report(n, diag.CodeAttributeValue,
				fmt.Sprintf("attribute %q: %s", a.Name, msg), expected)
		}
	}
	for _, name := range r.attrNames {
		if r.attrs[name].Required && !seen[name] {
			v.report(n, diag.CodeMissingAttribute,
				fmt.Sprintf("element %q requires attribute %q", n.Tag(), name), []string{name})
		}
	}
}

// checkValue returns a problem description and the expected values, or an
// empty message when the value conforms.
func checkValue(r AttributeRule, value string) (string, []string) {
	tokens := []string{value}
	if r.List {
		tokens = strings.Fields(value)
		if len(tokens) == 0 {
			return "empty value list", r.Values
		}
	}
	for _, tok := range tokens {
		if len(r.Values) > 0 && !slices.Contains(r.Values, tok) {
			return fmt.Sprintf("invalid value %q", tok), r.Values
		}
		if msg := checkType(r, tok); msg != "" {
			return msg, r.Values
		}
	}
	return "", nil
}

func checkType(r AttributeRule, tok string) string {
	switch r.Type {
	case TypeBoolean:
		if tok != "true" && tok != "false" {
			return fmt.Sprintf("%q is not a boolean", tok)
		}
	case TypeInteger:
		if n, err := strconv.Atoi(tok); err != nil || n < 0 {
			return fmt.Sprintf("%q is not a non-negative integer", tok)
		}
	case TypeLocale:
		if _, err := language.Parse(tok); err != nil {
			var verr language.ValueError
			if !errors.As(err, &verr) {
				return fmt.Sprintf("%q is not a locale code", tok)
			}
		}
	case TypeVariable:
		if !variable.IsKnown(tok) {
			return fmt.Sprintf("unknown variable %q", tok)
		}
		if r.Category != "" {
			if got := variable.CategoryOf(tok); got.String() != r.Category {
				return fmt.Sprintf("variable %q is a %s variable, want %s", tok, got, r.Category)
			}
		}
	}
	return ""
}
