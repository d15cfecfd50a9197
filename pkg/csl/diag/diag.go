// Package diag holds the structured diagnostics produced while parsing and
// validating CSL documents.
package diag

import (
	"fmt"
	"strings"
)

// Code identifies the class of a diagnostic.
type Code string

const (
	// CodeXMLParse indicates the document is not well-formed XML.
	CodeXMLParse Code = "xml-parse"
	// CodeExtraRoot indicates content after the document element.
	CodeExtraRoot Code = "xml-extra-root"

	// CodeRoot indicates the document element is not a permitted root.
	CodeRoot Code = "csl-root"
	// CodeNamespace indicates an element outside the CSL namespace.
	CodeNamespace Code = "csl-namespace"
	// CodeUnknownElement indicates an element the grammar does not declare.
	CodeUnknownElement Code = "csl-element-unknown"
	// CodeUnexpectedElement indicates a declared element in a position where it is not allowed.
	CodeUnexpectedElement Code = "csl-element-unexpected"
	// CodeMissingElement indicates a required child element is absent.
	CodeMissingElement Code = "csl-element-missing"
	// CodeUnknownAttribute indicates an attribute the element does not accept.
	CodeUnknownAttribute Code = "csl-attribute-unknown"
	// CodeMissingAttribute indicates a required attribute is absent.
	CodeMissingAttribute Code = "csl-attribute-missing"
	// CodeAttributeValue indicates an attribute value outside its enumeration.
	CodeAttributeValue Code = "csl-attribute-value"
	// CodeUnexpectedText indicates character data in element-only content.
	CodeUnexpectedText Code = "csl-text-unexpected"
)

// Diagnostic describes a single parse or validation problem with its
// element path and source position.
type Diagnostic struct {
	Code     Code     `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
}

// Error formats the diagnostic for display.
func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	if d.Path != "" {
		fmt.Fprintf(&b, " at %s", d.Path)
	}
	if d.Line > 0 {
		if d.Path == "" {
			fmt.Fprintf(&b, " at line %d, column %d", d.Line, d.Column)
		} else {
			fmt.Fprintf(&b, " (line %d, column %d)", d.Line, d.Column)
		}
	}
	if len(d.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(d.Expected, ", "))
	}
	return b.String()
}

// List is an ordered collection of diagnostics. A non-empty List can be used
// as an error.
type List []Diagnostic

// Error returns a compact summary of the diagnostics.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// String renders every diagnostic on its own line.
func (l List) String() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns the list as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Has reports whether any diagnostic carries the given code.
func (l List) Has(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given code.
func (l List) Count(code Code) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}
