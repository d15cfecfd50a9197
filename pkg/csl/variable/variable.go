// Package variable defines the CSL variable vocabulary and its fixed
// classification into name, date, number and plain variables.
package variable

import (
	"sort"
	"strings"
)

// Category classifies a CSL variable.
type Category int

// Variable categories. The categories are disjoint.
const (
	Unknown Category = iota
	Name
	Date
	Number
	Plain
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Name:
		return "name"
	case Date:
		return "date"
	case Number:
		return "number"
	case Plain:
		return "plain"
	default:
		return "unknown"
	}
}

// Contributor-name variables.
var names = []string{
	"author", "collection-editor", "composer", "container-author",
	"editor", "editorial-director", "illustrator", "interviewer",
	"original-author", "recipient", "translator",
}

// Date variables.
var dates = []string{
	"accessed", "container", "event-date", "issued", "original-date",
	"submitted",
}

// Number variables.
var numbers = []string{
	"chapter-number", "collection-number", "edition", "issue", "number",
	"number-of-pages", "number-of-volumes", "volume",
}

// Plain (string) variables.
var plain = []string{
	"abstract", "annote", "archive", "archive_location", "archive-place",
	"authority", "call-number", "citation-label", "citation-number",
	"collection-title", "container-title", "container-title-short",
	"dimensions", "DOI", "event", "event-place",
	"first-reference-note-number", "genre", "ISBN", "ISSN", "jurisdiction",
	"keyword", "locator", "medium", "note", "original-publisher",
	"original-publisher-place", "original-title", "page", "page-first",
	"PMID", "PMCID", "publisher", "publisher-place", "references",
	"section", "source", "status", "title", "title-short", "URL",
	"version", "year-suffix",
}

// index maps each variable to its category; folded maps a case-folded,
// hyphenated spelling to the canonical one.
var (
	index  = make(map[string]Category)
	folded = make(map[string]string)
)

func init() {
	for cat, vars := range map[Category][]string{Name: names, Date: dates, Number: numbers, Plain: plain} {
		for _, v := range vars {
			index[v] = cat
			folded[fold(v)] = v
		}
	}
}

func fold(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

// Names returns the contributor-name variables.
func Names() []string { return clone(names) }

// Dates returns the date variables.
func Dates() []string { return clone(dates) }

// Numbers returns the number variables.
func Numbers() []string { return clone(numbers) }

// PlainVariables returns the plain string variables.
func PlainVariables() []string { return clone(plain) }

// All returns the complete variable vocabulary, sorted.
func All() []string {
	all := make([]string, 0, len(index))
	for v := range index {
		all = append(all, v)
	}
	sort.Strings(all)
	return all
}

// Canonical returns the canonical spelling of a variable. Underscores and
// case differences are tolerated, so "container_title" and "doi" resolve to
// "container-title" and "DOI".
func Canonical(name string) (string, bool) {
	if _, ok := index[name]; ok {
		return name, true
	}
	v, ok := folded[fold(name)]
	return v, ok
}

// CategoryOf returns the category of a variable, or Unknown.
func CategoryOf(name string) Category {
	v, ok := Canonical(name)
	if !ok {
		return Unknown
	}
	return index[v]
}

// IsKnown reports whether name belongs to the vocabulary.
func IsKnown(name string) bool {
	_, ok := Canonical(name)
	return ok
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
