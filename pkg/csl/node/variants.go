package node

import "strings"

// Variants returns the closed set of CSL node types. Each entry binds the
// tag derived from its name.
func Variants() []Variant {
	return []Variant{
		// root and metadata
		{"Style", func() Node { return &Style{} }},
		{"Info", func() Node { return &Info{} }},
		{"Title", func() Node { return &Title{} }},
		{"TitleShort", func() Node { return &TitleShort{} }},
		{"ID", func() Node { return &ID{} }},
		{"Link", func() Node { return &Link{} }},
		{"Author", func() Node { return &Author{} }},
		{"Contributor", func() Node { return &Contributor{} }},
		{"Translator", func() Node { return &Translator{} }},
		{"Email", func() Node { return &Email{} }},
		{"URI", func() Node { return &URI{} }},
		{"Category", func() Node { return &Category{} }},
		{"ISSN", func() Node { return &ISSN{} }},
		{"EISSN", func() Node { return &EISSN{} }},
		{"ISSNL", func() Node { return &ISSNL{} }},
		{"Summary", func() Node { return &Summary{} }},
		{"Published", func() Node { return &Published{} }},
		{"Updated", func() Node { return &Updated{} }},
		{"Rights", func() Node { return &Rights{} }},

		// citation structure
		{"Citation", func() Node { return &Citation{} }},
		{"Bibliography", func() Node { return &Bibliography{} }},
		{"Macro", func() Node { return &Macro{} }},
		{"Layout", func() Node { return &Layout{} }},
		{"Sort", func() Node { return &Sort{} }},
		{"Key", func() Node { return &Key{} }},

		// locale data
		{"Locale", func() Node { return &Locale{} }},
		{"Terms", func() Node { return &Terms{} }},
		{"Term", func() Node { return &Term{} }},
		{"Single", func() Node { return &Single{} }},
		{"Multiple", func() Node { return &Multiple{} }},
		{"StyleOptions", func() Node { return &StyleOptions{} }},

		// rendering elements
		{"Text", func() Node { return &Text{} }},
		{"Date", func() Node { return &Date{} }},
		{"DatePart", func() Node { return &DatePart{} }},
		{"Number", func() Node { return &Number{} }},
		{"Names", func() Node { return &Names{} }},
		{"Name", func() Node { return &Name{} }},
		{"NamePart", func() Node { return &NamePart{} }},
		{"EtAl", func() Node { return &EtAl{} }},
		{"Substitute", func() Node { return &Substitute{} }},
		{"Label", func() Node { return &Label{} }},
		{"Group", func() Node { return &Group{} }},
		{"Choose", func() Node { return &Choose{} }},
		{"If", func() Node { return &If{} }},
		{"ElseIf", func() Node { return &ElseIf{} }},
		{"Else", func() Node { return &Else{} }},
	}
}

// Info holds style or locale metadata.
type Info struct{ Element }

// Title returns the title text.
func (i *Info) Title() string {
	if t, ok := First[*Title](i); ok {
		return strings.TrimSpace(t.Text())
	}
	return ""
}

// ID returns the style URI from the id element.
func (i *Info) ID() string {
	if id, ok := First[*ID](i); ok {
		return strings.TrimSpace(id.Text())
	}
	return ""
}

// Links returns the link elements.
func (i *Info) Links() []*Link { return All[*Link](i) }

// Categories returns the category elements.
func (i *Info) Categories() []*Category { return All[*Category](i) }

// Updated returns the last-modified timestamp text.
func (i *Info) Updated() string {
	if u, ok := First[*Updated](i); ok {
		return strings.TrimSpace(u.Text())
	}
	return ""
}

// Title is the style title.
type Title struct{ Element }

// TitleShort is the abbreviated style title.
type TitleShort struct{ Element }

// ID is the style identifier URI.
type ID struct{ Element }

// Link references a related resource.
type Link struct{ Element }

// Rel returns the link relation, e.g. "self" or "independent-parent".
func (l *Link) Rel() string { return l.AttrOr("rel", "") }

// Href returns the link target.
func (l *Link) Href() string { return l.AttrOr("href", "") }

// Author is a style author.
type Author struct{ Element }

// Contributor is a style contributor.
type Contributor struct{ Element }

// Translator is a locale translator.
type Translator struct{ Element }

// Email is a contact address.
type Email struct{ Element }

// URI is a contact URI.
type URI struct{ Element }

// Category classifies a style by citation format or field.
type Category struct{ Element }

// CitationFormat returns the citation-format attribute.
func (c *Category) CitationFormat() string { return c.AttrOr("citation-format", "") }

// Field returns the field attribute.
func (c *Category) Field() string { return c.AttrOr("field", "") }

// ISSN is a journal ISSN.
type ISSN struct{ Element }

// EISSN is a journal electronic ISSN.
type EISSN struct{ Element }

// ISSNL is a journal linking ISSN.
type ISSNL struct{ Element }

// Summary is a style description.
type Summary struct{ Element }

// Published is the publication timestamp.
type Published struct{ Element }

// Updated is the last-modified timestamp.
type Updated struct{ Element }

// Rights is the license statement.
type Rights struct{ Element }

// Macro is a named, reusable group of rendering elements.
type Macro struct{ Element }

// Name returns the macro name.
func (m *Macro) Name() string { return m.AttrOr("name", "") }

// Layout holds the rendering elements of a citation or bibliography.
type Layout struct{ Element }

// Sort lists the sort keys of a citation or bibliography.
type Sort struct{ Element }

// Keys returns the sort keys in priority order.
func (s *Sort) Keys() []*Key { return All[*Key](s) }

// Key is a single sort key.
type Key struct{ Element }

// Descending reports whether the key sorts in descending order.
func (k *Key) Descending() bool { return k.AttrOr("sort", "ascending") == "descending" }

// Terms lists localized terms.
type Terms struct{ Element }

// Term is a localized term.
type Term struct{ Element }

// Name returns the term name.
func (t *Term) Name() string { return t.AttrOr("name", "") }

// Form returns the term form, "long" when unset.
func (t *Term) Form() string { return t.AttrOr("form", "long") }

// Value returns the term text for terms without singular/plural variants.
func (t *Term) Value() string { return strings.TrimSpace(t.Text()) }

// Single returns the singular form, falling back to Value.
func (t *Term) Single() string {
	if s, ok := First[*Single](t); ok {
		return strings.TrimSpace(s.Text())
	}
	return t.Value()
}

// Multiple returns the plural form, falling back to Value.
func (t *Term) Multiple() string {
	if m, ok := First[*Multiple](t); ok {
		return strings.TrimSpace(m.Text())
	}
	return t.Value()
}

// Single is the singular form of a term.
type Single struct{ Element }

// Multiple is the plural form of a term.
type Multiple struct{ Element }

// StyleOptions holds locale-specific options.
type StyleOptions struct{ Element }

// Text renders a variable, macro, term or literal value.
type Text struct{ Element }

// Date renders a date variable, or defines a localized date format when it
// appears inside a locale.
type Date struct{ Element }

// Variable returns the date variable.
func (d *Date) Variable() string { return d.AttrOr("variable", "") }

// Form returns the localized date form ("numeric" or "text"), if any.
func (d *Date) Form() string { return d.AttrOr("form", "") }

// Parts returns the date-part children.
func (d *Date) Parts() []*DatePart { return All[*DatePart](d) }

// DatePart renders one component of a date.
type DatePart struct{ Element }

// Number renders a number variable.
type Number struct{ Element }

// Names renders one or more name variables.
type Names struct{ Element }

// Variables returns the space-separated name variables.
func (n *Names) Variables() []string { return strings.Fields(n.AttrOr("variable", "")) }

// Name configures name rendering. Inside info elements it holds a person name.
type Name struct{ Element }

// NamePart formats the given or family part of a name.
type NamePart struct{ Element }

// EtAl configures the et-al term.
type EtAl struct{ Element }

// Substitute lists fallbacks for empty names.
type Substitute struct{ Element }

// Label renders the term matching a variable.
type Label struct{ Element }

// Group renders its children with a delimiter, suppressing empty output.
type Group struct{ Element }

// Choose holds conditional branches.
type Choose struct{ Element }

// Branches returns the if, else-if and else children in order.
func (c *Choose) Branches() []Node {
	var out []Node
	for _, ch := range c.children {
		switch ch.(type) {
		case *If, *ElseIf, *Else:
			out = append(out, ch)
		}
	}
	return out
}

// If is the first conditional branch.
type If struct{ Element }

// ElseIf is an additional conditional branch.
type ElseIf struct{ Element }

// Else is the fallback branch.
type Else struct{ Element }
