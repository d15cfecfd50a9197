// Package render defines the data handed to a style when rendering: the
// reference items and the per-call render options.
package render

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/cslkit/pkg/csl/variable"
)

// Name is a single contributor name.
type Name struct {
	Family              string `mapstructure:"family"`
	Given               string `mapstructure:"given"`
	Suffix              string `mapstructure:"suffix"`
	DroppingParticle    string `mapstructure:"dropping-particle"`
	NonDroppingParticle string `mapstructure:"non-dropping-particle"`
	Literal             string `mapstructure:"literal"`
}

// Date is a (possibly partial) calendar date. Zero fields are unset.
type Date struct {
	Year    int    `mapstructure:"year"`
	Month   int    `mapstructure:"month"`
	Day     int    `mapstructure:"day"`
	Season  int    `mapstructure:"season"`
	Circa   bool   `mapstructure:"circa"`
	Literal string `mapstructure:"literal"`
}

// VariableError is returned when a value does not fit the variable it is
// assigned to.
type VariableError struct {
	Variable string
	Category variable.Category
	Reason   string
}

func (e *VariableError) Error() string {
	if e.Category == variable.Unknown {
		return fmt.Sprintf("unknown variable %q", e.Variable)
	}
	return fmt.Sprintf("variable %q (%s): %s", e.Variable, e.Category, e.Reason)
}

// Reference is a bibliographic item. Values are stored per variable
// category; variable names are canonicalized through the taxonomy.
type Reference struct {
	ID   string
	Type string

	names   map[string][]Name
	dates   map[string]Date
	numbers map[string]string
	plain   map[string]string
}

// NewReference creates an empty reference.
func NewReference(id, typ string) *Reference {
	return &Reference{
		ID:      id,
		Type:    typ,
		names:   make(map[string][]Name),
		dates:   make(map[string]Date),
		numbers: make(map[string]string),
		plain:   make(map[string]string),
	}
}

func (r *Reference) canonical(name string, want variable.Category) (string, error) {
	v, ok := variable.Canonical(name)
	if !ok {
		return "", &VariableError{Variable: name}
	}
	if cat := variable.CategoryOf(v); cat != want {
		return "", &VariableError{Variable: v, Category: cat, Reason: fmt.Sprintf("not a %s variable", want)}
	}
	return v, nil
}

// SetNames assigns contributor names.
func (r *Reference) SetNames(name string, names ...Name) error {
	v, err := r.canonical(name, variable.Name)
	if err != nil {
		return err
	}
	r.names[v] = append([]Name(nil), names...)
	return nil
}

// SetDate assigns a date.
func (r *Reference) SetDate(name string, d Date) error {
	v, err := r.canonical(name, variable.Date)
	if err != nil {
		return err
	}
	r.dates[v] = d
	return nil
}

// SetNumber assigns a number variable. Numbers are kept as text so ranges
// such as "12-14" survive.
func (r *Reference) SetNumber(name, value string) error {
	v, err := r.canonical(name, variable.Number)
	if err != nil {
		return err
	}
	r.numbers[v] = value
	return nil
}

// SetPlain assigns a plain string variable.
func (r *Reference) SetPlain(name, value string) error {
	v, err := r.canonical(name, variable.Plain)
	if err != nil {
		return err
	}
	r.plain[v] = value
	return nil
}

// Names returns the names assigned to a name variable.
func (r *Reference) Names(name string) ([]Name, bool) {
	v, _ := variable.Canonical(name)
	n, ok := r.names[v]
	return n, ok
}

// Date returns the date assigned to a date variable.
func (r *Reference) Date(name string) (Date, bool) {
	v, _ := variable.Canonical(name)
	d, ok := r.dates[v]
	return d, ok
}

// Number returns the value of a number variable.
func (r *Reference) Number(name string) (string, bool) {
	v, _ := variable.Canonical(name)
	n, ok := r.numbers[v]
	return n, ok
}

// Plain returns the value of a plain variable.
func (r *Reference) Plain(name string) (string, bool) {
	v, _ := variable.Canonical(name)
	s, ok := r.plain[v]
	return s, ok
}

// Has reports whether any value is assigned to the variable.
func (r *Reference) Has(name string) bool {
	v, ok := variable.Canonical(name)
	if !ok {
		return false
	}
	switch variable.CategoryOf(v) {
	case variable.Name:
		_, ok = r.names[v]
	case variable.Date:
		_, ok = r.dates[v]
	case variable.Number:
		_, ok = r.numbers[v]
	default:
		_, ok = r.plain[v]
	}
	return ok
}

// Variables returns the assigned variables, sorted.
func (r *Reference) Variables() []string {
	out := make([]string, 0, len(r.names)+len(r.dates)+len(r.numbers)+len(r.plain))
	for v := range r.names {
		out = append(out, v)
	}
	for v := range r.dates {
		out = append(out, v)
	}
	for v := range r.numbers {
		out = append(out, v)
	}
	for v := range r.plain {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ReferenceFromMap builds a reference from loosely typed field data such as
// decoded CSL-JSON. Name variables take a list of name maps, date variables a
// date map; numbers and plain values are converted to text.
func ReferenceFromMap(id, typ string, fields map[string]any) (*Reference, error) {
	ref := NewReference(id, typ)
	for key, raw := range fields {
		v, ok := variable.Canonical(key)
		if !ok {
			return nil, &VariableError{Variable: key}
		}

		var err error
		switch variable.CategoryOf(v) {
		case variable.Name:
			var names []Name
			if err = decodeWeak(raw, &names); err == nil {
				err = ref.SetNames(v, names...)
			}
		case variable.Date:
			var d Date
			if err = decodeWeak(raw, &d); err == nil {
				err = ref.SetDate(v, d)
			}
		case variable.Number:
			var s string
			if err = decodeWeak(raw, &s); err == nil {
				err = ref.SetNumber(v, s)
			}
		default:
			var s string
			if err = decodeWeak(raw, &s); err == nil {
				err = ref.SetPlain(v, s)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return ref, nil
}

func decodeWeak(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
