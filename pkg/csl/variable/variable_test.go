package variable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomy_DisjointAndExhaustive(t *testing.T) {
	seen := make(map[string]Category)
	groups := map[Category][]string{
		Name:   Names(),
		Date:   Dates(),
		Number: Numbers(),
		Plain:  PlainVariables(),
	}

	for cat, vars := range groups {
		for _, v := range vars {
			prev, dup := seen[v]
			require.False(t, dup, "variable %q in both %s and %s", v, prev, cat)
			seen[v] = cat
		}
	}

	all := All()
	assert.Len(t, all, len(seen), "All() should be the union of the categories")
	for _, v := range all {
		cat, ok := seen[v]
		require.True(t, ok, "variable %q missing from every category", v)
		assert.Equal(t, cat, CategoryOf(v), "CategoryOf(%q)", v)
	}
}

func TestTaxonomy_CitationLabelAndNumberAreSeparate(t *testing.T) {
	assert.Equal(t, Plain, CategoryOf("citation-label"))
	assert.Equal(t, Plain, CategoryOf("citation-number"))
	assert.False(t, IsKnown("citation-labelcitation-number"))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"container-title", "container-title", true},
		{"container_title", "container-title", true},
		{"doi", "DOI", true},
		{"url", "URL", true},
		{"archive_location", "archive_location", true},
		{"event_date", "event-date", true},
		{"not-a-variable", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Canonical(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "name", Name.String())
	assert.Equal(t, "date", Date.String())
	assert.Equal(t, "number", Number.String())
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, Unknown, CategoryOf("bogus"))
}
