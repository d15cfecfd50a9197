package render

import (
	"testing"

	"github.com/leapstack-labs/cslkit/pkg/csl/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference_Setters(t *testing.T) {
	ref := NewReference("doe2020", "book")

	require.NoError(t, ref.SetNames("author", Name{Family: "Doe", Given: "Jane"}))
	require.NoError(t, ref.SetDate("issued", Date{Year: 2020}))
	require.NoError(t, ref.SetNumber("volume", "12"))
	require.NoError(t, ref.SetPlain("container_title", "Journal of Tests"))

	names, ok := ref.Names("author")
	require.True(t, ok)
	assert.Equal(t, "Doe", names[0].Family)

	d, ok := ref.Date("issued")
	require.True(t, ok)
	assert.Equal(t, 2020, d.Year)

	title, ok := ref.Plain("container-title")
	require.True(t, ok)
	assert.Equal(t, "Journal of Tests", title)

	assert.True(t, ref.Has("volume"))
	assert.False(t, ref.Has("issue"))
	assert.Equal(t, []string{"author", "container-title", "issued", "volume"}, ref.Variables())
}

func TestReference_CategoryMismatch(t *testing.T) {
	ref := NewReference("x", "book")

	err := ref.SetPlain("author", "Doe")
	var verr *VariableError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "author", verr.Variable)
	assert.Equal(t, variable.Name, verr.Category)
	assert.Contains(t, err.Error(), "not a plain variable")

	err = ref.SetNumber("nonsense", "1")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), `unknown variable "nonsense"`)
}

func TestReferenceFromMap(t *testing.T) {
	ref, err := ReferenceFromMap("smith", "article-journal", map[string]any{
		"author": []map[string]any{
			{"family": "Smith", "given": "Ann"},
			{"family": "Jones", "given": "Bo"},
		},
		"issued": map[string]any{"year": "2019", "month": 4},
		"volume": 7,
		"title":  "On Testing",
	})
	require.NoError(t, err)

	names, _ := ref.Names("author")
	assert.Len(t, names, 2)
	d, _ := ref.Date("issued")
	assert.Equal(t, Date{Year: 2019, Month: 4}, d)
	vol, _ := ref.Number("volume")
	assert.Equal(t, "7", vol)

	_, err = ReferenceFromMap("bad", "book", map[string]any{"colour": "blue"})
	assert.Error(t, err)

	_, err = ReferenceFromMap("bad", "book", map[string]any{
		"issued": map[string]any{"year": 2019, "era": "CE"},
	})
	assert.Error(t, err, "unused date keys should be rejected")
}

func TestDecodeOptions(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{
		"position":   "ibid",
		"locator":    "12",
		"note_index": "3",
	})
	require.NoError(t, err)
	assert.Equal(t, Options{Position: PositionIbid, Locator: "12", NoteIndex: 3}, opts)

	_, err = DecodeOptions(map[string]any{"positon": "first"})
	assert.Error(t, err, "misspelled keys should fail")

	_, err = DecodeOptions(map[string]any{"position": "last"})
	assert.ErrorContains(t, err, "invalid position")

	_, err = DecodeOptions(map[string]any{"suppress_author": true, "author_only": true})
	assert.ErrorContains(t, err, "mutually exclusive")
}
