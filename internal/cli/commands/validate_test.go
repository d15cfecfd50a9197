package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cslkit/internal/testutil"
	"github.com/leapstack-labs/cslkit/pkg/csl"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
)

func TestValidateCommand_AllStyles(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConformant)

	var got ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, ValidateSummary{Documents: 4, Conformant: 2, Failed: 2}, got.Summary)
	require.Len(t, got.Results, 4)

	byID := make(map[string]ValidationResult)
	for _, res := range got.Results {
		assert.Equal(t, KindStyle, res.Kind)
		byID[res.ID] = res
	}
	assert.True(t, byID["apa"].Conformant)
	assert.Equal(t, filepath.Join(dr.StylesDir, "apa.csl"), byID["apa"].Path)
	assert.True(t, byID["dependent-journal"].Conformant)
	assert.False(t, byID["broken"].Conformant)
	assert.NotEmpty(t, byID["broken"].Diagnostics)
	assert.True(t, byID["truncated"].Diagnostics.Has(diag.CodeXMLParse))
}

func TestValidateCommand_SelectedStyles(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "json"), "apa", "dependent-journal")
	require.NoError(t, err)

	var got ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ValidateSummary{Documents: 2, Conformant: 2}, got.Summary)
	// Results keep argument order.
	assert.Equal(t, "apa", got.Results[0].ID)
	assert.Equal(t, "dependent-journal", got.Results[1].ID)
}

func TestValidateCommand_UnknownStyle(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "json"), "nope")
	require.ErrorIs(t, err, ErrNotConformant)

	var got ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 1)
	assert.False(t, got.Results[0].Conformant)
	assert.Contains(t, got.Results[0].Error, "nope")
}

func TestValidateCommand_Locales(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "json"), "apa", "--locales")
	require.NoError(t, err)

	var got ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Summary.Documents)

	var locales []string
	for _, res := range got.Results {
		if res.Kind == KindLocale {
			locales = append(locales, res.ID)
			assert.True(t, res.Conformant, "locale %s should conform", res.ID)
		}
	}
	assert.Equal(t, []string{"de-DE", "en-US", "fr-FR"}, locales)
}

func TestValidateOne_LocaleEditIsSeen(t *testing.T) {
	dr := testutil.WriteDataRoot(t)
	l, err := csl.NewLoader(resource.ConfigFromRoot(dr.Root), csl.WithWarningHandler(func(*csl.Document) {}))
	require.NoError(t, err)

	target := ValidationTarget{Kind: KindLocale, ID: "fr-FR"}
	// Style resolution caches the locale chain on the loader.
	_, err = l.LoadLocale("fr-FR")
	require.NoError(t, err)
	assert.True(t, validateOne(l, target).Conformant)

	testutil.WriteFile(t, filepath.Join(dr.LocalesDir, "locales-fr-FR.xml"),
		`<locale xmlns="http://purl.org/net/xbiblio/csl" version="1.0"><bogus/></locale>`)

	res := validateOne(l, target)
	assert.False(t, res.Conformant, "edited locale file should be re-read")
	assert.NotEmpty(t, res.Diagnostics)
}

func TestValidateCommand_TextOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "text"), "apa", "broken")
	require.ErrorIs(t, err, ErrNotConformant)

	assert.Contains(t, out, "✓ style apa")
	assert.Contains(t, out, "! style broken")
	assert.Contains(t, out, "1 of 2 documents do not conform")
	assert.NotContains(t, out, "\x1b[")
}

func TestValidateCommand_AllConform(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewValidateCommand(), testConfig(dr, "markdown"), "apa")
	require.NoError(t, err)
	assert.Contains(t, out, "All 1 document conform")
}

func TestTargetsForPaths(t *testing.T) {
	paths := []string{
		"/data/csl/locales/locales-de-DE.xml",
		"/data/csl/styles/apa.csl",
		"/data/csl/styles/notes.txt",
	}

	tests := []struct {
		name           string
		includeLocales bool
		want           []ValidationTarget
	}{
		{
			name: "styles only",
			want: []ValidationTarget{{Kind: KindStyle, ID: "apa"}},
		},
		{
			name:           "with locales",
			includeLocales: true,
			want: []ValidationTarget{
				{Kind: KindLocale, ID: "de-DE"},
				{Kind: KindStyle, ID: "apa"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetsForPaths(paths, tt.includeLocales))
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []ValidationResult{
		{Conformant: true},
		{Conformant: false},
		{Error: "missing"},
	}
	assert.Equal(t, ValidateSummary{Documents: 3, Conformant: 1, Failed: 2}, summarize(results))
}
