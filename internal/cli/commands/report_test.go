package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/cslkit/internal/cli/testutil"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
)

func sampleResults() []ValidationResult {
	return []ValidationResult{
		{
			ValidationTarget: ValidationTarget{Kind: KindStyle, ID: "apa"},
			Path:             "/csl/styles/apa.csl",
			Conformant:       true,
		},
		{
			ValidationTarget: ValidationTarget{Kind: KindStyle, ID: "broken"},
			Path:             "/csl/styles/broken.csl",
			Diagnostics: diag.List{
				{Code: diag.CodeXMLParse, Message: "unexpected end of input", Line: 4},
			},
		},
		{
			ValidationTarget: ValidationTarget{Kind: KindLocale, ID: "xx-XX"},
			Error:            "unknown locale",
		},
	}
}

func TestReportValidation_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	results := sampleResults()

	require.NoError(t, reportValidation(tr.Renderer, summarize(results), results))

	out := tr.Output()
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "✓ style apa")
	assert.Contains(t, out, "! style broken  1 diagnostic")
	assert.Contains(t, out, "unexpected end of input")
	assert.Contains(t, out, "✗ locale xx-XX  unknown locale")
	assert.Contains(t, out, "2 of 3 documents do not conform")
}

func TestReportValidation_TextOnTTY(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	tr := testutil.NewTestRendererText()
	results := sampleResults()[:1]

	require.NoError(t, reportValidation(tr.Renderer, summarize(results), results))

	out := tr.Output()
	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "✓ style apa")
	assert.Contains(t, out, "All 1 document conform")
}

func TestReportValidation_Structured(t *testing.T) {
	results := sampleResults()

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		require.NoError(t, reportValidation(tr.Renderer, summarize(results), results))

		var got ValidateOutput
		require.NoError(t, json.Unmarshal([]byte(tr.Output()), &got))
		assert.Equal(t, ValidateSummary{Documents: 3, Conformant: 1, Failed: 2}, got.Summary)
		assert.Equal(t, "xx-XX", got.Results[2].ID)
	})

	t.Run("yaml", func(t *testing.T) {
		tr := testutil.NewTestRendererYAML()
		require.NoError(t, reportValidation(tr.Renderer, summarize(results), results))

		var got ValidateOutput
		require.NoError(t, yaml.Unmarshal([]byte(tr.Output()), &got))
		assert.Equal(t, 2, got.Summary.Failed)
		assert.Equal(t, KindLocale, got.Results[2].Kind)
		assert.Equal(t, "broken", got.Results[1].ID)
	})
}

func TestReportInspect(t *testing.T) {
	out := InspectOutput{
		Source:     "locales-en-US.xml",
		Conformant: true,
		Root: &InspectNode{Tag: "locale", Type: "Locale", Line: 1, Column: 1, Children: []*InspectNode{
			{Tag: "terms", Type: "Terms", Line: 2, Column: 3},
		}},
	}

	t.Run("markdown fences the tree", func(t *testing.T) {
		tr := testutil.NewTestRendererAuto()
		require.NoError(t, reportInspect(tr.Renderer, out))

		got := tr.Output()
		testutil.AssertValidMarkdown(t, got)
		assert.True(t, strings.HasPrefix(got, "# locales-en-US.xml"))
		assert.Contains(t, got, "```\nlocale (Locale)")
		assert.Contains(t, got, "└── terms (Terms) 2:3")
	})

	t.Run("text has no fences", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		tr := testutil.NewTestRendererText()
		require.NoError(t, reportInspect(tr.Renderer, out))

		got := tr.Output()
		testutil.AssertNoANSI(t, got)
		assert.NotContains(t, got, "```")
		assert.Contains(t, got, "locale (Locale) 1:1")
	})

	t.Run("non-conformant lists diagnostics", func(t *testing.T) {
		bad := out
		bad.Conformant = false
		bad.Diagnostics = diag.List{{Code: diag.CodeXMLParse, Message: "unexpected EOF"}}
		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, reportInspect(tr.Renderer, bad))

		assert.Contains(t, tr.Output(), "! 1 diagnostic")
		assert.Contains(t, tr.Output(), "unexpected EOF")
	})
}
