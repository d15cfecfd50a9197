package schema

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/cslkit/internal/testutil"
	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) node.Node {
	t.Helper()
	tree, diags := node.Build(strings.NewReader(src), nil)
	require.Empty(t, diags)
	require.NotNil(t, tree.Root)
	return tree.Root
}

func TestDefault_Compiles(t *testing.T) {
	s := Default()
	assert.Equal(t, node.Namespace, s.Namespace())
	assert.Equal(t, []string{"style", "locale"}, s.Roots())

	elements := s.Elements()
	for _, tag := range []string{"style", "locale", "citation", "date-part", "else-if", "name"} {
		assert.Contains(t, elements, tag)
	}
	assert.Same(t, Default(), s)
}

func TestDefault_CoversEveryBoundTag(t *testing.T) {
	elements := Default().Elements()
	for _, tag := range node.DefaultTable().Tags() {
		assert.Contains(t, elements, tag, "bound tag %q has no grammar rule", tag)
	}
}

func TestValidate_ConformantDocuments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"independent style", testutil.StyleXML},
		{"dependent style", testutil.DependentStyleXML},
		{"english locale", testutil.LocaleXML("en-US", testutil.EnglishTerms)},
		{"german locale", testutil.LocaleXML("de-DE", testutil.GermanTerms)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Default().Validate(build(t, tt.src))
			assert.Empty(t, diags, diags.String())
		})
	}
}

func TestValidate_NonConformantStyle(t *testing.T) {
	diags := Default().Validate(build(t, testutil.NonConformantStyleXML))
	require.Len(t, diags, 3, diags.String())

	assert.Equal(t, 1, diags.Count(diag.CodeAttributeValue))
	assert.Equal(t, 1, diags.Count(diag.CodeUnknownAttribute))
	assert.Equal(t, 1, diags.Count(diag.CodeUnknownElement))

	for _, d := range diags {
		switch d.Code {
		case diag.CodeAttributeValue:
			assert.Equal(t, "/style", d.Path)
			assert.Equal(t, []string{"in-text", "note"}, d.Expected)
			assert.Contains(t, d.Message, "footnote")
		case diag.CodeUnknownAttribute:
			assert.Equal(t, "/style/citation/layout/text", d.Path)
			assert.Contains(t, d.Message, "colour")
		case diag.CodeUnknownElement:
			assert.Equal(t, "/style/citation/layout/blink", d.Path)
			assert.Contains(t, d.Expected, "group")
			assert.Greater(t, d.Line, 1)
		}
	}
}

func style(body string) string {
	return `<style xmlns="` + node.Namespace + `" class="note" version="1.0">
  <info><title>T</title><id>t</id><updated>2020-01-01T00:00:00+00:00</updated></info>
  ` + body + `
</style>`
}

func TestValidate_Codes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		path string
	}{
		{
			name: "wrong root",
			src:  `<citation xmlns="` + node.Namespace + `"/>`,
			code: diag.CodeRoot,
			path: "/citation",
		},
		{
			name: "wrong namespace",
			src:  `<style xmlns="urn:not-csl" class="note" version="1.0"/>`,
			code: diag.CodeNamespace,
			path: "/style",
		},
		{
			name: "foreign child",
			src:  style(`<x:ext xmlns:x="urn:ext"/>`),
			code: diag.CodeNamespace,
			path: "/style/ext",
		},
		{
			name: "element out of place",
			src:  style(`<macro name="m"><layout/></macro>`),
			code: diag.CodeUnexpectedElement,
			path: "/style/macro/layout",
		},
		{
			name: "missing required child",
			src:  style(`<citation><sort/><layout/></citation>`),
			code: diag.CodeMissingElement,
			path: "/style/citation/sort",
		},
		{
			name: "missing required attribute",
			src:  style(`<macro><text value="x"/></macro>`),
			code: diag.CodeMissingAttribute,
			path: "/style/macro",
		},
		{
			name: "bad boolean",
			src:  style(`<bibliography hanging-indent="yes"><layout/></bibliography>`),
			code: diag.CodeAttributeValue,
			path: "/style/bibliography",
		},
		{
			name: "bad integer",
			src:  style(`<citation et-al-min="-1"><layout/></citation>`),
			code: diag.CodeAttributeValue,
			path: "/style/citation",
		},
		{
			name: "unknown variable",
			src:  style(`<macro name="m"><text variable="colour"/></macro>`),
			code: diag.CodeAttributeValue,
			path: "/style/macro/text",
		},
		{
			name: "variable of the wrong category",
			src:  style(`<macro name="m"><date variable="title"/></macro>`),
			code: diag.CodeAttributeValue,
			path: "/style/macro/date",
		},
		{
			name: "bad list token",
			src:  style(`<macro name="m"><choose><if type="book blog"/></choose></macro>`),
			code: diag.CodeAttributeValue,
			path: "/style/macro/choose/if",
		},
		{
			name: "text in element-only content",
			src:  style(`<citation>stray<layout/></citation>`),
			code: diag.CodeUnexpectedText,
			path: "/style/citation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Default().Validate(build(t, tt.src))
			require.Len(t, diags, 1, diags.String())
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, tt.path, diags[0].Path)
		})
	}
}

func TestValidate_ContextualRules(t *testing.T) {
	// info/author/name carries text; names/name carries attributes.
	src := style(`<macro name="m"><names variable="author editor"><name form="short"/></names></macro>`)
	assert.Empty(t, Default().Validate(build(t, src)))

	src = style(`<macro name="m"><names variable="author"><name>Jane</name></names></macro>`)
	diags := Default().Validate(build(t, src))
	assert.True(t, diags.Has(diag.CodeUnexpectedText))

	// A locale date requires form; a rendering date requires variable.
	src = `<locale xmlns="` + node.Namespace + `" xml:lang="en-US"><date><date-part name="year"/></date></locale>`
	diags = Default().Validate(build(t, src))
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeMissingAttribute, diags[0].Code)
	assert.Equal(t, []string{"form"}, diags[0].Expected)
}

func TestValidate_NilRoot(t *testing.T) {
	assert.Nil(t, Default().Validate(nil))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		wantErr string
	}{
		{"empty", ``, "grammar is empty"},
		{"unknown key", "namespace: x\nroots: [a]\nbogus: 1\n", "failed to decode grammar"},
		{"no namespace", "roots: [a]\nelements: {a: {}}\n", "no namespace"},
		{"no roots", "namespace: x\nelements: {a: {}}\n", "no root elements"},
		{"root without rule", "namespace: x\nroots: [a]\n", `root element "a" has no rule`},
		{"unknown group", "namespace: x\nroots: [a]\nelements: {a: {groups: [g]}}\n", `unknown attribute group "g"`},
		{"unknown content group", "namespace: x\nroots: [a]\nelements: {a: {content: [g]}}\n", `unknown content group "g"`},
		{"unknown enum", "namespace: x\nroots: [a]\nelements: {a: {attributes: {b: {enum: e}}}}\n", `unknown enum "e"`},
		{"unknown type", "namespace: x\nroots: [a]\nelements: {a: {attributes: {b: {type: date}}}}\n", `unknown type "date"`},
		{"undeclared child", "namespace: x\nroots: [a]\nelements: {a: {children: [b]}}\n", `child "b" has no rule`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.grammar))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.yaml")
	testutil.WriteFile(t, path, `
namespace: urn:mini
roots: [doc]
elements:
  doc:
    attributes:
      flag: {type: boolean, required: true}
    children: [item]
  item:
    text: true
`)

	s, err := LoadFile(path)
	require.NoError(t, err)

	tree, _ := node.Build(strings.NewReader(`<doc xmlns="urn:mini" flag="true"><item>x</item></doc>`), nil)
	assert.Empty(t, s.Validate(tree.Root))

	tree, _ = node.Build(strings.NewReader(`<doc xmlns="urn:mini"><item/><other/></doc>`), nil)
	diags := s.Validate(tree.Root)
	assert.True(t, diags.Has(diag.CodeMissingAttribute))
	assert.True(t, diags.Has(diag.CodeUnknownElement))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open grammar")
}
