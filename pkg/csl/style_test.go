package csl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/cslkit/internal/testutil"
	"github.com/leapstack-labs/cslkit/pkg/csl/node"
	"github.com/leapstack-labs/cslkit/pkg/csl/render"
	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records the calls a stub root receives, in order.
type callLog struct {
	mu      sync.Mutex
	calls   []string
	locales [][]string
	items   []*render.Reference
	opts    []render.Options

	citation     string
	bibliography []string
	renderErr    error
}

func (c *callLog) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

type stubRoot struct {
	node.Element
	log *callLog
}

func (s *stubRoot) SetLocaleList(codes ...string) error {
	s.log.record("set-locale-list")
	s.log.locales = append(s.log.locales, codes)
	return nil
}

func (s *stubRoot) Citation() (node.CitationRenderer, error) {
	s.log.record("citation")
	return stubCitation{s.log}, nil
}

func (s *stubRoot) Bibliography() (node.BibliographyRenderer, error) {
	s.log.record("bibliography")
	return stubBibliography{s.log}, nil
}

type stubCitation struct{ log *callLog }

func (c stubCitation) Render(item *render.Reference, opts render.Options) (string, error) {
	c.log.record("render-citation")
	c.log.items = append(c.log.items, item)
	c.log.opts = append(c.log.opts, opts)
	return c.log.citation, c.log.renderErr
}

type stubBibliography struct{ log *callLog }

func (b stubBibliography) Render(items []*render.Reference, opts render.Options) ([]string, error) {
	b.log.record("render-bibliography")
	b.log.items = append(b.log.items, items...)
	b.log.opts = append(b.log.opts, opts)
	return b.log.bibliography, b.log.renderErr
}

func stubLoader(t *testing.T, log *callLog) *Loader {
	t.Helper()
	table := node.DefaultTable().Override(node.Variant{
		Name: "Style",
		New:  func() node.Node { return &stubRoot{log: log} },
	})
	l, _ := newTestLoader(t, WithBindingTable(table))
	return l
}

func TestStyle_LocaleListSetOnceBeforeRender(t *testing.T) {
	log := &callLog{citation: "(Doe 2020)", bibliography: []string{"Doe, J. (2020)."}}
	l := stubLoader(t, log)

	style, err := l.Style("apa", WithLocale("de-DE"))
	require.NoError(t, err)
	assert.IsType(t, &stubRoot{}, style.Root())
	assert.Equal(t, []string{"set-locale-list"}, log.calls, "locale list is set during construction")
	assert.Equal(t, [][]string{{"de-DE"}}, log.locales)

	ref := render.NewReference("doe2020", "book")
	_, err = style.RenderCitation(ref, render.Options{Locator: "12"})
	require.NoError(t, err)
	_, err = style.RenderBibliography([]*render.Reference{ref}, render.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"set-locale-list",
		"citation", "render-citation",
		"bibliography", "render-bibliography",
	}, log.calls)
	assert.Len(t, log.locales, 1)
}

func TestStyle_DefaultLocale(t *testing.T) {
	log := &callLog{}
	l := stubLoader(t, log)

	_, err := l.Style("dependent-journal")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{node.DefaultLocale}}, log.locales)
}

func TestStyle_RenderIsPureDelegation(t *testing.T) {
	log := &callLog{citation: "(Doe 2020)", bibliography: []string{"first", "second"}}
	l := stubLoader(t, log)
	style, err := l.Style("apa")
	require.NoError(t, err)

	ref := render.NewReference("doe2020", "book")
	opts := render.Options{Position: render.PositionIbid, Locator: "4", Label: "page"}

	out, err := style.RenderCitation(ref, opts)
	require.NoError(t, err)
	assert.Equal(t, "(Doe 2020)", out)
	assert.Same(t, ref, log.items[0])
	assert.Equal(t, opts, log.opts[0])

	refs := []*render.Reference{ref, render.NewReference("roe2019", "article")}
	entries, err := style.RenderBibliography(refs, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, entries)
	assert.Equal(t, refs, log.items[1:])

	log.renderErr = errors.New("formatter exploded")
	_, err = style.RenderCitation(ref, opts)
	assert.Same(t, log.renderErr, err)
	_, err = style.RenderBibliography(refs, opts)
	assert.Same(t, log.renderErr, err)
}

func TestStyle_PathPrecedence(t *testing.T) {
	l, dr := newTestLoader(t)

	byID, err := l.Style("apa")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dr.StylesDir, "apa.csl"), byID.Document().Source.Path())

	// A literal path that exists wins over the styles directory, even when
	// it looks like an identifier.
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "apa"), testutil.DependentStyleXML)
	t.Chdir(dir)

	literal, err := l.Style("apa")
	require.NoError(t, err)
	assert.Equal(t, "apa", literal.Document().Source.Path())
	n, ok := literal.Node()
	require.True(t, ok)
	info, _ := n.Info()
	assert.Equal(t, "Dependent Journal", info.Title())
}

func TestStyle_Unknown(t *testing.T) {
	l, dr := newTestLoader(t)

	for _, id := range []string{"nope", "", filepath.Join(dr.Root, "missing.csl")} {
		_, err := l.Style(id)
		require.ErrorIs(t, err, ErrUnknownStyle, "identifier %q", id)
		assert.NotErrorIs(t, err, os.ErrNotExist)

		var unknown *UnknownStyleError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, id, unknown.Identifier)
		assert.Contains(t, err.Error(), "is not a known style")
	}
}

func TestStyle_EveryDiscoveredStyleLoads(t *testing.T) {
	l, _ := newTestLoader(t)

	ids, err := l.AvailableStyles()
	require.NoError(t, err)
	for _, id := range ids {
		_, err := l.Style(id)
		assert.NoError(t, err, id)
	}
}

func TestStyleFromSource(t *testing.T) {
	l, _ := newTestLoader(t)

	style, err := l.StyleFromSource(resource.FromStream("inline", strings.NewReader(testutil.StyleXML)), WithLocale("fr-FR"))
	require.NoError(t, err)
	assert.True(t, style.Document().Conformant())

	n, ok := style.Node()
	require.True(t, ok)
	assert.Equal(t, []string{"fr-FR"}, n.LocaleCodes())
	term, ok := n.LookupTerm("and", "")
	require.True(t, ok)
	assert.Equal(t, "et", term.Value())

	_, err = l.StyleFromSource(resource.FromPath("/does/not/exist.csl"))
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestStyle_RootMustBeAStyle(t *testing.T) {
	l, _ := newTestLoader(t)

	src := resource.FromStream("locale", strings.NewReader(testutil.LocaleXML("en-US", testutil.EnglishTerms)))
	_, err := l.StyleFromSource(src)

	var rootErr *RootTypeError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, "locale", rootErr.Tag)
	assert.Equal(t, "style", rootErr.Want)
}

func TestStyle_LocalePrioritization(t *testing.T) {
	l, _ := newTestLoader(t)

	style, err := l.Style("apa", WithLocale("de-AT"))
	require.NoError(t, err)
	n, _ := style.Node()

	assert.Equal(t, []string{"de-AT"}, n.MissingLocales())

	tests := []struct {
		term, form string
		want       string
	}{
		{"and", "", "und auch"},
		{"editor", "short", "ed."},
		{"editor", "", "Herausgeber"},
		{"page", "short", "p."},
	}
	for _, tt := range tests {
		term, ok := n.LookupTerm(tt.term, tt.form)
		require.True(t, ok, tt.term)
		assert.Equal(t, tt.want, term.Single())
	}
}

func TestStyle_InvalidLocale(t *testing.T) {
	l, _ := newTestLoader(t)
	_, err := l.Style("apa", WithLocale("not a locale!!"))
	assert.ErrorContains(t, err, "invalid locale")
}

type echoFormatter struct{}

func (echoFormatter) FormatCitation(c *node.Citation, item *render.Reference, _ render.Options) (string, error) {
	layout, _ := c.Layout()
	return layout.AttrOr("prefix", "") + item.ID + layout.AttrOr("suffix", ""), nil
}

func (echoFormatter) FormatBibliography(_ *node.Bibliography, items []*render.Reference, _ render.Options) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID+".")
	}
	return out, nil
}

func TestStyle_WithFormatter(t *testing.T) {
	l, _ := newTestLoader(t)
	ref := render.NewReference("doe2020", "book")

	style, err := l.Style("apa", WithFormatter(echoFormatter{}))
	require.NoError(t, err)

	out, err := style.RenderCitation(ref, render.Options{})
	require.NoError(t, err)
	assert.Equal(t, "(doe2020)", out)

	entries, err := style.RenderBibliography([]*render.Reference{ref}, render.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"doe2020."}, entries)

	plain, err := l.Style("apa")
	require.NoError(t, err)
	_, err = plain.RenderCitation(ref, render.Options{})
	assert.ErrorIs(t, err, node.ErrNoFormatter)
}

func TestStyle_MissingStructureSurfacesOnRender(t *testing.T) {
	l, _ := newTestLoader(t)
	ref := render.NewReference("doe2020", "book")

	dependent, err := l.Style("dependent-journal", WithFormatter(echoFormatter{}))
	require.NoError(t, err, "missing citation is not a load error")

	_, err = dependent.RenderCitation(ref, render.Options{})
	var missing *node.MissingElementError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "citation", missing.Tag)

	broken, err := l.Style("broken", WithFormatter(echoFormatter{}))
	require.NoError(t, err)
	_, err = broken.RenderBibliography([]*render.Reference{ref}, render.Options{})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "bibliography", missing.Tag)
}

func TestLoadStyle_DocumentOnly(t *testing.T) {
	log := &callLog{}
	l := stubLoader(t, log)

	doc, err := l.LoadStyle("apa")
	require.NoError(t, err)
	assert.IsType(t, &stubRoot{}, doc.Root)
	assert.Empty(t, log.calls, "no locale list is set on a bare document")

	_, err = l.LoadStyle("nope")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}
