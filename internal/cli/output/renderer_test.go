package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeYAML, false, ModeYAML},
	}
	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestMode_Structured(t *testing.T) {
	assert.True(t, ModeJSON.Structured())
	assert.True(t, ModeYAML.Structured())
	assert.False(t, ModeText.Structured())
	assert.False(t, ModeMarkdown.Structured())
	assert.False(t, ModeAuto.Structured())
}

func TestNewRenderer_NonFileIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_MarkdownOutput(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)

	r.Header(1, "Styles")
	r.Success("all good")
	r.Warning("careful")
	r.Muted("quiet")
	r.StatusLine("apa", "success", "")
	r.StatusLine("broken", "error", "3 diagnostics")
	r.Error("failed")

	got := out.String()
	assert.Contains(t, got, "# Styles\n\n")
	assert.Contains(t, got, "✓ all good\n")
	assert.Contains(t, got, "! careful\n")
	assert.Contains(t, got, "quiet\n")
	assert.Contains(t, got, "✓ apa\n")
	assert.Contains(t, got, "✗ broken  3 diagnostics\n")
	assert.Equal(t, "✗ failed\n", errOut.String())
	assert.NotContains(t, got, "\x1b[")
}

func TestRenderer_TextOutputWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	r, out, _ := newTestRenderer(ModeText, true)

	r.Header(2, "Locales")
	r.StatusLine("apa", "warning", "1 diagnostic")

	assert.Equal(t, "Locales\n! apa  1 diagnostic\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]string{{"apa", "APA"}, {"mla", "MLA"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table([]string{"ID", "Title"}, rows)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "| id | title |", strings.ToLower(lines[0]))
		assert.Equal(t, "| apa | APA |", lines[2])
	})

	t.Run("text", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		r, out, _ := newTestRenderer(ModeText, true)
		r.Table([]string{"ID", "Title"}, rows)
		got := out.String()
		assert.Contains(t, got, "┌")
		assert.Contains(t, got, "apa")
		assert.Contains(t, got, "MLA")
	})
}

func TestRenderer_Structured(t *testing.T) {
	type doc struct {
		ID    string `json:"id" yaml:"id"`
		Count int    `json:"count" yaml:"count"`
	}

	r, out, _ := newTestRenderer(ModeJSON, false)
	require.NoError(t, r.Structured(doc{ID: "apa", Count: 2}))
	var fromJSON doc
	require.NoError(t, json.Unmarshal(out.Bytes(), &fromJSON))
	assert.Equal(t, doc{ID: "apa", Count: 2}, fromJSON)

	r, out, _ = newTestRenderer(ModeYAML, false)
	require.NoError(t, r.Structured(doc{ID: "apa", Count: 2}))
	assert.Equal(t, "id: apa\ncount: 2\n", out.String())
	var fromYAML doc
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &fromYAML))
	assert.Equal(t, "apa", fromYAML.ID)
}

func TestRenderer_ConcurrentPrintln(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Println("line")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, strings.Count(out.String(), "line\n"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Zero", FormatHeader(0, "Zero"))
	assert.Equal(t, "- **Class:** in-text", FormatKeyValue("Class", "in-text"))
}

func TestRenderer_Writers(t *testing.T) {
	r := NewRendererWithTTY(os.Stdout, os.Stderr, false, ModeText)
	assert.Same(t, os.Stdout, r.Writer())
	assert.Same(t, os.Stderr, r.ErrWriter())
	assert.Equal(t, ModeText, r.Mode())
}
