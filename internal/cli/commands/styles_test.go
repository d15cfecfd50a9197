package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cslkit/internal/testutil"
)

func TestStylesCommand_JSON(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewStylesCommand(), testConfig(dr, "json"))
	require.NoError(t, err)

	var got struct {
		Count  int `json:"count"`
		Styles []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Parent      string `json:"parent"`
			Diagnostics int    `json:"diagnostics"`
		} `json:"styles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, 4, got.Count)
	ids := make([]string, 0, len(got.Styles))
	for _, s := range got.Styles {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"apa", "broken", "dependent-journal", "truncated"}, ids)
	assert.Equal(t, "Test Author-Date", got.Styles[0].Title)
	assert.Equal(t, "http://www.zotero.org/styles/apa", got.Styles[2].Parent)
	assert.Positive(t, got.Styles[1].Diagnostics, "broken style should carry diagnostics")
}

func TestStylesCommand_Filters(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	tests := []struct {
		name    string
		args    []string
		wantIDs []string
		wantErr string
	}{
		{
			name:    "dependent only",
			args:    []string{"--dependent"},
			wantIDs: []string{"dependent-journal"},
		},
		{
			name:    "independent only",
			args:    []string{"--independent"},
			wantIDs: []string{"apa", "broken", "truncated"},
		},
		{
			name:    "dependents of apa",
			args:    []string{"--parent", "apa"},
			wantIDs: []string{"dependent-journal"},
		},
		{
			name:    "dependents by URI",
			args:    []string{"--parent", "http://www.zotero.org/styles/apa"},
			wantIDs: []string{"dependent-journal"},
		},
		{
			name:    "unknown parent",
			args:    []string{"--parent", "nope"},
			wantErr: `unknown parent style "nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, NewStylesCommand(), testConfig(dr, "json"), tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			var got StylesOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			ids := make([]string, 0, len(got.Styles))
			for _, s := range got.Styles {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStylesCommand_MutuallyExclusiveFlags(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	_, err := runCommand(t, NewStylesCommand(), testConfig(dr, "json"), "--dependent", "--independent")
	require.Error(t, err)
}

func TestStylesCommand_Markdown(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewStylesCommand(), testConfig(dr, "markdown"))
	require.NoError(t, err)

	assert.Contains(t, out, "# Styles (4 total)")
	assert.Contains(t, out, "| apa")
	assert.Contains(t, out, "Test Author-Date")
	// The dependent's parent URI is resolved to the registered style id.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "dependent-journal") {
			assert.Contains(t, line, "| apa")
		}
	}
	assert.NotContains(t, out, "\x1b[", "markdown output must not contain ANSI codes")
}

func TestStylesCommand_Empty(t *testing.T) {
	dr := testutil.WriteDataRoot(t)
	cfg := testConfig(dr, "markdown")
	cfg.StylesDir = t.TempDir()

	out, err := runCommand(t, NewStylesCommand(), cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No styles found in "+cfg.StylesDir)
}
