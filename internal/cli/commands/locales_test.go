package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cslkit/internal/testutil"
)

func TestLocalesCommand_JSON(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewLocalesCommand(), testConfig(dr, "json"))
	require.NoError(t, err)

	var got LocalesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, 3, got.Count)
	codes := make([]string, 0, len(got.Locales))
	for _, l := range got.Locales {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"de-DE", "en-US", "fr-FR"}, codes)
}

func TestLocalesCommand_Markdown(t *testing.T) {
	dr := testutil.WriteDataRoot(t)

	out, err := runCommand(t, NewLocalesCommand(), testConfig(dr, "markdown"))
	require.NoError(t, err)

	assert.Contains(t, out, "# Locales (3 total)")
	assert.Contains(t, out, "de-DE")
	assert.NotContains(t, out, "locales.json")
}

func TestDescribeLocale(t *testing.T) {
	tests := []struct {
		code        string
		wantPrimary bool
		wantName    bool
	}{
		{code: "de-DE", wantPrimary: true, wantName: true},
		{code: "de-AT", wantPrimary: false, wantName: true},
		{code: "en-US", wantPrimary: true, wantName: true},
		{code: "not a code", wantPrimary: false, wantName: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info := describeLocale(tt.code)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.wantPrimary, info.Primary)
			if tt.wantName {
				assert.NotEmpty(t, info.Name)
			} else {
				assert.Empty(t, info.Name)
			}
		})
	}
}
