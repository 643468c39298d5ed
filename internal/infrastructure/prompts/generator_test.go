package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		data     ExtractData
		contains []string
		absent   []string
	}{
		{
			name:     "marker only",
			data:     ExtractData{NoTextMarker: "NO_TEXT"},
			contains: []string{"reply exactly NO_TEXT."},
			absent:   []string{"most likely in"},
		},
		{
			name:     "language hint",
			data:     ExtractData{NoTextMarker: "NONE", Languages: []string{"eng", "chi_sim"}},
			contains: []string{"most likely in: eng, chi_sim.", "reply exactly NONE."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := Extract(tt.data)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, prompt, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, prompt, s)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	prompt, err := Locate(LocateData{Width: 800, Height: 600})
	require.NoError(t, err)

	assert.Contains(t, prompt, "800x600 pixel screenshot")
	assert.Contains(t, prompt, `"box": [x1, y1, x2, y2]`)
	assert.Equal(t, prompt, strings.TrimSpace(prompt))
}

func TestRender_Errors(t *testing.T) {
	_, err := Render("broken", "{{.Width", LocateData{})
	assert.ErrorContains(t, err, "parse broken prompt")

	_, err = Render("missing", "{{.Nope}}", LocateData{})
	assert.ErrorContains(t, err, "render missing prompt")
}
