package vscode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSettings(t *testing.T) {
	tests := []struct {
		name    string
		base    map[string]any
		overlay map[string]any
		want    map[string]any
	}{
		{
			name:    "overlay scalar wins",
			base:    map[string]any{"editor.tabSize": float64(4)},
			overlay: map[string]any{"editor.tabSize": float64(2)},
			want:    map[string]any{"editor.tabSize": float64(2)},
		},
		{
			name:    "disjoint keys combine",
			base:    map[string]any{"editor.formatOnSave": true},
			overlay: map[string]any{"files.trimTrailingWhitespace": true},
			want: map[string]any{
				"editor.formatOnSave":          true,
				"files.trimTrailingWhitespace": true,
			},
		},
		{
			name: "language scopes merge recursively",
			base: map[string]any{
				"[python]": map[string]any{
					"editor.tabSize":      float64(4),
					"editor.rulers":       []any{float64(88)},
					"editor.formatOnSave": true,
				},
			},
			overlay: map[string]any{
				"[python]": map[string]any{
					"editor.tabSize": float64(2),
				},
			},
			want: map[string]any{
				"[python]": map[string]any{
					"editor.tabSize":      float64(2),
					"editor.rulers":       []any{float64(88)},
					"editor.formatOnSave": true,
				},
			},
		},
		{
			name:    "word lists union",
			base:    map[string]any{"cSpell.words": []any{"devcontainer", "ndarray"}},
			overlay: map[string]any{"cSpell.words": []any{"cabin", "devcontainer"}},
			want:    map[string]any{"cSpell.words": []string{"cabin", "devcontainer", "ndarray"}},
		},
		{
			name:    "plain lists replace",
			base:    map[string]any{"editor.rulers": []any{float64(80)}},
			overlay: map[string]any{"editor.rulers": []any{float64(100)}},
			want:    map[string]any{"editor.rulers": []any{float64(100)}},
		},
		{
			name:    "type mismatch takes overlay",
			base:    map[string]any{"python.analysis": map[string]any{"typeCheckingMode": "basic"}},
			overlay: map[string]any{"python.analysis": "off"},
			want:    map[string]any{"python.analysis": "off"},
		},
		{
			name:    "nil base",
			base:    nil,
			overlay: map[string]any{"editor.tabSize": float64(2)},
			want:    map[string]any{"editor.tabSize": float64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeSettings(tt.base, tt.overlay))
		})
	}
}

func TestMergeSettingsDoesNotMutate(t *testing.T) {
	base := map[string]any{"cSpell.words": []any{"alpha"}}
	overlay := map[string]any{"cSpell.words": []any{"beta"}}

	MergeSettings(base, overlay)

	assert.Equal(t, map[string]any{"cSpell.words": []any{"alpha"}}, base)
	assert.Equal(t, map[string]any{"cSpell.words": []any{"beta"}}, overlay)
}

func TestIsLanguageScope(t *testing.T) {
	assert.True(t, IsLanguageScope("[python]"))
	assert.True(t, IsLanguageScope("[javascript][typescript]"))
	assert.False(t, IsLanguageScope("editor.tabSize"))
	assert.False(t, IsLanguageScope("[unclosed"))
}
