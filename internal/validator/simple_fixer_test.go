package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCorrection(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantDesc string
	}{
		{
			name:  "already clean",
			input: "On a $x = 1$.",
			want:  "On a $x = 1$.",
		},
		{
			name:     "code fence with language",
			input:    "```latex\nOn a $x = 1$.\n```",
			want:     "On a $x = 1$.",
			wantDesc: "code fence",
		},
		{
			name:     "bare code fence",
			input:    "```\nA\nB\n```",
			want:     "A\nB",
			wantDesc: "code fence",
		},
		{
			name:     "correction wrapper",
			input:    "\\begin{correction}\nRéponse.\n\\end{correction}",
			want:     "Réponse.",
			wantDesc: "correction tag",
		},
		{
			name:     "fence and wrapper",
			input:    "```tex\n\\begin{correction}\nRéponse.\n\\end{correction}\n```",
			want:     "Réponse.",
			wantDesc: "correction tag",
		},
		{
			name:     "typo begn",
			input:    "\\begn{align}x\\end{align}",
			want:     "\\begin{align}x\\end{align}",
			wantDesc: "Fixed typo",
		},
		{
			name:     "windows line endings",
			input:    "a\r\nb",
			want:     "a\nb",
			wantDesc: "line endings",
		},
		{
			name:     "trailing whitespace",
			input:    "a  \nb\t",
			want:     "a\nb",
			wantDesc: "trailing whitespace",
		},
		{
			name:  "surrounding blank lines",
			input: "\n\n  texte\n\n",
			want:  "texte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanCorrection(tt.input)
			assert.Equal(t, tt.want, result.Content)
			if tt.wantDesc == "" {
				assert.False(t, result.Changed(), "%v", result.FixesApplied)
				return
			}
			assert.True(t, result.Changed())
			found := false
			for _, desc := range result.FixesApplied {
				if strings.Contains(strings.ToLower(desc), strings.ToLower(tt.wantDesc)) {
					found = true
				}
			}
			assert.True(t, found, "expected a fix mentioning %q, got %v", tt.wantDesc, result.FixesApplied)
		})
	}
}

func TestCleanCorrection_Idempotent(t *testing.T) {
	inputs := []string{
		"```latex\n\\begin{correction}\nx \r\n\\end{correction}\n```",
		"plain",
		"",
	}
	for _, in := range inputs {
		once := CleanCorrection(in).Content
		twice := CleanCorrection(once)
		assert.Equal(t, once, twice.Content)
		assert.False(t, twice.Changed())
	}
}
