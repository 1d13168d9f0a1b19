package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latex-corrector/internal/parser"
)

func TestPositionAt(t *testing.T) {
	text := "ab\nçé x\n\nz"
	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{1, 1}},
		{2, Position{1, 3}},
		{3, Position{2, 1}},
		{7, Position{2, 3}}, // after "çé" (4 bytes) and the space
		{9, Position{2, 5}},
		{10, Position{3, 1}},
		{11, Position{4, 1}},
		{-5, Position{1, 1}},
		{100, Position{4, 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PositionAt(text, tt.offset), "offset %d", tt.offset)
	}
}

func TestLineRange(t *testing.T) {
	text := "intro\n\\begin{exercice}\nQ\n\\end{exercice}\n\\begin{exercice}x\\end{exercice}"
	exercises := parser.Detect(text)
	require.Len(t, exercises, 2)

	first, last := LineRange(text, exercises[0])
	assert.Equal(t, 2, first)
	assert.Equal(t, 4, last)

	first, last = LineRange(text, exercises[1])
	assert.Equal(t, 5, first)
	assert.Equal(t, 5, last)
}
