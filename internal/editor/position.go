package editor

import (
	"strings"
	"unicode/utf8"

	"latex-corrector/internal/types"
)

// Position is a 1-based line and column. Columns count runes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// PositionAt converts a byte offset of text to a Position.
// Offsets outside the text are clamped.
func PositionAt(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
	}
}

// LineRange returns the first and last line an exercise spans.
func LineRange(text string, ex types.Exercise) (first, last int) {
	first = PositionAt(text, ex.Start).Line
	last = first
	if ex.End > ex.Start {
		last = PositionAt(text, ex.End-1).Line
	}
	return first, last
}
