// Package parser finds exercice blocks in LaTeX documents and extracts their
// structure. It performs no I/O: every function works on an in-memory string.
//
// Tag matching is literal and runs in time linear in the document length;
// no regular expression is involved, so exercise content may contain any
// characters without affecting detection.
package parser

import (
	"iter"
	"unicode/utf8"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

const (
	// ExerciseEnv is the environment name delimiting an exercise.
	ExerciseEnv = "exercice"
	// DefaultMaxTitleLength is the number of enonce characters kept in a title.
	DefaultMaxTitleLength = 50
)

var (
	// ExerciseBeginTag opens an exercise block.
	ExerciseBeginTag = beginTagOf(ExerciseEnv)
	// ExerciseEndTag closes an exercise block.
	ExerciseEndTag = endTagOf(ExerciseEnv)
)

// Detect returns every top-level exercise of text in document order,
// numbered from 1. Nested exercises are part of their parent's content.
// Unterminated blocks are skipped. The result is never nil.
func Detect(text string) []types.Exercise {
	return collect(All(text))
}

// All returns a lazy sequence over the exercises Detect would return.
// Each range over the sequence rescans text from scratch; stopping early
// skips the structure extraction of the remaining exercises.
func All(text string) iter.Seq[types.Exercise] {
	return allWithTitleLength(text, DefaultMaxTitleLength)
}

func allWithTitleLength(text string, maxTitle int) iter.Seq[types.Exercise] {
	return func(yield func(types.Exercise) bool) {
		if len(text) < len(ExerciseBeginTag)+len(ExerciseEndTag) {
			return
		}

		number := 0
		for _, span := range pairEnvironment(text, ExerciseEnv).outermost() {
			start, end := span[0], span[1]
			if start < 0 || end <= start || end > len(text) {
				logger.Warn("invalid exercise positions, skipping",
					logger.Int("exercise", number+1),
					logger.Int("start", start),
					logger.Int("end", end))
				continue
			}

			number++
			if !yield(newExercise(text[start:end], number, start, end, maxTitle)) {
				return
			}
		}
	}
}

func collect(seq iter.Seq[types.Exercise]) []types.Exercise {
	exercises := make([]types.Exercise, 0)
	for ex := range seq {
		exercises = append(exercises, ex)
	}
	return exercises
}

func newExercise(content string, number, start, end, maxTitle int) types.Exercise {
	structure := ParseStructure(content)

	status := types.StatusPending
	if structure.HasCorrection() {
		status = types.StatusCorrected
	}

	return types.Exercise{
		Number:  number,
		Start:   start,
		End:     end,
		Content: content,
		Title:   exerciseTitle(structure, number, maxTitle),
		Status:  status,
	}
}

// exerciseTitle keeps the first maxTitle characters of the enonce and marks
// truncation with "...". Truncation counts runes so multibyte text stays valid.
func exerciseTitle(s types.ExerciseStructure, number, maxTitle int) string {
	if s.Enonce == nil || *s.Enonce == "" {
		return types.DefaultTitle(number)
	}
	if maxTitle <= 0 {
		maxTitle = DefaultMaxTitleLength
	}

	enonce := *s.Enonce
	if utf8.RuneCountInString(enonce) <= maxTitle {
		return enonce
	}

	n := 0
	for i := range enonce {
		if n == maxTitle {
			return enonce[:i] + "..."
		}
		n++
	}
	return enonce
}
