package editor

import (
	"strings"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
)

var (
	correctionBeginTag = `\begin{` + parser.CorrectionEnv + `}`
	correctionEndTag   = `\end{` + parser.CorrectionEnv + `}`
)

// CorrectionBlock wraps a correction body in its environment.
func CorrectionBlock(body string) string {
	return correctionBeginTag + "\n" + strings.TrimSpace(body) + "\n" + correctionEndTag
}

// InsertCorrection returns text with body inserted as the correction of ex.
// The block goes right before the exercise's closing tag; an existing but
// empty correction environment is replaced instead.
// ex must come from a detection pass over this exact text.
func InsertCorrection(text string, ex types.Exercise, body string) (string, error) {
	if ex.Start < 0 || ex.End > len(text) || ex.Start > ex.End || text[ex.Start:ex.End] != ex.Content {
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"exercise no longer matches the document", "detect the exercises again", nil)
	}
	if !strings.HasSuffix(ex.Content, parser.ExerciseEndTag) {
		return "", types.NewAppError(types.ErrInvalidInput, "exercise has no closing tag", nil)
	}
	if strings.TrimSpace(body) == "" {
		return "", types.NewAppError(types.ErrInvalidInput, "correction is empty", nil)
	}
	if parser.HasCorrection(ex.Content) {
		return "", types.NewAppErrorWithDetails(types.ErrAlreadyCorrected,
			"exercise already has a correction", types.DefaultTitle(ex.Number), nil)
	}

	block := CorrectionBlock(body)

	if from, to, ok := emptyCorrection(ex.Content); ok {
		logger.Debug("filling empty correction", logger.Int("exercise", ex.Number))
		return text[:ex.Start+from] + block + text[ex.Start+to:], nil
	}

	pos := ex.End - len(parser.ExerciseEndTag)
	prefix := ""
	if pos > 0 && text[pos-1] != '\n' {
		prefix = "\n"
	}

	logger.Debug("inserting correction",
		logger.Int("exercise", ex.Number),
		logger.Int("offset", pos))
	return text[:pos] + prefix + block + "\n" + text[pos:], nil
}

// emptyCorrection locates the first correction environment of content.
func emptyCorrection(content string) (from, to int, ok bool) {
	from = strings.Index(content, correctionBeginTag)
	if from < 0 {
		return 0, 0, false
	}
	end := strings.Index(content[from:], correctionEndTag)
	if end < 0 {
		return 0, 0, false
	}
	return from, from + end + len(correctionEndTag), true
}
