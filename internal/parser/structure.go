package parser

import (
	"strings"

	"latex-corrector/internal/types"
)

const (
	// EnonceEnv holds the problem statement inside an exercise.
	EnonceEnv = "enonce"
	// CorrectionEnv holds the worked solution inside an exercise.
	CorrectionEnv = "correction"
)

// ParseStructure splits the content of one exercise (tags included) into its
// enonce, correction and remaining content. Only the first enonce and first
// correction are reported; malformed input yields partial results.
// The function is pure: the same input always gives the same structure.
func ParseStructure(content string) types.ExerciseStructure {
	var s types.ExerciseStructure

	if inner, ok := firstSpan(content, EnonceEnv); ok {
		s.Enonce = strPtr(strings.TrimSpace(inner))
	}
	if inner, ok := firstSpan(content, CorrectionEnv); ok {
		s.Correction = strPtr(strings.TrimSpace(inner))
	}

	rest := strings.ReplaceAll(content, ExerciseBeginTag, "")
	rest = strings.ReplaceAll(rest, ExerciseEndTag, "")
	rest = removeSpans(rest, EnonceEnv)
	rest = removeSpans(rest, CorrectionEnv)
	if rest = strings.TrimSpace(rest); rest != "" {
		s.OtherContent = strPtr(rest)
	}

	return s
}

// HasCorrection reports whether content already holds a non-empty correction.
func HasCorrection(content string) bool {
	return ParseStructure(content).HasCorrection()
}

// firstSpan returns the text between the first \begin{name} and the first
// \end{name} after it.
func firstSpan(content, name string) (string, bool) {
	begin, end := beginTagOf(name), endTagOf(name)

	b := strings.Index(content, begin)
	if b < 0 {
		return "", false
	}
	innerStart := b + len(begin)
	e := strings.Index(content[innerStart:], end)
	if e < 0 {
		return "", false
	}
	return content[innerStart : innerStart+e], true
}

// removeSpans deletes every \begin{name}...\end{name} span, each begin paired
// with the first end following it. A begin without a following end is kept.
func removeSpans(content, name string) string {
	begin, end := beginTagOf(name), endTagOf(name)

	var sb strings.Builder
	i := 0
	for {
		b := strings.Index(content[i:], begin)
		if b < 0 {
			break
		}
		b += i
		e := strings.Index(content[b+len(begin):], end)
		if e < 0 {
			break
		}
		sb.WriteString(content[i:b])
		i = b + len(begin) + e + len(end)
	}
	if i == 0 {
		return content
	}
	sb.WriteString(content[i:])
	return sb.String()
}

func strPtr(s string) *string {
	return &s
}
