package validator

import (
	"fmt"
	"regexp"
	"strings"

	"latex-corrector/internal/logger"
)

var (
	codeFenceRe         = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\n(.*?)\n?```$")
	correctionWrapperRe = regexp.MustCompile(`\\(begin|end)\{correction\}[ \t]*\n?`)
)

// FixResult contains the cleaned text and the fixes that were applied
type FixResult struct {
	Content      string
	FixesApplied []string
}

// Changed reports whether any fix was applied.
func (r *FixResult) Changed() bool {
	return len(r.FixesApplied) > 0
}

// CleanCorrection turns raw model output into a correction body ready for
// insertion: no markdown fences, no correction wrappers, fixed typos,
// Unix line endings and no trailing whitespace.
func CleanCorrection(raw string) *FixResult {
	applied := []string{}
	fixed := raw

	// Fix 1: Windows and old Mac line endings
	if strings.Contains(fixed, "\r") {
		fixed = strings.ReplaceAll(fixed, "\r\n", "\n")
		fixed = strings.ReplaceAll(fixed, "\r", "\n")
		applied = append(applied, "Normalized line endings")
	}

	fixed = strings.TrimSpace(fixed)

	// Fix 2: Markdown code fence around the whole answer
	if m := codeFenceRe.FindStringSubmatch(fixed); m != nil {
		fixed = strings.TrimSpace(m[1])
		applied = append(applied, "Removed markdown code fence")
	}

	// Fix 3: Correction environment the model was asked not to emit
	if n := len(correctionWrapperRe.FindAllStringIndex(fixed, -1)); n > 0 {
		fixed = strings.TrimSpace(correctionWrapperRe.ReplaceAllString(fixed, ""))
		applied = append(applied, fmt.Sprintf("Removed %d correction tag(s)", n))
	}

	// Fix 4: Common typos
	typos := []struct{ from, to string }{
		{"\\begn{", "\\begin{"},
		{"\\ened{", "\\end{"},
	}
	for _, typo := range typos {
		if count := strings.Count(fixed, typo.from); count > 0 {
			fixed = strings.ReplaceAll(fixed, typo.from, typo.to)
			applied = append(applied, fmt.Sprintf("Fixed typo: %s -> %s (%d occurrences)", typo.from, typo.to, count))
		}
	}

	// Fix 5: Trailing whitespace
	lines := strings.Split(fixed, "\n")
	trimmed := false
	for i, line := range lines {
		if t := strings.TrimRight(line, " \t"); t != line {
			lines[i] = t
			trimmed = true
		}
	}
	if trimmed {
		fixed = strings.Join(lines, "\n")
		applied = append(applied, "Removed trailing whitespace")
	}

	if len(applied) > 0 {
		logger.Debug("cleaned model output", logger.Int("fixes", len(applied)))
	}
	return &FixResult{Content: fixed, FixesApplied: applied}
}
