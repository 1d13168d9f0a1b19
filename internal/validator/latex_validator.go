// Package validator checks generated LaTeX corrections for common syntax
// errors and cleans up raw model output before it is inserted in a document.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"latex-corrector/internal/logger"
)

// Severity of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue kinds
const (
	KindBrace       = "brace"
	KindBracket     = "bracket"
	KindParen       = "paren"
	KindBackslash   = "backslash"
	KindMath        = "math"
	KindEnvironment = "environment"
)

// ValidationIssue represents a problem found in a LaTeX fragment
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Message  string   `json:"message"`
}

// ValidationResult contains the results of LaTeX validation
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Issues  []ValidationIssue `json:"issues"`
	Summary string            `json:"summary"`
}

var (
	bareEnvCommandRe = regexp.MustCompile(`(?m)(^|\s)(begin|end)\{`)
	envTagRe         = regexp.MustCompile(`\\(begin|end)\{([^}]+)\}`)
)

// ValidateCorrection runs every syntax check on a correction body.
// Comments are ignored by all checks.
func ValidateCorrection(text string) *ValidationResult {
	content := stripComments(text)

	result := &ValidationResult{
		Valid:  true,
		Issues: []ValidationIssue{},
	}

	add := func(issues []ValidationIssue) {
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				result.Valid = false
			}
			result.Issues = append(result.Issues, issue)
		}
	}

	add(checkBraces(content))
	add(checkPairCount(content, '[', ']', KindBracket))
	add(checkPairCount(content, '(', ')', KindParen))
	add(checkBareEnvCommands(content))
	add(checkMathAmpersand(content))
	add(checkEnvironments(content))

	generateSummary(result)

	logger.Debug("correction validated",
		logger.Bool("valid", result.Valid),
		logger.Int("issues", len(result.Issues)))
	return result
}

// checkBraces tracks { } depth; order matters for braces.
func checkBraces(content string) []ValidationIssue {
	var issues []ValidationIssue
	var stack []int

	for i := 0; i < len(content); i++ {
		if isEscaped(content, i) {
			continue
		}
		switch content[i] {
		case '{':
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				line, col := getLineAndColumn(content, i)
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Kind:     KindBrace,
					Line:     line,
					Column:   col,
					Message:  "unmatched closing brace '}'",
				})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}

	for _, pos := range stack {
		line, col := getLineAndColumn(content, pos)
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Kind:     KindBrace,
			Line:     line,
			Column:   col,
			Message:  "unmatched opening brace '{'",
		})
	}
	return issues
}

// checkPairCount compares the number of unescaped open and close characters.
// Only counts are compared so that French interval notation like ]0;1[ passes.
func checkPairCount(content string, open, close byte, kind string) []ValidationIssue {
	opens, closes := 0, 0
	for i := 0; i < len(content); i++ {
		if isEscaped(content, i) {
			continue
		}
		switch content[i] {
		case open:
			opens++
		case close:
			closes++
		}
	}
	if opens == closes {
		return nil
	}
	return []ValidationIssue{{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf("unbalanced '%c%c': %d opening, %d closing", open, close, opens, closes),
	}}
}

// checkBareEnvCommands finds begin{ or end{ missing their backslash.
func checkBareEnvCommands(content string) []ValidationIssue {
	var issues []ValidationIssue
	for _, m := range bareEnvCommandRe.FindAllStringSubmatchIndex(content, -1) {
		pos := m[4]
		line, col := getLineAndColumn(content, pos)
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Kind:     KindBackslash,
			Line:     line,
			Column:   col,
			Message:  fmt.Sprintf("'%s{' without backslash", content[m[4]:m[5]]),
		})
	}
	return issues
}

// checkMathAmpersand reports unescaped & inside inline $...$ math.
// Segments holding an environment (array, matrix) are exempt.
func checkMathAmpersand(content string) []ValidationIssue {
	var issues []ValidationIssue
	start := -1

	for i := 0; i < len(content); i++ {
		if content[i] != '$' || isEscaped(content, i) {
			continue
		}
		if i+1 < len(content) && content[i+1] == '$' {
			// $$ display math is out of scope
			i++
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		segment := content[start+1 : i]
		if !strings.Contains(segment, "\\begin{") {
			for j := 0; j < len(segment); j++ {
				if segment[j] == '&' && !isEscaped(segment, j) {
					line, col := getLineAndColumn(content, start+1+j)
					issues = append(issues, ValidationIssue{
						Severity: SeverityError,
						Kind:     KindMath,
						Line:     line,
						Column:   col,
						Message:  "unescaped '&' in inline math",
					})
					break
				}
			}
		}
		start = -1
	}

	if start >= 0 {
		line, col := getLineAndColumn(content, start)
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Kind:     KindMath,
			Line:     line,
			Column:   col,
			Message:  "unmatched inline math delimiter '$'",
		})
	}
	return issues
}

// checkEnvironments checks for balanced \begin{} and \end{} pairs.
func checkEnvironments(content string) []ValidationIssue {
	type envInfo struct {
		name string
		pos  int
	}

	var issues []ValidationIssue
	var stack []envInfo

	for _, m := range envTagRe.FindAllStringSubmatchIndex(content, -1) {
		kind, name := content[m[2]:m[3]], content[m[4]:m[5]]
		if kind == "begin" {
			stack = append(stack, envInfo{name: name, pos: m[0]})
			continue
		}

		line, col := getLineAndColumn(content, m[0])
		if len(stack) == 0 {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Kind:     KindEnvironment,
				Line:     line,
				Column:   col,
				Message:  fmt.Sprintf("\\end{%s} without matching \\begin{%s}", name, name),
			})
			continue
		}

		last := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if last.name != name {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Kind:     KindEnvironment,
				Line:     line,
				Column:   col,
				Message:  fmt.Sprintf("environment mismatch: expected \\end{%s}, found \\end{%s}", last.name, name),
			})
		}
	}

	for _, env := range stack {
		line, col := getLineAndColumn(content, env.pos)
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Kind:     KindEnvironment,
			Line:     line,
			Column:   col,
			Message:  fmt.Sprintf("\\begin{%s} without matching \\end{%s}", env.name, env.name),
		})
	}
	return issues
}

// generateSummary creates a human-readable summary of validation results
func generateSummary(result *ValidationResult) {
	if result.Valid && len(result.Issues) == 0 {
		result.Summary = "✓ LaTeX validation passed with no issues"
		return
	}

	errorCount := 0
	warningCount := 0
	for _, issue := range result.Issues {
		if issue.Severity == SeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}

	if errorCount > 0 {
		result.Summary = fmt.Sprintf("✗ Validation failed: %d error(s), %d warning(s)", errorCount, warningCount)
	} else {
		result.Summary = fmt.Sprintf("⚠ Validation passed with %d warning(s)", warningCount)
	}
}

// FormatIssues formats validation issues for display
func FormatIssues(issues []ValidationIssue) string {
	if len(issues) == 0 {
		return "No issues found"
	}

	var sb strings.Builder
	for i, issue := range issues {
		icon := "⚠"
		if issue.Severity == SeverityError {
			icon = "✗"
		}

		sb.WriteString(fmt.Sprintf("%s [%s] %s", icon, strings.ToUpper(string(issue.Severity)), issue.Message))
		if issue.Line > 0 {
			sb.WriteString(fmt.Sprintf(" (line: %d, column: %d)", issue.Line, issue.Column))
		}
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// stripComments blanks out % comments, keeping offsets and newlines intact.
func stripComments(text string) string {
	if !strings.Contains(text, "%") {
		return text
	}
	b := []byte(text)
	inComment := false
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '\n':
			inComment = false
		case inComment:
			b[i] = ' '
		case b[i] == '%' && !isEscaped(text, i):
			inComment = true
			b[i] = ' '
		}
	}
	return string(b)
}

// isEscaped reports whether s[i] is preceded by an odd number of backslashes.
func isEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// getLineAndColumn converts a byte position to line and column numbers.
func getLineAndColumn(content string, pos int) (int, int) {
	if pos < 0 || pos > len(content) {
		return 1, 1
	}

	line := 1
	lastNewline := -1
	for i := 0; i < pos; i++ {
		if content[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	return line, pos - lastNewline
}
