package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCorrection_Valid(t *testing.T) {
	valid := []string{
		"",
		"On a $f(x) = x^2$ donc $f'(x) = 2x$.",
		"\\begin{enumerate}\n\\item $a_{n+1} = \\frac{1}{2} a_n$\n\\end{enumerate}",
		"L'ensemble solution est $]0;1[$.",
		"Accolades échappées : \\{ et \\} ou \\{.",
		"% commentaire avec { non fermée et begin{x}\nTexte.",
		"Le prix est de 5 \\$ et 3 \\& 4.",
		"$\\begin{array}{cc} 1 & 2 \\end{array}$",
		"$$ a & b $$",
		"\\[ x = \\left( \\frac{a}{b} \\right) \\]",
		"Retour à la ligne \\\\{gras}",
	}
	for _, text := range valid {
		result := ValidateCorrection(text)
		assert.True(t, result.Valid, "%q: %s", text, FormatIssues(result.Issues))
		assert.Empty(t, result.Issues, text)
		assert.Contains(t, result.Summary, "passed")
	}
}

func TestValidateCorrection_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind string
	}{
		{"unclosed brace", "\\frac{1}{2", KindBrace},
		{"extra closing brace", "a}b", KindBrace},
		{"closing before opening", "}{", KindBrace},
		{"unbalanced bracket", "[a, b", KindBracket},
		{"unbalanced paren", "f(x", KindParen},
		{"missing backslash", "Voici begin{align} x \\end{align}", KindBackslash},
		{"missing backslash at line start", "end{itemize}", KindBackslash},
		{"ampersand in inline math", "$a & b$", KindMath},
		{"unclosed environment", "\\begin{align} x", KindEnvironment},
		{"environment mismatch", "\\begin{align} x \\end{equation}", KindEnvironment},
		{"end without begin", "x \\end{align}", KindEnvironment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCorrection(tt.text)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Issues)

			kinds := make([]string, 0, len(result.Issues))
			for _, issue := range result.Issues {
				kinds = append(kinds, issue.Kind)
			}
			assert.Contains(t, kinds, tt.kind)
			assert.Contains(t, result.Summary, "failed")
		})
	}
}

func TestValidateCorrection_IssuePosition(t *testing.T) {
	result := ValidateCorrection("ligne 1\nligne 2 }")
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 2, result.Issues[0].Line)
	assert.Equal(t, 9, result.Issues[0].Column)
}

func TestValidateCorrection_UnmatchedDollarIsWarning(t *testing.T) {
	result := ValidateCorrection("prix $x")
	assert.True(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	assert.Contains(t, result.Summary, "warning")
}

func TestStripComments(t *testing.T) {
	in := "a % b\nc \\% d % e"
	out := stripComments(in)
	assert.Len(t, out, len(in))
	assert.Equal(t, "a    \nc \\% d    ", out)
}

func TestFormatIssues(t *testing.T) {
	assert.Equal(t, "No issues found", FormatIssues(nil))

	out := FormatIssues([]ValidationIssue{
		{Severity: SeverityError, Message: "bad", Line: 2, Column: 3},
		{Severity: SeverityWarning, Message: "meh"},
	})
	assert.Equal(t, "✗ [ERROR] bad (line: 2, column: 3)\n⚠ [WARNING] meh", out)
}
