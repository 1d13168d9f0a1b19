package parser

import (
	"regexp"
	"sort"
	"strings"

	"latex-corrector/internal/types"
)

// SectionTypes are the numbered sectioning commands.
var SectionTypes = []string{"section", "subsection", "subsubsection"}

// TheoremTypes are the theorem-like environments sharing the theorem counter family.
var TheoremTypes = []string{"theorem", "lemma", "proposition", "corollary", "definition"}

// sectionRe finds a sectioning command up to its opening brace. The optional
// star is captured so unnumbered variants can be skipped, and an optional
// short title in brackets is allowed before the brace.
var sectionRe = regexp.MustCompile(`\\(subsubsection|subsection|section)(\*?)\s*(?:\[[^\]]*\])?\s*\{`)

// theoremOptRe reads the optional [title] right after a theorem begin tag.
var theoremOptRe = regexp.MustCompile(`^\s*\[([^\]]*)\]`)

// ScanNumbering collects sections and theorem-like environments and numbers
// them independently per type, starting at 1. The result is advisory context
// for prompts and plays no part in exercise detection.
func ScanNumbering(text string) types.DocumentStructure {
	ds := types.DocumentStructure{
		Sections: scanSections(text),
		Theorems: scanTheorems(text),
	}

	for _, s := range ds.Sections {
		ds.CurrentSection = max(ds.CurrentSection, s.Number)
	}
	for _, th := range ds.Theorems {
		ds.CurrentTheorem = max(ds.CurrentTheorem, th.Number)
	}
	return ds
}

func scanSections(text string) []types.NumberedEnvironment {
	sections := make([]types.NumberedEnvironment, 0)
	counters := make(map[string]int, len(SectionTypes))

	for _, m := range sectionRe.FindAllStringSubmatchIndex(text, -1) {
		if m[5] > m[4] {
			continue // starred: unnumbered
		}
		kind := text[m[2]:m[3]]
		title, end, ok := readBraced(text, m[1]-1)
		if !ok {
			continue
		}
		counters[kind]++
		sections = append(sections, types.NumberedEnvironment{
			Type:   kind,
			Number: counters[kind],
			Title:  strings.TrimSpace(title),
			Start:  m[0],
			End:    end,
		})
	}
	return sections
}

func scanTheorems(text string) []types.NumberedEnvironment {
	theorems := make([]types.NumberedEnvironment, 0)

	for _, kind := range TheoremTypes {
		pairs := pairEnvironment(text, kind)
		number := 0
		for _, b := range pairs.begins {
			e, ok := pairs.match[b]
			if !ok {
				continue
			}
			number++
			env := types.NumberedEnvironment{
				Type:   kind,
				Number: number,
				Start:  b,
				End:    e + len(pairs.endTag),
			}
			if m := theoremOptRe.FindStringSubmatch(text[b+len(pairs.beginTag) : e]); m != nil {
				env.Title = strings.TrimSpace(m[1])
			}
			theorems = append(theorems, env)
		}
	}

	sort.SliceStable(theorems, func(i, j int) bool {
		return theorems[i].Start < theorems[j].Start
	})
	return theorems
}

// readBraced reads a balanced {...} group whose opening brace is at open.
// It returns the inner text and the offset just past the closing brace.
func readBraced(text string, open int) (string, int, bool) {
	if open < 0 || open >= len(text) || text[open] != '{' {
		return "", 0, false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++ // skip escaped character such as \{ or \}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}
