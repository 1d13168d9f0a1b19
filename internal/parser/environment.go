package parser

import "strings"

// envPairs holds every \begin{name} and \end{name} tag of one environment name,
// paired by nesting level in a single forward pass.
type envPairs struct {
	beginTag string
	endTag   string
	// begins lists begin-tag offsets in document order.
	begins []int
	// match maps a begin-tag offset to the offset of its matching end tag.
	match map[int]int
}

func beginTagOf(name string) string { return `\begin{` + name + `}` }
func endTagOf(name string) string   { return `\end{` + name + `}` }

// pairEnvironment scans text once and pairs the begin/end tags of the named
// environment. An end tag closes the most recent unclosed begin tag, which is
// exactly the tag a nesting counter started at that begin would stop on.
// Stray end tags with no open begin are ignored; begins left open stay unmatched.
func pairEnvironment(text, name string) envPairs {
	p := envPairs{
		beginTag: beginTagOf(name),
		endTag:   endTagOf(name),
		match:    make(map[int]int),
	}

	var open []int
	i := 0
	for i < len(text) {
		j := strings.IndexByte(text[i:], '\\')
		if j < 0 {
			break
		}
		pos := i + j
		rest := text[pos:]
		switch {
		case strings.HasPrefix(rest, p.beginTag):
			p.begins = append(p.begins, pos)
			open = append(open, pos)
			i = pos + len(p.beginTag)
		case strings.HasPrefix(rest, p.endTag):
			if n := len(open); n > 0 {
				p.match[open[n-1]] = pos
				open = open[:n-1]
			}
			i = pos + len(p.endTag)
		default:
			i = pos + 1
		}
	}
	return p
}

// outermost returns the matched top-level spans as [start, end) pairs in
// document order. A begin tag without a match is skipped and scanning resumes
// just after it, so blocks nested in an unterminated one can still surface.
func (p envPairs) outermost() [][2]int {
	var spans [][2]int
	cursor := 0
	for _, b := range p.begins {
		if b < cursor {
			continue
		}
		e, ok := p.match[b]
		if !ok {
			cursor = b + 1
			continue
		}
		end := e + len(p.endTag)
		spans = append(spans, [2]int{b, end})
		cursor = end
	}
	return spans
}
