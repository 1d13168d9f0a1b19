package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const numberingDoc = `\documentclass{article}
\begin{document}
\section{Intro}
\begin{theorem}[Pythagore]
$a^2 + b^2 = c^2$
\end{theorem}
\subsection{Details}
\begin{lemma}
x
\end{lemma}
\section*{Annexe}
\section{Suite}
\begin{theorem}
y
\end{theorem}
\begin{exercice}
\begin{definition}[Groupe]
un ensemble muni d'une loi
\end{definition}
\end{exercice}
\subsection[short]{Long {nested} title}
\begin{corollary}
unterminated
\end{document}
`

func TestScanNumbering(t *testing.T) {
	ds := ScanNumbering(numberingDoc)

	require.Len(t, ds.Sections, 4)
	wantSections := []struct {
		kind   string
		number int
		title  string
	}{
		{"section", 1, "Intro"},
		{"subsection", 1, "Details"},
		{"section", 2, "Suite"},
		{"subsection", 2, "Long {nested} title"},
	}
	for i, want := range wantSections {
		got := ds.Sections[i]
		assert.Equal(t, want.kind, got.Type)
		assert.Equal(t, want.number, got.Number)
		assert.Equal(t, want.title, got.Title)
		assert.Less(t, got.Start, got.End)
	}
	assert.Equal(t, 2, ds.CurrentSection)

	require.Len(t, ds.Theorems, 4)
	wantTheorems := []struct {
		kind   string
		number int
		title  string
	}{
		{"theorem", 1, "Pythagore"},
		{"lemma", 1, ""},
		{"theorem", 2, ""},
		{"definition", 1, "Groupe"},
	}
	for i, want := range wantTheorems {
		got := ds.Theorems[i]
		assert.Equal(t, want.kind, got.Type)
		assert.Equal(t, want.number, got.Number)
		assert.Equal(t, want.title, got.Title)
		assert.Equal(t, "\\end{"+got.Type+"}", numberingDoc[got.End-len("\\end{"+got.Type+"}"):got.End])
	}
	assert.Equal(t, 2, ds.CurrentTheorem)
}

func TestScanNumbering_Empty(t *testing.T) {
	ds := ScanNumbering("")
	assert.Empty(t, ds.Sections)
	assert.Empty(t, ds.Theorems)
	assert.Zero(t, ds.CurrentSection)
	assert.Zero(t, ds.CurrentTheorem)
}

func TestScanNumbering_DoesNotAffectDetection(t *testing.T) {
	before := Detect(numberingDoc)
	_ = ScanNumbering(numberingDoc)
	assert.Equal(t, before, Detect(numberingDoc))
	require.Len(t, before, 1)
}

func TestReadBraced(t *testing.T) {
	tests := []struct {
		text  string
		open  int
		inner string
		ok    bool
	}{
		{"{abc}", 0, "abc", true},
		{"x{a{b}c}y", 1, "a{b}c", true},
		{`{a\}b}`, 0, `a\}b`, true},
		{"{unclosed", 0, "", false},
		{"abc", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		inner, _, ok := readBraced(tt.text, tt.open)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.inner, inner, tt.text)
	}
}
