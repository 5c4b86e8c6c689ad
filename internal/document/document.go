// Package document holds the read-only, line-indexed view of an open editor
// buffer that the analysis functions consume. A Document is built once from
// the full text and never mutated; the editor constructs a fresh one per
// request.
package document

import "strings"

// Position is a cursor location: 0-based line and 0-based character offset
// within that line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Document is line-indexed text.
type Document struct {
	lines []string
}

// New builds a Document from raw text. Lines are split on '\n' with any
// trailing '\r' removed, so CRLF input indexes the same as LF input.
func New(text string) *Document {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &Document{lines: lines}
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the text of the 0-based line i, without its terminator.
// Out-of-range lines return the empty string.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}
