package analysis

import (
	"regexp"
	"strings"

	"rpyscope/internal/document"
)

// BlockKeywords are the constructs that open an indented block in a script
// file. The match pattern is generated from this table, so adding a keyword
// here is the whole change.
var BlockKeywords = []string{"screen", "label", "transform", "def", "class", "style"}

// blockPattern matches a block-opening line: optional indent, a block
// keyword, an identifier, then an optional parenthesized argument list and a
// colon.
var blockPattern = regexp.MustCompile(
	`^\s*(` + strings.Join(BlockKeywords, "|") + `)\s+[\w.]+\s*(\([^)]*\))?\s*:`)

// LineFilter rewrites a candidate line before block matching. The locator
// uses it to blank string-literal contents so keyword-like text inside
// strings cannot produce false matches. A nil filter leaves lines untouched.
type LineFilter func(string) string

// FindBlockContext scans upward from the cursor's line (inclusive) to line 0
// and returns the keyword of the nearest block-opening line. The boolean is
// false when no enclosing block exists, which is distinct from an empty
// keyword.
func FindBlockContext(doc *document.Document, pos document.Position, filter LineFilter) (string, bool) {
	line := pos.Line
	if line >= doc.LineCount() {
		line = doc.LineCount() - 1
	}

	for ; line >= 0; line-- {
		text := doc.Line(line)
		if filter != nil {
			text = filter(text)
		}
		if m := blockPattern.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
