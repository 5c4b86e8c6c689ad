// Package analysis implements the lexical helpers behind rpyscope's language
// features: argument-list splitting, signature help, literal type inference
// and block-context detection for Ren'Py script files.
//
// Everything in this package is a pure function over caller-supplied text.
// Nothing here returns an error; malformed input degrades to a best-effort
// result so the functions stay total and safe to call on every keystroke.
package analysis

import (
	"regexp"
	"strings"
)

// protectedComma stands in for commas found inside quote/paren/bracket/brace
// scopes during a scan. U+2063 (INVISIBLE SEPARATOR) does not occur in script
// text, so masked commas can be restored without ambiguity.
const protectedComma = '⁣'

// scanState tracks which delimiter scopes the scanner is currently inside.
// The flags are booleans, not depth counters: one open of a kind suppresses
// comma splitting for that kind, and the first matching close clears it.
// Nested same-kind delimiters therefore drop the "inside" state early; that
// matches the upstream editor behavior and is kept deliberately.
type scanState struct {
	Quote   bool
	Paren   bool
	Bracket bool
	Brace   bool
}

// inside reports whether any scope flag is set.
func (s scanState) inside() bool {
	return s.Quote || s.Paren || s.Bracket || s.Brace
}

// maskCommas walks fragment once, left to right, replacing every comma that
// falls inside a delimiter scope with protectedComma. It returns the masked
// text together with the final flag state so callers (and tests) can observe
// unbalanced input.
func maskCommas(fragment string) (string, scanState) {
	var st scanState
	var b strings.Builder
	b.Grow(len(fragment))

	for _, r := range fragment {
		switch r {
		case '"':
			st.Quote = !st.Quote
		case '(':
			st.Paren = true
		case ')':
			st.Paren = false
		case '[':
			st.Bracket = true
		case ']':
			st.Bracket = false
		case '{':
			st.Brace = true
		case '}':
			st.Brace = false
		case ',':
			if st.inside() {
				b.WriteRune(protectedComma)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String(), st
}

// eqSpacing matches whitespace hugging an '=' sign, e.g. "x = 1".
var eqSpacing = regexp.MustCompile(`[ \t]*=[ \t]*`)

// SplitArgs splits fragment on commas that sit outside any quote, paren,
// bracket or brace scope. Commas inside a scope are preserved byte-for-byte
// in the piece that contains them, so joining the result with "," reproduces
// the input exactly (when trim is false).
//
// With trim set, each piece additionally has leading/trailing whitespace
// removed and spacing around '=' collapsed ("x = 1" becomes "x=1").
//
// An empty fragment yields a single empty piece. Unbalanced delimiters leave
// the corresponding flag set for the rest of the scan; the remainder folds
// into the final piece.
func SplitArgs(fragment string, trim bool) []string {
	masked, _ := maskCommas(fragment)

	parts := strings.Split(masked, ",")
	for i, p := range parts {
		p = strings.ReplaceAll(p, string(protectedComma), ",")
		if trim {
			p = strings.TrimSpace(p)
			p = eqSpacing.ReplaceAllString(p, "=")
		}
		parts[i] = p
	}
	return parts
}
