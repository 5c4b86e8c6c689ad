package analysis

import "strings"

// crossRefRoles are the Sphinx-style marker tokens that appear in stored
// documentation and carry no meaning in the editor's markdown renderer.
var crossRefRoles = []string{":ref:", ":var:", ":func:", ":class:", ":tpref:", ":propref:"}

// UnescapeQuotes turns backslash-escaped quotes back into plain quotes.
// Symbol records apply this once at construction.
func UnescapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\'`, `'`)
}

// fixFenceSpacing inserts the blank line markdown requires before a fenced
// code block that directly follows text. Fences alternate open/close, and
// only opening fences need the separation; closing fences and already
// well-formed input pass through unchanged.
func fixFenceSpacing(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if !inFence && len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			inFence = !inFence
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// CleanDoc normalizes a symbol's raw documentation for markdown display:
// escaped quotes are unescaped, fenced code blocks get the blank line
// markdown requires, and cross-reference role markers are stripped.
func CleanDoc(doc string) string {
	if doc == "" {
		return ""
	}
	s := UnescapeQuotes(doc)
	s = fixFenceSpacing(s)
	for _, role := range crossRefRoles {
		s = strings.ReplaceAll(s, role, "")
	}
	return s
}
