package index

// ClearStrings blanks the contents of string literals in a line, preserving
// the quote characters and the line's character count, so pattern matching
// cannot be fooled by keyword-like text inside strings. Quote state is a
// simple toggle per quote kind; escape sequences are not interpreted.
func ClearStrings(line string) string {
	out := []rune(line)
	var quote rune

	for i, r := range out {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			out[i] = ' '
		}
	}
	return string(out)
}
