package index

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Line patterns for the definition forms the scanner recognizes. Matching
// runs against ClearStrings output so quoted text cannot fake a definition;
// captured offsets are mapped back onto the raw line.
var (
	blockDefPattern  = regexp.MustCompile(`^\s*(screen|label|transform|style)\s+([\w.]+)\s*(\(([^)]*)\))?\s*:`)
	pythonDefPattern = regexp.MustCompile(`^\s*(def|class)\s+(\w+)\s*(\(([^)]*)\))?\s*:`)
	assignPattern    = regexp.MustCompile(`^\s*(define|default)\s+([\w.]+)\s*=\s*(\S.*)$`)
)

// ScanSource extracts all symbol definitions from script text. source is the
// project identifier recorded on each symbol and path the file path relative
// to the project root. Lines that parse as nothing are skipped; the scanner
// never fails.
func ScanSource(source, path, text string) []Symbol {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	var syms []Symbol
	for i, raw := range lines {
		cleared := ClearStrings(raw)

		if m := blockDefPattern.FindStringSubmatchIndex(cleared); m != nil {
			name := cleared[m[4]:m[5]]
			syms = append(syms, NewSymbol(Symbol{
				Source: source,
				Name:   name,
				Kind:   cleared[m[2]:m[3]],
				Path:   path,
				Line:   i + 1,
				Column: runeColumn(cleared, m[4]),
				Args:   rawSlice(raw, cleared, m[8], m[9]),
			}))
			continue
		}

		if m := pythonDefPattern.FindStringSubmatchIndex(cleared); m != nil {
			name := cleared[m[4]:m[5]]
			syms = append(syms, NewSymbol(Symbol{
				Source: source,
				Name:   name,
				Kind:   cleared[m[2]:m[3]],
				Path:   path,
				Line:   i + 1,
				Column: runeColumn(cleared, m[4]),
				Args:   rawSlice(raw, cleared, m[8], m[9]),
				Docs:   extractDocstring(lines, i+1),
			}))
			continue
		}

		if m := assignPattern.FindStringSubmatchIndex(cleared); m != nil {
			name := cleared[m[4]:m[5]]
			syms = append(syms, NewSymbol(Symbol{
				Source:  source,
				Name:    name,
				Kind:    cleared[m[2]:m[3]],
				Path:    path,
				Line:    i + 1,
				Column:  runeColumn(cleared, m[4]),
				Literal: strings.TrimSpace(rawSlice(raw, cleared, m[6], m[7])),
			}))
		}
	}
	return syms
}

// ScanFile reads and scans one script file under root. relPath is stored on
// the resulting symbols; source is the project identifier.
func ScanFile(source, root, relPath string) ([]Symbol, error) {
	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, err
	}
	return ScanSource(source, relPath, string(data)), nil
}

// runeColumn converts a byte offset in a line to a 0-based character column.
func runeColumn(line string, byteOff int) int {
	return utf8.RuneCountInString(line[:byteOff])
}

// rawSlice maps a byte span found in the cleared line back onto the raw
// line, recovering the text that ClearStrings blanked. Cleared and raw lines
// are rune-for-rune aligned. A missing capture (start < 0) yields "".
func rawSlice(raw, cleared string, start, end int) string {
	if start < 0 || end < 0 {
		return ""
	}
	rs := runeColumn(cleared, start)
	re := rs + utf8.RuneCountInString(cleared[start:end])
	runes := []rune(raw)
	if rs > len(runes) {
		return ""
	}
	if re > len(runes) {
		re = len(runes)
	}
	return string(runes[rs:re])
}

// extractDocstring returns the triple-quoted string that opens a definition
// body, starting the search at the given line. Blank lines before the
// docstring are skipped; any other statement means there is no docstring.
func extractDocstring(lines []string, start int) string {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return ""
	}

	trimmed := strings.TrimSpace(lines[i])
	delim := ""
	switch {
	case strings.HasPrefix(trimmed, `"""`):
		delim = `"""`
	case strings.HasPrefix(trimmed, "'''"):
		delim = "'''"
	default:
		return ""
	}

	body := trimmed[len(delim):]
	if end := strings.Index(body, delim); end >= 0 {
		return body[:end]
	}

	parts := []string{body}
	for i++; i < len(lines); i++ {
		line := lines[i]
		if end := strings.Index(line, delim); end >= 0 {
			parts = append(parts, strings.TrimRight(line[:end], " \t"))
			break
		}
		parts = append(parts, line)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
