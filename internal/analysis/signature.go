package analysis

import "strings"

// spaceMark replaces spaces while a call line is being prepared so each word
// stays contiguous for keyword matching. U+2017 looks like an underscore but
// cannot collide with real underscores in identifiers.
const spaceMark = '‗'

// Parameter is one declared formal paired with its generated documentation.
type Parameter struct {
	Label string `json:"label"`
	Doc   string `json:"doc"`
}

// Signature is the display-ready description of a call site: the full
// signature label, per-parameter documentation, the cleaned documentation of
// the callable itself, and the index of the parameter the cursor currently
// occupies.
//
// Active is intentionally not clamped to len(Params): a call site with more
// positional arguments than declared formals yields an index past the end,
// which callers can detect.
type Signature struct {
	Label  string      `json:"label"`
	Doc    string      `json:"doc,omitempty"`
	Params []Parameter `json:"params"`
	Active int         `json:"active"`
}

// prepareCallLine runs the delimiter scan over a call-site line while
// applying the cosmetic transforms signature help needs: double quotes
// become single quotes (still toggling the quote flag), spaces become
// spaceMark, and scoped commas become protectedComma. The very first '(' is
// the call opener and does not count as a nesting scope.
//
// Every transform is a one-for-one rune replacement, so character offsets
// into the original line remain valid in the prepared line.
func prepareCallLine(line string) string {
	var st scanState
	sawCallOpen := false

	out := make([]rune, 0, len(line))
	for _, r := range line {
		switch r {
		case '"':
			st.Quote = !st.Quote
			r = '\''
		case '(':
			if sawCallOpen {
				st.Paren = true
			} else {
				sawCallOpen = true
			}
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
		case ' ':
			r = spaceMark
		case ',':
			if st.inside() {
				r = protectedComma
			}
		}
		out = append(out, r)
	}
	return string(out)
}

// callPieces splits the argument region of a prepared line, from one past
// its first '(' to the end, on the commas left unprotected by the scan.
// A line with no '(' has no argument region and yields nil.
func callPieces(prepared string) []string {
	open := strings.IndexByte(prepared, '(')
	if open < 0 {
		return nil
	}
	return strings.Split(prepared[open+1:], ",")
}

// dropMarks removes the scan placeholders from a keyword candidate.
func dropMarks(r rune) rune {
	if r == spaceMark || r == protectedComma {
		return -1
	}
	return r
}

// ParseFormals splits a declared formal-argument-list string into its
// top-level pieces. One leading '(' and one trailing ')' are stripped if
// present. Empty input yields nil.
func ParseFormals(formalArgs string) []string {
	s := strings.TrimSpace(formalArgs)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return SplitArgs(s, true)
}

// formalName returns the declared name of a formal, i.e. the text left of
// its default value if one is present.
func formalName(formal string) string {
	if eq := strings.IndexByte(formal, '='); eq >= 0 {
		return formal[:eq]
	}
	return formal
}

// formalDoc generates the documentation line for one declared formal.
func formalDoc(formal string) string {
	name, dflt, hasDefault := strings.Cut(formal, "=")
	if !hasDefault {
		return "`" + name + "` parameter."
	}
	return "`" + name + "` parameter (optional). Default is `" + dflt + "`."
}

// signatureLabel renders the full signature text for display.
func signatureLabel(name, formalArgs string) string {
	args := strings.TrimSpace(formalArgs)
	if args == "" {
		return name + "()"
	}
	if strings.HasPrefix(args, "(") {
		return name + args
	}
	return name + "(" + args + ")"
}

// BuildSignature determines which declared formal of a known callable the
// cursor currently occupies and assembles the display-ready signature.
//
// symName and formalArgs come from the symbol index (the declared parameter
// list as stored text, possibly empty); docs is the symbol's raw
// documentation. line is the call-site source line and cursor a 0-based
// character offset into it.
//
// Resolution order: positional index from the top-level comma count in the
// prefix before the cursor; then, if the current piece supplies a keyword,
// the declared formal with that name; failing that, a trailing "**" catch-all
// collector if one is declared. No input combination raises an error.
func BuildSignature(symName, formalArgs, docs, line string, cursor int) Signature {
	prepared := []rune(prepareCallLine(line))
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(prepared) {
		cursor = len(prepared)
	}

	pieces := callPieces(string(prepared[:cursor]))
	pos := len(pieces) - 1
	if pos < 0 {
		pos = 0
	}

	keyword := ""
	if pos < len(pieces) {
		if name, _, ok := strings.Cut(pieces[pos], "="); ok {
			keyword = strings.Map(dropMarks, name)
		}
	}

	formals := ParseFormals(formalArgs)
	params := make([]Parameter, 0, len(formals))
	for _, f := range formals {
		params = append(params, Parameter{Label: f, Doc: formalDoc(f)})
	}

	active := pos
	if keyword != "" {
		matched := false
		for i, f := range formals {
			if formalName(f) == keyword {
				active = i
				matched = true
				break
			}
		}
		if !matched && len(formals) > 0 && strings.HasPrefix(formals[len(formals)-1], "**") {
			active = len(formals) - 1
		}
	}

	return Signature{
		Label:  signatureLabel(symName, formalArgs),
		Doc:    CleanDoc(docs),
		Params: params,
		Active: active,
	}
}

// CalleeName extracts the identifier immediately preceding the call-opening
// '(' in the prefix of line before the cursor. It returns "" when the prefix
// holds no call expression.
func CalleeName(line string, cursor int) string {
	runes := []rune(line)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	prefix := string(runes[:cursor])

	open := strings.IndexByte(prefix, '(')
	if open <= 0 {
		return ""
	}

	end := open
	start := end
	for start > 0 {
		r := rune(prefix[start-1])
		if r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			start--
			continue
		}
		break
	}
	return prefix[start:end]
}
