package analysis

import (
	"strconv"
	"strings"
)

// Coarse type tags produced by InferType. A literal that matches none of the
// built-in rules keeps its raw token text as the type, for the caller to
// resolve against a class index.
const (
	TypeBoolean    = "boolean"
	TypeNumber     = "number"
	TypeString     = "string"
	TypeSet        = "set"
	TypeDictionary = "dictionary"
)

// TypeOverride maps additional literal spellings onto a caller-supplied type
// name, e.g. framework prefixes like "im." for image literals. Overrides are
// applied after the built-in rules and may replace an already-assigned type.
type TypeOverride struct {
	Type     string
	Literals []string
}

// Classification pairs a variable name with the coarse type inferred from
// its defining literal.
type Classification struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InferType classifies the literal token that begins a definition's
// right-hand side. Rules are checked in order, first match wins:
// True/False, parseable number, string prefix ('_' or a quote character),
// '[' for sets, '{' for dictionaries. Anything else is treated as a
// custom/base-class reference and passed through as-is.
func InferType(name, literal string, overrides ...TypeOverride) Classification {
	inferred := literal

	switch {
	case literal == "True" || literal == "False":
		inferred = TypeBoolean
	case isNumeric(literal):
		inferred = TypeNumber
	case strings.HasPrefix(literal, "_"),
		strings.HasPrefix(literal, `"`),
		strings.HasPrefix(literal, "`"),
		strings.HasPrefix(literal, "'"):
		inferred = TypeString
	case strings.HasPrefix(literal, "["):
		inferred = TypeSet
	case strings.HasPrefix(literal, "{"):
		inferred = TypeDictionary
	}

	for _, ov := range overrides {
		for _, spelling := range ov.Literals {
			if strings.HasPrefix(literal, spelling) {
				inferred = ov.Type
			}
		}
	}

	return Classification{Name: name, Type: inferred}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
