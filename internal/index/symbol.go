// Package index maintains the SQLite-backed symbol index for Ren'Py
// projects: definitions extracted from .rpy script files together with their
// declared argument lists, defining literals and documentation.
package index

import (
	"fmt"

	"rpyscope/internal/analysis"
)

// Symbol is one named definition found in a script file.
type Symbol struct {
	Source  string `json:"source"`            // originating project identifier
	Name    string `json:"name"`
	Kind    string `json:"kind"`              // screen, label, transform, def, class, style, define, default
	Path    string `json:"path"`              // file path relative to the project root
	Line    int    `json:"line"`              // 1-indexed line number
	Column  int    `json:"column"`            // 0-indexed start column of the name
	Args    string `json:"args,omitempty"`    // declared formal-argument-list text, may be empty
	Literal string `json:"literal,omitempty"` // right-hand side of define/default assignments
	Docs    string `json:"docs,omitempty"`    // raw documentation text
}

// NewSymbol finalizes a Symbol record. Backslash-escaped quotes in the
// documentation are normalized here, once, so consumers never see them.
func NewSymbol(s Symbol) Symbol {
	s.Docs = analysis.UnescapeQuotes(s.Docs)
	return s
}

// Range renders the canonical source-range string for the symbol's name on
// its defining line: "file:line;startCol-endCol".
func (s Symbol) Range() string {
	return fmt.Sprintf("%s:%d;%d-%d", s.Path, s.Line, s.Column, s.Column+len(s.Name))
}

// FindSymbolResult is the result of a symbol search.
type FindSymbolResult struct {
	Symbols []Symbol `json:"symbols"`
}

// ListDefsResult is the result of listing definitions in a file.
type ListDefsResult struct {
	Path    string   `json:"path"`
	Symbols []Symbol `json:"symbols"`
}
