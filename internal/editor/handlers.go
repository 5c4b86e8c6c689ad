package editor

import (
	"encoding/json"
	"fmt"

	"rpyscope/internal/analysis"
	"rpyscope/internal/document"
	"rpyscope/internal/index"
)

// SignatureHelpParams locates a call site: the full document text plus the
// cursor position.
type SignatureHelpParams struct {
	Text     string            `json:"text"`
	Position document.Position `json:"position"`
}

// SignatureHelpResult carries the assembled signature, or nothing when the
// cursor is not inside a known call.
type SignatureHelpResult struct {
	Signature *analysis.Signature `json:"signature"`
}

// BlockContextParams locates a cursor inside a document.
type BlockContextParams struct {
	Text     string            `json:"text"`
	Position document.Position `json:"position"`
}

// BlockContextResult names the enclosing block keyword, if any.
type BlockContextResult struct {
	Context string `json:"context"`
	Found   bool   `json:"found"`
}

// InferTypeParams classifies either an explicit literal or the defining
// literal of an indexed symbol.
type InferTypeParams struct {
	Name    string `json:"name"`
	Literal string `json:"literal,omitempty"`
}

// FindSymbolParams searches the index by name, optionally restricted to one
// kind.
type FindSymbolParams struct {
	Name  string `json:"name"`
	Kind  string `json:"kind,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ListDefsParams lists the definitions of one indexed file.
type ListDefsParams struct {
	Path string `json:"path"`
}

func unmarshalParams(req *Request, v any) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("params required")
	}
	return json.Unmarshal(req.Params, v)
}

func (s *Server) handleSignatureHelp(req *Request) *Response {
	var params SignatureHelpParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.invalidParams(req, err)
	}

	doc := document.New(params.Text)
	line := doc.Line(params.Position.Line)

	name := analysis.CalleeName(line, params.Position.Character)
	if name == "" {
		return s.result(req, SignatureHelpResult{})
	}

	sym, err := s.idx.LookupSymbol(name)
	if err != nil {
		return s.internalError(req, err)
	}
	if sym == nil {
		s.logger.Debug("callee not indexed", "name", name)
		return s.result(req, SignatureHelpResult{})
	}

	sig := analysis.BuildSignature(sym.Name, sym.Args, sym.Docs, line, params.Position.Character)
	return s.result(req, SignatureHelpResult{Signature: &sig})
}

func (s *Server) handleBlockContext(req *Request) *Response {
	var params BlockContextParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.invalidParams(req, err)
	}

	doc := document.New(params.Text)
	ctx, found := analysis.FindBlockContext(doc, params.Position, index.ClearStrings)
	return s.result(req, BlockContextResult{Context: ctx, Found: found})
}

func (s *Server) handleInferType(req *Request) *Response {
	var params InferTypeParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.invalidParams(req, err)
	}

	literal := params.Literal
	if literal == "" && params.Name != "" {
		sym, err := s.idx.LookupSymbol(params.Name)
		if err != nil {
			return s.internalError(req, err)
		}
		if sym != nil {
			literal = sym.Literal
		}
	}

	return s.result(req, analysis.InferType(params.Name, literal, s.overrides...))
}

func (s *Server) handleFindSymbol(req *Request) *Response {
	var params FindSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.invalidParams(req, err)
	}
	if params.Name == "" {
		return s.invalidParams(req, fmt.Errorf("name required"))
	}

	symbols, err := s.idx.FindSymbol(params.Name, params.Kind, params.Limit)
	if err != nil {
		return s.internalError(req, err)
	}
	return s.result(req, index.FindSymbolResult{Symbols: symbols})
}

func (s *Server) handleListDefs(req *Request) *Response {
	var params ListDefsParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.invalidParams(req, err)
	}
	if params.Path == "" {
		return s.invalidParams(req, fmt.Errorf("path required"))
	}

	symbols, err := s.idx.ListDefsInFile(params.Path)
	if err != nil {
		return s.internalError(req, err)
	}
	return s.result(req, index.ListDefsResult{Path: params.Path, Symbols: symbols})
}
