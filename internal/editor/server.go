package editor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"rpyscope/internal/analysis"
	"rpyscope/internal/index"
	"rpyscope/internal/logging"
)

// Server answers editor queries against a project's symbol index.
type Server struct {
	name      string
	version   string
	idx       *index.Index
	overrides []analysis.TypeOverride
	logger    *slog.Logger
	in        io.Reader
	out       io.Writer
}

// NewServer creates an editor server backed by the given index.
func NewServer(name, version string, idx *index.Index) *Server {
	return &Server{
		name:    name,
		version: version,
		idx:     idx,
		logger:  logging.Default("editor"),
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetTypeOverrides installs project-specific literal classifications applied
// by the inferType method.
func (s *Server) SetTypeOverrides(overrides []analysis.TypeOverride) {
	s.overrides = overrides
}

// SetIO redirects the protocol stream, primarily for tests.
func (s *Server) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// Run reads requests line by line until EOF.
func (s *Server) Run() error {
	reader := bufio.NewReader(s.in)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if len(line) == 0 || string(line) == "\n" {
			continue
		}

		response := s.handleMessage(line)
		if response != nil {
			if err := s.writeResponse(response); err != nil {
				s.logger.Error("error writing response", "error", err)
			}
		}
	}
}

func (s *Server) handleMessage(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("parse error", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error: &Error{
				Code:    ParseError,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}
	}

	s.logger.Debug("received request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req)
	case "initialized":
		// Notification, no response needed
		return nil
	case "ping":
		return s.result(&req, map[string]any{})
	case "signatureHelp":
		return s.handleSignatureHelp(&req)
	case "blockContext":
		return s.handleBlockContext(&req)
	case "inferType":
		return s.handleInferType(&req)
	case "findSymbol":
		return s.handleFindSymbol(&req)
	case "listDefs":
		return s.handleListDefs(&req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &Error{
				Code:    MethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return s.result(req, InitializeResult{
		ServerInfo: ServerInfo{Name: s.name, Version: s.version},
		Methods: []string{
			"initialize", "ping", "signatureHelp", "blockContext",
			"inferType", "findSymbol", "listDefs",
		},
	})
}

func (s *Server) result(req *Request, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) invalidParams(req *Request, err error) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Error: &Error{
			Code:    InvalidParams,
			Message: "Invalid params",
			Data:    err.Error(),
		},
	}
}

func (s *Server) internalError(req *Request, err error) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Error: &Error{
			Code:    InternalError,
			Message: err.Error(),
		},
	}
}

func (s *Server) writeResponse(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s\n", data)
	return err
}
