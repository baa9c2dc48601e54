package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/driver"
	"github.com/asurkis/experimental-interpreter/internal/ir"
)

// Server represents the LSP server. Every edit reruns the whole pipeline and
// republishes diagnostics, with the computed value as an information note.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	in    *bufio.Reader
	out   io.Writer
	outMu sync.Mutex

	logger *log.Logger
}

// Document represents an open document.
type Document struct {
	URI     string
	Content string
	Version int
	// Typed is nil unless the program type checks.
	Typed  *ir.Expr
	Result *driver.Result
	Errors []diag.Diagnostic
}

// NewServer creates a server speaking JSON-RPC over r and w.
func NewServer(r io.Reader, w io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		Documents: make(map[string]*Document),
		in:        bufio.NewReader(r),
		out:       w,
		logger:    logger,
	}
}

type incoming struct {
	body []byte
	err  error
}

// Run serves requests until the input ends, the client sends exit, or ctx
// is cancelled. Reads happen on their own goroutine so cancellation does not
// wait for the client.
func (s *Server) Run(ctx context.Context) error {
	msgs := make(chan incoming)
	stop := make(chan struct{})
	defer close(stop)
	go s.readLoop(msgs, stop)

	for {
		var in incoming
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-msgs:
		}

		if in.err == io.EOF {
			return nil
		}
		if in.err != nil {
			return in.err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(in.body, &msg); err != nil {
			s.logger.Printf("Failed to parse JSON-RPC message: %v", err)
			continue
		}
		if msg.Method == "exit" {
			return nil
		}

		if response := s.handleMessage(&msg); response != nil {
			if err := s.send(response); err != nil {
				s.logger.Printf("Failed to send response: %v", err)
			}
		}
	}
}

// readLoop feeds framed messages to msgs until a read fails or stop closes.
func (s *Server) readLoop(msgs chan<- incoming, stop <-chan struct{}) {
	for {
		body, err := s.readMessage()
		select {
		case msgs <- incoming{body: body, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// readMessage reads one Content-Length framed message body.
func (s *Server) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, val, ok := strings.Cut(line, ":")
		if !ok {
			s.logger.Printf("Invalid header line %q", line)
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				s.logger.Printf("Invalid Content-Length header: %v", err)
				continue
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("message without Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.in, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents a JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func invalidParams(msg *jsonrpcMessage, err error) *jsonrpcMessage {
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error: &jsonrpcError{
			Code:    -32602,
			Message: fmt.Sprintf("Invalid params: %v", err),
		},
	}
}

func reply(msg *jsonrpcMessage, result interface{}) *jsonrpcMessage {
	return &jsonrpcMessage{JSONRPC: "2.0", ID: msg.ID, Result: result}
}

// handleMessage processes a JSON-RPC message and returns a response.
func (s *Server) handleMessage(msg *jsonrpcMessage) *jsonrpcMessage {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "shutdown":
		return reply(msg, nil)
	default:
		if msg.ID != nil {
			return &jsonrpcMessage{
				JSONRPC: "2.0",
				ID:      msg.ID,
				Error: &jsonrpcError{
					Code:    -32601,
					Message: fmt.Sprintf("Method not found: %s", msg.Method),
				},
			}
		}
		return nil
	}
}

// send writes one framed message.
func (s *Server) send(msg *jsonrpcMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync   int                    `json:"textDocumentSync"`
	CompletionProvider map[string]interface{} `json:"completionProvider,omitempty"`
	HoverProvider      bool                   `json:"hoverProvider"`
	DefinitionProvider bool                   `json:"definitionProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	return reply(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // full document sync
			CompletionProvider: map[string]interface{}{
				"triggerCharacters": []string{"("},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{
			Name:    "expi-lsp",
			Version: "0.1.0",
		},
	})
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didOpen params: %v", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	updateDocument(doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didChange params: %v", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
		Version: params.TextDocument.Version,
	}
	updateDocument(doc)

	s.mu.Lock()
	if _, ok := s.Documents[doc.URI]; !ok {
		s.mu.Unlock()
		return
	}
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didClose params: %v", err)
		return
	}

	s.mu.Lock()
	delete(s.Documents, params.TextDocument.URI)
	s.mu.Unlock()
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

func (s *Server) document(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Documents[uri]
}

// updateDocument runs the pipeline over the document content.
func updateDocument(doc *Document) {
	d := driver.New(driver.WithFilename(uriToPath(doc.URI)))

	typed, err := d.Compile(doc.Content)
	if err != nil {
		doc.Errors = driver.Diagnostics(err)
		return
	}
	doc.Typed = typed

	res, err := d.Evaluate(typed)
	if err != nil {
		doc.Errors = driver.Diagnostics(err)
		return
	}
	doc.Result = res
}

// publishDiagnostics sends diagnostics to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	content := []rune(doc.Content)
	lspDiagnostics := make([]Diagnostic, 0, len(doc.Errors)+1)
	for _, d := range doc.Errors {
		lspDiagnostics = append(lspDiagnostics, Diagnostic{
			Range:    spanRange(content, d.Span.Start, d.Span.End),
			Severity: diagnosticSeverity(d.Severity),
			Message:  d.Message,
			Code:     string(d.Code),
			Source:   "expi " + string(d.Stage),
		})
	}
	if doc.Result != nil {
		span := doc.Typed.Span
		lspDiagnostics = append(lspDiagnostics, Diagnostic{
			Range:    spanRange(content, span.Start, span.End),
			Severity: diagnosticSeverity(diag.SeverityNote),
			Message:  fmt.Sprintf("%s : %s", doc.Result.Value, doc.Result.Type),
			Source:   "expi",
		})
	}

	params, err := json.Marshal(PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: lspDiagnostics,
	})
	if err != nil {
		s.logger.Printf("Failed to marshal diagnostics: %v", err)
		return
	}
	if err := s.send(&jsonrpcMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  params,
	}); err != nil {
		s.logger.Printf("Failed to publish diagnostics: %v", err)
	}
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityError:
		return 1
	case diag.SeverityWarning:
		return 2
	case diag.SeverityNote:
		return 3
	default:
		return 1
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		// Windows paths arrive as /C:/...
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		return path
	}
	return uri
}
