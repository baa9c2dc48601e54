package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
)

func frame(t *testing.T, id interface{}, method string, params interface{}) string {
	t.Helper()
	msg := map[string]interface{}{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
}

// readAll splits the server output into decoded messages.
func readAll(t *testing.T, out []byte) []jsonrpcMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []jsonrpcMessage
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return msgs
		}
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
		if err != nil {
			t.Fatalf("bad header %q", line)
		}
		if _, err := r.ReadString('\n'); err != nil {
			t.Fatalf("read separator: %v", err)
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			t.Fatalf("read body: %v", err)
		}
		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		msgs = append(msgs, msg)
	}
}

func serve(t *testing.T, input string) []jsonrpcMessage {
	t.Helper()
	var out bytes.Buffer
	if err := NewServer(strings.NewReader(input), &out, nil).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return readAll(t, out.Bytes())
}

func openParams(uri, text string) map[string]interface{} {
	return map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri": uri, "languageId": "expi", "version": 1, "text": text,
		},
	}
}

func decodeParams(t *testing.T, msg jsonrpcMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(msg.Params, v); err != nil {
		t.Fatalf("decode params: %v", err)
	}
}

func TestInitialize(t *testing.T) {
	msgs := serve(t, frame(t, 1, "initialize", map[string]interface{}{}))
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	result, _ := json.Marshal(msgs[0].Result)
	var init InitializeResult
	if err := json.Unmarshal(result, &init); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !init.Capabilities.HoverProvider || !init.Capabilities.DefinitionProvider {
		t.Fatalf("unexpected capabilities %+v", init.Capabilities)
	}
	if init.ServerInfo.Name != "expi-lsp" {
		t.Fatalf("unexpected server info %+v", init.ServerInfo)
	}
}

func TestPublishValueAndErrors(t *testing.T) {
	input := frame(t, nil, "textDocument/didOpen", openParams("file:///a.expi", "(let x 1 (+ x 2))")) +
		frame(t, nil, "textDocument/didChange", map[string]interface{}{
			"textDocument":   map[string]interface{}{"uri": "file:///a.expi", "version": 2},
			"contentChanges": []map[string]interface{}{{"text": "(+ 1 i64)"}},
		}) +
		frame(t, nil, "exit", nil) +
		frame(t, 9, "shutdown", nil)

	msgs := serve(t, input)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notifications before exit, got %d", len(msgs))
	}

	var first PublishDiagnosticsParams
	decodeParams(t, msgs[0], &first)
	if len(first.Diagnostics) != 1 {
		t.Fatalf("expected the value note, got %+v", first.Diagnostics)
	}
	if d := first.Diagnostics[0]; d.Severity != 3 || d.Message != "3 : Int64" {
		t.Fatalf("unexpected value note %+v", d)
	}

	var second PublishDiagnosticsParams
	decodeParams(t, msgs[1], &second)
	if second.Version != 2 || len(second.Diagnostics) != 1 {
		t.Fatalf("unexpected diagnostics %+v", second)
	}
	d := second.Diagnostics[0]
	if d.Severity != 1 || d.Code != "TYPE_INVALID_OPERAND" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	want := Range{Start: Position{0, 5}, End: Position{0, 8}}
	if d.Range != want {
		t.Fatalf("expected range %+v, got %+v", want, d.Range)
	}
}

func TestRuntimeErrorPublished(t *testing.T) {
	msgs := serve(t, frame(t, nil, "textDocument/didOpen", openParams("file:///b.expi", "(/ 1 0)")))
	var params PublishDiagnosticsParams
	decodeParams(t, msgs[0], &params)
	if len(params.Diagnostics) != 1 || params.Diagnostics[0].Code != "EVAL_DIVIDE_BY_ZERO" {
		t.Fatalf("unexpected diagnostics %+v", params.Diagnostics)
	}
	if params.Diagnostics[0].Source != "expi eval" {
		t.Fatalf("unexpected source %q", params.Diagnostics[0].Source)
	}
}

func TestRunStopsOnCancelWhileIdle(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer(r, io.Discard, nil).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("server kept waiting for input after cancellation")
	}
}

func TestRunReturnsOnEOF(t *testing.T) {
	if msgs := serve(t, ""); len(msgs) != 0 {
		t.Fatalf("expected no output, got %+v", msgs)
	}
}

func TestUnknownMethod(t *testing.T) {
	msgs := serve(t, frame(t, 3, "workspace/symbol", map[string]interface{}{}))
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != -32601 {
		t.Fatalf("expected method not found, got %+v", msgs)
	}
}

func openDoc(text string) *Document {
	doc := &Document{URI: "file:///t.expi", Content: text}
	updateDocument(doc)
	return doc
}

func TestHover(t *testing.T) {
	doc := openDoc("(let x 1 (+ x 2))")
	tests := []struct {
		pos   Position
		label string
	}{
		{Position{0, 12}, "x : Int64"},
		{Position{0, 5}, "x : Int64"},
		{Position{0, 10}, "+ : Int64"},
		{Position{0, 1}, "let x#1 : Int64"},
		{Position{0, 14}, "const 2 : Int64"},
	}

	for _, tt := range tests {
		h := getHover(doc, tt.pos)
		if h == nil {
			t.Errorf("%+v: expected hover", tt.pos)
			continue
		}
		want := "```expi\n" + tt.label + "\n```"
		if h.Contents.Value != want {
			t.Errorf("%+v: expected %q, got %q", tt.pos, want, h.Contents.Value)
		}
	}

	if h := getHover(doc, Position{3, 0}); h != nil {
		t.Errorf("expected no hover past the end, got %+v", h)
	}
}

func TestHoverVarBinding(t *testing.T) {
	doc := openDoc("(var xs (array-t i64) xs)")
	h := getHover(doc, Position{0, 6})
	if h == nil || h.Contents.Value != "```expi\nxs : Array(Int64)\n```" {
		t.Fatalf("unexpected hover %+v", h)
	}
}

func TestDefinition(t *testing.T) {
	doc := openDoc("(let x 1\n  (let y x\n    (seq (set y x) y)))")

	loc := findDefinition(doc, Position{2, 16})
	if loc == nil {
		t.Fatalf("expected a definition for x")
	}
	if want := (Range{Start: Position{0, 5}, End: Position{0, 6}}); loc.Range != want {
		t.Fatalf("expected %+v, got %+v", want, loc.Range)
	}

	loc = findDefinition(doc, Position{2, 13})
	if loc == nil || loc.Range.Start != (Position{1, 7}) {
		t.Fatalf("expected y to resolve to line 2, got %+v", loc)
	}

	if loc := findDefinition(openDoc("i64"), Position{0, 1}); loc != nil {
		t.Fatalf("prelude names have no definition, got %+v", loc)
	}
}

func TestCompletion(t *testing.T) {
	doc := openDoc("(let x 1 (let y (array x) y))")
	items := getCompletions(doc, Position{0, 26})

	details := make(map[string]string)
	for _, item := range items {
		details[item.Label] = item.Detail
	}
	if details["x"] != "Int64" || details["y"] != "Array(Int64)" || details["i64"] != "Type(Int64)" {
		t.Fatalf("unexpected variables %+v", details)
	}
	if _, ok := details["array-set"]; !ok {
		t.Fatalf("expected keywords in completions")
	}

	// y is not bound inside its own value.
	items = getCompletions(doc, Position{0, 23})
	for _, item := range items {
		if item.Label == "y" {
			t.Fatalf("y should not be visible in its own initializer")
		}
	}
}

func TestPositionConversions(t *testing.T) {
	content := "ab\ncd\n"
	tests := []struct {
		pos    Position
		offset int
	}{
		{Position{0, 0}, 0},
		{Position{0, 2}, 2},
		{Position{1, 1}, 4},
		{Position{0, 9}, 2},
		{Position{5, 0}, 6},
	}
	for _, tt := range tests {
		if got := positionToOffset(content, tt.pos); got != tt.offset {
			t.Errorf("%+v: expected offset %d, got %d", tt.pos, tt.offset, got)
		}
	}
	if got := offsetToPosition([]rune(content), 4); got != (Position{1, 1}) {
		t.Errorf("unexpected position %+v", got)
	}
}

func TestURIToPath(t *testing.T) {
	tests := map[string]string{
		"file:///home/a.expi":   "/home/a.expi",
		"file:///C:/src/a.expi": "C:/src/a.expi",
		"untitled:1":            "untitled:1",
	}
	for uri, want := range tests {
		if got := uriToPath(uri); got != want {
			t.Errorf("%s: expected %s, got %s", uri, want, got)
		}
	}
}
