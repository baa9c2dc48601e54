package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
	"github.com/asurkis/experimental-interpreter/internal/types"
)

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil || doc.Typed == nil {
		return reply(msg, nil)
	}
	return reply(msg, getHover(doc, params.Position))
}

func getHover(doc *Document, pos Position) *Hover {
	offset := positionToOffset(doc.Content, pos)
	path := enclosing(doc.Typed, offset)
	if len(path) == 0 {
		return nil
	}
	node := path[len(path)-1]

	var label string
	var span lexer.Span
	switch op := node.Op.(type) {
	case *ir.Load:
		label = fmt.Sprintf("%s : %s", op.Local.Name, node.Type)
		span = node.Span
	case *ir.Let:
		if !contains(op.Def, offset) {
			label, span = fmt.Sprintf("%s : %s", node.Header(), node.Type), node.Span
			break
		}
		label = fmt.Sprintf("%s : %s", op.Local.Name, op.Value.Type)
		span = op.Def
	case *ir.Var:
		if !contains(op.Def, offset) {
			label, span = fmt.Sprintf("%s : %s", node.Header(), node.Type), node.Span
			break
		}
		inner, _ := types.AsTypeOf(op.TypeExpr.Type)
		label = fmt.Sprintf("%s : %s", op.Local.Name, inner)
		span = op.Def
	default:
		label = fmt.Sprintf("%s : %s", node.Header(), node.Type)
		span = node.Span
	}

	r := spanRange([]rune(doc.Content), span.Start, span.End)
	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: "```expi\n" + label + "\n```",
		},
		Range: &r,
	}
}

func contains(span lexer.Span, offset int) bool {
	return offset >= span.Start && offset < span.End
}

// enclosing returns the chain of typed nodes whose spans contain offset,
// outermost first.
func enclosing(root *ir.Expr, offset int) []*ir.Expr {
	var path []*ir.Expr
	node := root
	for node != nil && contains(node.Span, offset) {
		path = append(path, node)
		var next *ir.Expr
		for _, child := range ir.Children(node) {
			if contains(child.Span, offset) {
				next = child
				break
			}
		}
		node = next
	}
	return path
}

// positionToOffset converts an LSP position to a rune offset.
func positionToOffset(content string, pos Position) int {
	line, col, offset := 0, 0, 0
	for _, r := range content {
		if line == pos.Line && col == pos.Character {
			return offset
		}
		if r == '\n' {
			if line == pos.Line {
				return offset
			}
			line++
			col = 0
		} else {
			col++
		}
		offset++
	}
	return offset
}

// offsetToPosition converts a rune offset to an LSP position.
func offsetToPosition(content []rune, offset int) Position {
	offset = min(max(offset, 0), len(content))
	var pos Position
	for _, r := range content[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character++
		}
	}
	return pos
}

func spanRange(content []rune, start, end int) Range {
	end = max(end, start)
	return Range{
		Start: offsetToPosition(content, start),
		End:   offsetToPosition(content, end),
	}
}
