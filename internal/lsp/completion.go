package lsp

import (
	"encoding/json"
	"sort"

	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/parser"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindVariable = 6
	completionKindKeyword  = 14
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return reply(msg, CompletionList{Items: []CompletionItem{}})
	}
	return reply(msg, CompletionList{Items: getCompletions(doc, params.Position)})
}

// getCompletions offers the variables bound at the cursor, innermost
// shadowing outer ones, followed by the keywords.
func getCompletions(doc *Document, pos Position) []CompletionItem {
	visible := make(map[string]string)
	for _, b := range value.Prelude() {
		visible[b.Name] = value.StaticType(b.Value).String()
	}

	if doc.Typed != nil {
		offset := positionToOffset(doc.Content, pos)
		path := enclosing(doc.Typed, offset)
		for i := 0; i < len(path)-1; i++ {
			switch op := path[i].Op.(type) {
			case *ir.Let:
				if op.Body == path[i+1] {
					visible[op.Local.Name] = op.Value.Type.String()
				}
			case *ir.Var:
				if op.Body == path[i+1] {
					inner, _ := types.AsTypeOf(op.TypeExpr.Type)
					visible[op.Local.Name] = inner.String()
				}
			}
		}
	}

	names := make([]string, 0, len(visible))
	for name := range visible {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]CompletionItem, 0, len(names)+len(parser.Keywords))
	for _, name := range names {
		items = append(items, CompletionItem{
			Label:  name,
			Kind:   completionKindVariable,
			Detail: visible[name],
		})
	}
	for _, kw := range parser.Keywords {
		items = append(items, CompletionItem{
			Label: kw,
			Kind:  completionKindKeyword,
		})
	}
	return items
}
