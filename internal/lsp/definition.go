package lsp

import (
	"encoding/json"

	"github.com/asurkis/experimental-interpreter/internal/ir"
)

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil || doc.Typed == nil {
		return reply(msg, nil)
	}
	return reply(msg, findDefinition(doc, params.Position))
}

// findDefinition resolves the variable under the cursor to the name in the
// let or var that bound it. Prelude names have no definition.
func findDefinition(doc *Document, pos Position) *Location {
	offset := positionToOffset(doc.Content, pos)
	path := enclosing(doc.Typed, offset)
	if len(path) == 0 {
		return nil
	}

	var local ir.Local
	switch op := path[len(path)-1].Op.(type) {
	case *ir.Load:
		local = op.Local
	case *ir.Store:
		local = op.Local
	case *ir.StoreIndex:
		local = op.Local
	default:
		return nil
	}

	// Slots are binding depths, so exactly one ancestor owns this slot.
	for i := len(path) - 2; i >= 0; i-- {
		switch op := path[i].Op.(type) {
		case *ir.Let:
			if op.Local.Slot == local.Slot && op.Body == path[i+1] {
				return &Location{URI: doc.URI, Range: spanRange([]rune(doc.Content), op.Def.Start, op.Def.End)}
			}
		case *ir.Var:
			if op.Local.Slot == local.Slot && op.Body == path[i+1] {
				return &Location{URI: doc.URI, Range: spanRange([]rune(doc.Content), op.Def.Start, op.Def.End)}
			}
		}
	}
	return nil
}
