package ir

import (
	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

// Expr is a type-annotated node: the inferred type paired with a resolved operation.
type Expr struct {
	Type types.Type
	Op   Op
	Span lexer.Span
}

// Op mirrors the syntax tree with every name resolved to an environment slot.
type Op interface {
	opNode()
}

// Local identifies a binding by its environment slot. Name is kept for rendering
// and error messages only.
type Local struct {
	Slot int
	Name string
}

// Const yields a literal value.
type Const struct {
	Value value.Value
}

// Load reads a binding.
type Load struct {
	Local Local
}

// Let evaluates Value into a new slot for the duration of Body. Def is the
// span of the bound name.
type Let struct {
	Local Local
	Def   lexer.Span
	Value *Expr
	Body  *Expr
}

// Var evaluates TypeExpr and stores the zero value of the resulting type in a
// new slot for the duration of Body.
type Var struct {
	Local    Local
	Def      lexer.Span
	TypeExpr *Expr
	Body     *Expr
}

// Seq evaluates Items in order and yields the last result.
type Seq struct {
	Items []*Expr
}

// Store overwrites an existing binding and yields Unit.
type Store struct {
	Local Local
	Value *Expr
}

// MakeArray evaluates Elems left to right into a fresh array.
type MakeArray struct {
	Elems []*Expr
}

// MakeArrayType yields the array type over the type value Elem evaluates to.
type MakeArrayType struct {
	Elem *Expr
}

// Arith folds Operands left to right.
type Arith struct {
	Op       ast.ArithOp
	Operands []*Expr
}

// Index reads one element of a temporary array value.
type Index struct {
	Index *Expr
	Array *Expr
}

// StoreIndex overwrites one element of the array held by Local and yields Unit.
type StoreIndex struct {
	Local Local
	Index *Expr
	Value *Expr
}

func (*Const) opNode()         {}
func (*Load) opNode()          {}
func (*Let) opNode()           {}
func (*Var) opNode()           {}
func (*Seq) opNode()           {}
func (*Store) opNode()         {}
func (*MakeArray) opNode()     {}
func (*MakeArrayType) opNode() {}
func (*Arith) opNode()         {}
func (*Index) opNode()         {}
func (*StoreIndex) opNode()    {}

// Children returns the sub-expressions of e in source order.
func Children(e *Expr) []*Expr {
	switch op := e.Op.(type) {
	case *Let:
		return []*Expr{op.Value, op.Body}
	case *Var:
		return []*Expr{op.TypeExpr, op.Body}
	case *Seq:
		return op.Items
	case *Store:
		return []*Expr{op.Value}
	case *MakeArray:
		return op.Elems
	case *MakeArrayType:
		return []*Expr{op.Elem}
	case *Arith:
		return op.Operands
	case *Index:
		return []*Expr{op.Index, op.Array}
	case *StoreIndex:
		return []*Expr{op.Index, op.Value}
	default:
		return nil
	}
}
