package ast

import (
	"strconv"
	"strings"

	"github.com/asurkis/experimental-interpreter/internal/lexer"
)

// Node represents any syntax tree node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node. Every syntax tree node is an expression.
type Expr interface {
	Node
	String() string
	exprNode()
}

// ArithOp enumerates the arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

// ArithOps maps operator heads to their operator.
var ArithOps = map[string]ArithOp{
	"+": OpAdd,
	"-": OpSub,
	"*": OpMul,
	"/": OpDiv,
	"%": OpRem,
}

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	default:
		return "?"
	}
}

// Ident represents an identifier reference.
type Ident struct {
	Name string
	span lexer.Span
}

// Span returns the identifier span.
func (i *Ident) Span() lexer.Span { return i.span }

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

func (*Ident) exprNode() {}

// LetValue binds Name to Value while evaluating Body: (let name value body).
type LetValue struct {
	Name  *Ident
	Value Expr
	Body  Expr
	span  lexer.Span
}

// Span returns the form span.
func (e *LetValue) Span() lexer.Span { return e.span }

// NewLetValue constructs a let node.
func NewLetValue(name *Ident, value, body Expr, span lexer.Span) *LetValue {
	return &LetValue{Name: name, Value: value, Body: body, span: span}
}

func (*LetValue) exprNode() {}

// LetType declares Name with the zero value of TypeExpr: (var name type body).
type LetType struct {
	Name     *Ident
	TypeExpr Expr
	Body     Expr
	span     lexer.Span
}

// Span returns the form span.
func (e *LetType) Span() lexer.Span { return e.span }

// NewLetType constructs a var node.
func NewLetType(name *Ident, typeExpr, body Expr, span lexer.Span) *LetType {
	return &LetType{Name: name, TypeExpr: typeExpr, Body: body, span: span}
}

func (*LetType) exprNode() {}

// Sequence evaluates Items in order: (seq a b ...).
type Sequence struct {
	Items []Expr
	span  lexer.Span
}

// Span returns the form span.
func (e *Sequence) Span() lexer.Span { return e.span }

// NewSequence constructs a seq node.
func NewSequence(items []Expr, span lexer.Span) *Sequence {
	return &Sequence{Items: items, span: span}
}

func (*Sequence) exprNode() {}

// Assign overwrites an existing binding: (set name value).
type Assign struct {
	Name  *Ident
	Value Expr
	span  lexer.Span
}

// Span returns the form span.
func (e *Assign) Span() lexer.Span { return e.span }

// NewAssign constructs a set node.
func NewAssign(name *Ident, value Expr, span lexer.Span) *Assign {
	return &Assign{Name: name, Value: value, span: span}
}

func (*Assign) exprNode() {}

// IntegerLit represents an integer literal.
type IntegerLit struct {
	Value int64
	span  lexer.Span
}

// Span returns the literal span.
func (l *IntegerLit) Span() lexer.Span { return l.span }

// NewIntegerLit constructs an integer literal node.
func NewIntegerLit(value int64, span lexer.Span) *IntegerLit {
	return &IntegerLit{Value: value, span: span}
}

func (*IntegerLit) exprNode() {}

// ArrayLit builds an array from its elements: (array a b ...).
type ArrayLit struct {
	Elems []Expr
	span  lexer.Span
}

// Span returns the literal span.
func (l *ArrayLit) Span() lexer.Span { return l.span }

// NewArrayLit constructs an array literal node.
func NewArrayLit(elems []Expr, span lexer.Span) *ArrayLit {
	return &ArrayLit{Elems: elems, span: span}
}

func (*ArrayLit) exprNode() {}

// ArrayTypeLit denotes the array type over Elem: (array-t elem).
type ArrayTypeLit struct {
	Elem Expr
	span lexer.Span
}

// Span returns the literal span.
func (l *ArrayTypeLit) Span() lexer.Span { return l.span }

// NewArrayTypeLit constructs an array type literal node.
func NewArrayTypeLit(elem Expr, span lexer.Span) *ArrayTypeLit {
	return &ArrayTypeLit{Elem: elem, span: span}
}

func (*ArrayTypeLit) exprNode() {}

// Arithmetic folds Operands left to right with Op.
type Arithmetic struct {
	Op       ArithOp
	Operands []Expr
	span     lexer.Span
}

// Span returns the expression span.
func (e *Arithmetic) Span() lexer.Span { return e.span }

// NewArithmetic constructs an arithmetic node.
func NewArithmetic(op ArithOp, operands []Expr, span lexer.Span) *Arithmetic {
	return &Arithmetic{Op: op, Operands: operands, span: span}
}

func (*Arithmetic) exprNode() {}

// ArrayGet reads one element: (array-get index array).
type ArrayGet struct {
	Array Expr
	Index Expr
	span  lexer.Span
}

// Span returns the expression span.
func (e *ArrayGet) Span() lexer.Span { return e.span }

// NewArrayGet constructs an array-get node.
func NewArrayGet(array, index Expr, span lexer.Span) *ArrayGet {
	return &ArrayGet{Array: array, Index: index, span: span}
}

func (*ArrayGet) exprNode() {}

// ArraySet overwrites one element of a variable: (array-set index array value).
type ArraySet struct {
	Array Expr
	Index Expr
	Value Expr
	span  lexer.Span
}

// Span returns the expression span.
func (e *ArraySet) Span() lexer.Span { return e.span }

// NewArraySet constructs an array-set node.
func NewArraySet(array, index, value Expr, span lexer.Span) *ArraySet {
	return &ArraySet{Array: array, Index: index, Value: value, span: span}
}

func (*ArraySet) exprNode() {}

func (i *Ident) String() string      { return i.Name }
func (l *IntegerLit) String() string { return strconv.FormatInt(l.Value, 10) }

func (e *LetValue) String() string {
	return form("let", e.Name, e.Value, e.Body)
}

func (e *LetType) String() string {
	return form("var", e.Name, e.TypeExpr, e.Body)
}

func (e *Sequence) String() string { return form("seq", e.Items...) }

func (e *Assign) String() string { return form("set", e.Name, e.Value) }

func (l *ArrayLit) String() string { return form("array", l.Elems...) }

func (l *ArrayTypeLit) String() string { return form("array-t", l.Elem) }

func (e *Arithmetic) String() string { return form(e.Op.String(), e.Operands...) }

func (e *ArrayGet) String() string { return form("array-get", e.Index, e.Array) }

func (e *ArraySet) String() string { return form("array-set", e.Index, e.Array, e.Value) }

// form renders a node back to its source shape.
func form(head string, args ...Expr) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, head)
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}
