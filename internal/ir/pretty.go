package ir

import (
	"fmt"
	"strings"
)

// PrettyPrint returns a human-readable, indented rendering of the typed tree,
// one node per line annotated with its type.
func (e *Expr) PrettyPrint() string {
	var b strings.Builder
	e.prettyPrint(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (e *Expr) prettyPrint(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(header(e.Op))
	b.WriteString(" : ")
	b.WriteString(typeString(e))
	b.WriteString("\n")
	for _, child := range Children(e) {
		child.prettyPrint(b, depth+1)
	}
}

// Header is the one-line label PrettyPrint uses for e, without its type.
func (e *Expr) Header() string {
	return header(e.Op)
}

func header(op Op) string {
	switch op := op.(type) {
	case *Const:
		return "const " + op.Value.String()
	case *Load:
		return "load " + op.Local.String()
	case *Let:
		return "let " + op.Local.String()
	case *Var:
		return "var " + op.Local.String()
	case *Seq:
		return "seq"
	case *Store:
		return "set " + op.Local.String()
	case *MakeArray:
		return "array"
	case *MakeArrayType:
		return "array-t"
	case *Arith:
		return op.Op.String()
	case *Index:
		return "array-get"
	case *StoreIndex:
		return "array-set " + op.Local.String()
	default:
		return fmt.Sprintf("<unknown %T>", op)
	}
}

func typeString(e *Expr) string {
	if e.Type == nil {
		return "?"
	}
	return e.Type.String()
}

// String renders a local as name#slot.
func (l Local) String() string {
	return fmt.Sprintf("%s#%d", l.Name, l.Slot)
}
