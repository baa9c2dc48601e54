package ir

import (
	"testing"

	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

func constant(n int64) *Expr {
	return &Expr{Type: types.TypeInt64, Op: &Const{Value: value.Int64(n)}}
}

func TestPrettyPrint(t *testing.T) {
	x := Local{Slot: 1, Name: "x"}
	tree := &Expr{
		Type: types.TypeInt64,
		Op: &Let{
			Local: x,
			Value: constant(1),
			Body: &Expr{
				Type: types.TypeInt64,
				Op: &Arith{Op: ast.OpMul, Operands: []*Expr{
					{Type: types.TypeInt64, Op: &Load{Local: x}},
					constant(2),
				}},
			},
		},
	}

	want := "let x#1 : Int64\n" +
		"  const 1 : Int64\n" +
		"  * : Int64\n" +
		"    load x#1 : Int64\n" +
		"    const 2 : Int64"
	if got := tree.PrettyPrint(); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyPrintMissingType(t *testing.T) {
	e := &Expr{Op: &Seq{}}
	if got := e.PrettyPrint(); got != "seq : ?" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestChildrenOrder(t *testing.T) {
	idx, val := constant(0), constant(7)
	e := &Expr{Type: types.TypeUnit, Op: &StoreIndex{Local: Local{Name: "xs"}, Index: idx, Value: val}}

	children := Children(e)
	if len(children) != 2 || children[0] != idx || children[1] != val {
		t.Fatalf("expected index then value, got %v", children)
	}
	if got := Children(constant(3)); got != nil {
		t.Fatalf("constants have no children, got %v", got)
	}
	if got := e.Header(); got != "array-set xs#0" {
		t.Fatalf("unexpected header %q", got)
	}
}
