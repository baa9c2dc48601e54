package eval

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/parser"
	"github.com/asurkis/experimental-interpreter/internal/typecheck"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

func compile(t *testing.T, src string) *ir.Expr {
	t.Helper()
	expr, diags := parser.Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parse %q failed:\n%s", src, diag.Join(diags))
	}
	typed, diags := typecheck.Check(expr)
	if len(diags) > 0 || typed == nil {
		t.Fatalf("check %q failed:\n%s", src, diag.Join(diags))
	}
	return typed
}

func run(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := Eval(compile(t, src))
	if err != nil {
		t.Fatalf("eval %q failed: %v", src, err)
	}
	return v
}

func runError(t *testing.T, src string) *RuntimeError {
	t.Helper()
	v, err := Eval(compile(t, src))
	if err == nil {
		t.Fatalf("expected %q to fail, got %s", src, v)
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	return rerr
}

func TestEvalValues(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"i64", "Int64"},
		{"(array-t i64)", "Array(Int64)"},
		{"(array)", "(array)"},
		{"(array 1 2 3)", "(array 1 2 3)"},
		{"(array (array 1) (array 2 3))", "(array (array 1) (array 2 3))"},
		{"(+ 1 2 3)", "6"},
		{"(- 1 2 3)", "-4"},
		{"(* 2 3 4)", "24"},
		{"(/ 7 2)", "3"},
		{"(/ -7 2)", "-3"},
		{"(% 7 3)", "1"},
		{"(% -7 2)", "-1"},
		{"(/ 100 5 2)", "10"},
		{"(let x 1 x)", "1"},
		{"(let x 1 (seq (set x 2) x))", "2"},
		{"(let x 1 (set x 2))", "unit"},
		{"(var x i64 x)", "0"},
		{"(var xs (array-t i64) xs)", "(array)"},
		{"(var xs (array-t (array-t i64)) xs)", "(array)"},
		{"(let t i64 (var x t (+ x 5)))", "5"},
		{"(seq 1 2 3)", "3"},
		{"(array-get 1 (array 1 2 3))", "2"},
		{"(let xs (array 1 2) (seq (array-set 1 xs 5) xs))", "(array 1 5)"},
		{"(let xs (array 1 2) (array-set 0 xs 9))", "unit"},
		{"(let x 1 (let x (+ x 1) x))", "2"},
		{"(let x 1 (seq (let x 10 (set x 11)) x))", "1"},
	}

	for _, tt := range tests {
		if got := run(t, tt.src).String(); got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.src, tt.want, got)
		}
	}
}

func TestWraparound(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"(+ 9223372036854775807 1)", math.MinInt64},
		{"(- -9223372036854775808 1)", math.MaxInt64},
		{"(* 4611686018427387904 2)", math.MinInt64},
		{"(/ -9223372036854775808 -1)", math.MinInt64},
		{"(% -9223372036854775808 -1)", 0},
	}

	for _, tt := range tests {
		v := run(t, tt.src)
		if v.Kind != value.KindInt64 || v.Int != tt.want {
			t.Errorf("%q: expected %d, got %s", tt.src, tt.want, v)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind RuntimeErrorKind
		col  int
	}{
		{"(/ 5 0)", ErrDivideByZero, 6},
		{"(% 5 0)", ErrDivideByZero, 6},
		{"(/ 10 2 (- 1 1))", ErrDivideByZero, 9},
		{"(array-get 5 (array 1 2 3))", ErrIndexOutOfBounds, 12},
		{"(array-get -1 (array 1 2 3))", ErrIndexOutOfBounds, 12},
		{"(array-get 0 (array))", ErrIndexOutOfBounds, 12},
		{"(let xs (array 1) (array-set 1 xs 2))", ErrIndexOutOfBounds, 30},
		{"(/ 1 0 (array-get 5 (array 1)))", ErrDivideByZero, 6},
		{"(let xs (array 1) (array-set 5 xs (/ 1 0)))", ErrDivideByZero, 40},
		{"(let xs (array 1) (array-set (array-get 2 xs) xs 7))", ErrIndexOutOfBounds, 41},
	}

	for _, tt := range tests {
		err := runError(t, tt.src)
		if err.Kind != tt.kind {
			t.Errorf("%q: expected %s, got %s (%s)", tt.src, tt.kind, err.Kind, err.Message)
		}
		if err.Span.Column != tt.col {
			t.Errorf("%q: expected column %d, got %d", tt.src, tt.col, err.Span.Column)
		}
	}
}

func TestFirstErrorAborts(t *testing.T) {
	err := runError(t, "(seq (array-get 3 (array)) (/ 1 0))")
	if err.Kind != ErrIndexOutOfBounds {
		t.Fatalf("expected the first fault to win, got %s", err.Kind)
	}
}

func TestRuntimeErrorDiagnostic(t *testing.T) {
	err := runError(t, "(/ 5 0)")
	d := err.ToDiagnostic()
	if d.Stage != diag.StageEval || d.Kind != diag.KindRuntime || d.Code != diag.CodeEvalDivideByZero {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Span.Line != 1 || d.Span.Column != 6 {
		t.Fatalf("unexpected span %s", d.Span)
	}
	if got := err.Error(); got != "1:6: division by zero in `/`" {
		t.Fatalf("unexpected error text %q", got)
	}
}

func TestArraysHaveValueSemantics(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(let xs (array 1 2) (let ys xs (seq (array-set 0 ys 9) (array-get 0 xs))))", "1"},
		{"(let xs (array 1 2) (let ys xs (seq (array-set 0 ys 9) (array-get 0 ys))))", "9"},
		{"(let xs (array (array 1)) (let ys xs (seq (array-set 0 ys (array 5)) xs)))", "(array (array 1))"},
		{"(let xs (array 1 2) (seq (array-get 0 xs) xs))", "(array 1 2)"},
		{"(let xs (array 1) (let ys (array 2) (seq (set ys xs) (array-set 0 xs 3) ys)))", "(array 1)"},
	}

	for _, tt := range tests {
		if got := run(t, tt.src).String(); got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.src, tt.want, got)
		}
	}
}

func TestEnvironmentRestored(t *testing.T) {
	programs := []string{
		"(let x 1 x)",
		"(let x 1 (let y (/ x 0) y))",
		"(var xs (array-t i64) (array-get 0 xs))",
		"(let a 1 (seq (let b 2 b) (var c i64 (/ a c))))",
	}

	for _, src := range programs {
		in := New(value.Prelude())
		before := in.Depth()
		in.Eval(compile(t, src))
		if got := in.Depth(); got != before {
			t.Errorf("%q: environment depth changed from %d to %d", src, before, got)
		}
		v, err := in.Eval(compile(t, "i64"))
		if err != nil || !types.Equal(v.Type, types.TypeInt64) {
			t.Errorf("%q: prelude damaged after evaluation: %v %v", src, v, err)
		}
	}
}

// Every well-typed program evaluates to a value of its static type.
func TestResultConformsToStaticType(t *testing.T) {
	programs := []string{
		"1",
		"i64",
		"(array)",
		"(array-t (array-t i64))",
		"(array (array 1 2) (array 3))",
		"(let xs (array 1 2) (seq (array-set 0 xs 4) xs))",
		"(var xs (array-t (array-t i64)) xs)",
		"(var t (array-t i64) t)",
		"(let x 5 (seq (set x (* x x)) (array x x)))",
		"(array-get 0 (array (array 1) (array 2)))",
		"(let xs (array 1) (array-set 0 xs 2))",
		"(seq (array 1) (array-t i64))",
	}

	for _, src := range programs {
		typed := compile(t, src)
		v, err := Eval(typed)
		if err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
			continue
		}
		if !value.Conforms(v, typed.Type) {
			t.Errorf("%q: value %s does not conform to %s", src, v, typed.Type)
		}
	}
}

func TestDefensiveShapeChecks(t *testing.T) {
	intExpr := func(n int64) *ir.Expr {
		return &ir.Expr{Type: types.TypeInt64, Op: &ir.Const{Value: value.Int64(n)}}
	}

	tests := []struct {
		name string
		expr *ir.Expr
		kind RuntimeErrorKind
	}{
		{
			name: "index into integer",
			expr: &ir.Expr{Op: &ir.Index{Index: intExpr(0), Array: intExpr(1)}},
			kind: ErrNotAnArray,
		},
		{
			name: "var over integer",
			expr: &ir.Expr{Op: &ir.Var{Local: ir.Local{Slot: 1, Name: "x"}, TypeExpr: intExpr(1), Body: intExpr(2)}},
			kind: ErrNotAType,
		},
		{
			name: "store to missing slot",
			expr: &ir.Expr{Op: &ir.Store{Local: ir.Local{Slot: 7, Name: "x"}, Value: intExpr(1)}},
			kind: ErrUndeclaredVariable,
		},
		{
			name: "store index into type",
			expr: &ir.Expr{Op: &ir.StoreIndex{Local: ir.Local{Slot: 0, Name: "i64"}, Index: intExpr(0), Value: intExpr(1)}},
			kind: ErrNotAnArray,
		},
		{
			name: "arithmetic over type",
			expr: &ir.Expr{Op: &ir.Arith{Operands: []*ir.Expr{intExpr(1), {Op: &ir.Load{Local: ir.Local{Slot: 0, Name: "i64"}}}}}},
			kind: ErrNotAnInteger,
		},
	}

	for _, tt := range tests {
		_, err := Eval(tt.expr)
		var rerr *RuntimeError
		if !errors.As(err, &rerr) {
			t.Errorf("%s: expected *RuntimeError, got %v", tt.name, err)
			continue
		}
		if rerr.Kind != tt.kind {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.kind, rerr.Kind)
		}
	}
}

func BenchmarkEvalArrayUpdates(b *testing.B) {
	src := "(let xs (array 1 2 3 4 5 6 7 8) (seq"
	for i := 0; i < 8; i++ {
		src += " (array-set " + strconv.Itoa(i) + " xs (* (array-get " + strconv.Itoa(i) + " xs) 3))"
	}
	src += " xs))"
	expr, _ := parser.Parse(src)
	typed, _ := typecheck.Check(expr)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Eval(typed); err != nil {
			b.Fatal(err)
		}
	}
}
