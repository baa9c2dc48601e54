// Package eval runs type-checked programs. Evaluation recurses once per
// nesting level, so extremely deep input is limited by the goroutine stack.
package eval

import (
	"fmt"

	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

// Interpreter evaluates typed trees. The environment is a stack indexed by
// the slots the checker resolved; binding forms push on entry and truncate on
// exit.
type Interpreter struct {
	env []value.Value
}

// New creates an interpreter whose environment starts with the prelude, in
// the same order the checker declared it.
func New(prelude []value.Binding) *Interpreter {
	env := make([]value.Value, 0, len(prelude)+8)
	for _, b := range prelude {
		env = append(env, b.Value.Clone())
	}
	return &Interpreter{env: env}
}

// Depth returns the number of live bindings.
func (in *Interpreter) Depth() int {
	return len(in.env)
}

// Eval evaluates expr to a value, or returns the first *RuntimeError raised.
func (in *Interpreter) Eval(expr *ir.Expr) (value.Value, error) {
	v, err := in.eval(expr)
	if err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// Eval evaluates expr against a fresh prelude environment.
func Eval(expr *ir.Expr) (value.Value, error) {
	return New(value.Prelude()).Eval(expr)
}

func (in *Interpreter) eval(e *ir.Expr) (value.Value, *RuntimeError) {
	switch op := e.Op.(type) {
	case *ir.Const:
		return op.Value.Clone(), nil
	case *ir.Load:
		return in.load(op.Local, e.Span)
	case *ir.Let:
		return in.evalLet(op)
	case *ir.Var:
		return in.evalVar(op)
	case *ir.Seq:
		return in.evalSeq(op)
	case *ir.Store:
		return in.evalStore(op, e.Span)
	case *ir.MakeArray:
		return in.evalMakeArray(op)
	case *ir.MakeArrayType:
		return in.evalMakeArrayType(op)
	case *ir.Arith:
		return in.evalArith(op, e.Span)
	case *ir.Index:
		return in.evalIndex(op)
	case *ir.StoreIndex:
		return in.evalStoreIndex(op, e.Span)
	default:
		panic(fmt.Sprintf("eval: unexpected op %T", op))
	}
}

func (in *Interpreter) slot(local ir.Local, span lexer.Span) (int, *RuntimeError) {
	if local.Slot < 0 || local.Slot >= len(in.env) {
		return 0, newError(ErrUndeclaredVariable, span,
			fmt.Sprintf("undeclared variable `%s`", local.Name))
	}
	return local.Slot, nil
}

// load returns a deep copy so that later writes through one binding are never
// observed through another.
func (in *Interpreter) load(local ir.Local, span lexer.Span) (value.Value, *RuntimeError) {
	i, err := in.slot(local, span)
	if err != nil {
		return value.Value{}, err
	}
	return in.env[i].Clone(), nil
}

// bind pushes v for the duration of body.
func (in *Interpreter) bind(v value.Value, body *ir.Expr) (value.Value, *RuntimeError) {
	depth := len(in.env)
	in.env = append(in.env, v)
	defer func() {
		in.env = in.env[:depth]
	}()
	return in.eval(body)
}

func (in *Interpreter) evalLet(op *ir.Let) (value.Value, *RuntimeError) {
	v, err := in.eval(op.Value)
	if err != nil {
		return value.Value{}, err
	}
	return in.bind(v, op.Body)
}

func (in *Interpreter) evalVar(op *ir.Var) (value.Value, *RuntimeError) {
	t, err := in.evalType(op.TypeExpr)
	if err != nil {
		return value.Value{}, err
	}
	return in.bind(value.Zero(t), op.Body)
}

func (in *Interpreter) evalType(e *ir.Expr) (types.Type, *RuntimeError) {
	v, err := in.eval(e)
	if err != nil {
		return nil, err
	}
	if v.Kind != value.KindType {
		return nil, newError(ErrNotAType, e.Span,
			fmt.Sprintf("expected a type, found %s", v.KindName()))
	}
	return v.Type, nil
}

func (in *Interpreter) evalSeq(op *ir.Seq) (value.Value, *RuntimeError) {
	result := value.Unit()
	for _, item := range op.Items {
		v, err := in.eval(item)
		if err != nil {
			return value.Value{}, err
		}
		result = v
	}
	return result, nil
}

func (in *Interpreter) evalStore(op *ir.Store, span lexer.Span) (value.Value, *RuntimeError) {
	v, err := in.eval(op.Value)
	if err != nil {
		return value.Value{}, err
	}
	i, err := in.slot(op.Local, span)
	if err != nil {
		return value.Value{}, err
	}
	in.env[i] = v
	return value.Unit(), nil
}

func (in *Interpreter) evalMakeArray(op *ir.MakeArray) (value.Value, *RuntimeError) {
	elems := make([]value.Value, 0, len(op.Elems))
	for _, e := range op.Elems {
		v, err := in.eval(e)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
	}
	return value.ArrayVal(elems), nil
}

func (in *Interpreter) evalMakeArrayType(op *ir.MakeArrayType) (value.Value, *RuntimeError) {
	elem, err := in.evalType(op.Elem)
	if err != nil {
		return value.Value{}, err
	}
	return value.TypeVal(types.NewArray(elem)), nil
}

func (in *Interpreter) evalInt(e *ir.Expr) (int64, *RuntimeError) {
	v, err := in.eval(e)
	if err != nil {
		return 0, err
	}
	if v.Kind != value.KindInt64 {
		return 0, newError(ErrNotAnInteger, e.Span,
			fmt.Sprintf("expected Int64, found %s", v.KindName()))
	}
	return v.Int, nil
}

// evalArith folds the operands left to right, evaluating each one as it is
// folded so the first fault aborts. Overflow wraps; Go defines MinInt64 / -1
// as MinInt64 with remainder 0.
func (in *Interpreter) evalArith(op *ir.Arith, span lexer.Span) (value.Value, *RuntimeError) {
	if len(op.Operands) == 0 {
		return value.Int64(0), nil
	}
	acc, err := in.evalInt(op.Operands[0])
	if err != nil {
		return value.Value{}, err
	}

	for _, operand := range op.Operands[1:] {
		n, err := in.evalInt(operand)
		if err != nil {
			return value.Value{}, err
		}
		switch op.Op {
		case ast.OpAdd:
			acc += n
		case ast.OpSub:
			acc -= n
		case ast.OpMul:
			acc *= n
		case ast.OpDiv, ast.OpRem:
			if n == 0 {
				return value.Value{}, newError(ErrDivideByZero, operand.Span,
					fmt.Sprintf("division by zero in `%s`", op.Op))
			}
			if op.Op == ast.OpDiv {
				acc /= n
			} else {
				acc %= n
			}
		default:
			panic(fmt.Sprintf("eval: unexpected arithmetic operator %v at %s", op.Op, span))
		}
	}
	return value.Int64(acc), nil
}

func checkBounds(index int64, length int, span lexer.Span) *RuntimeError {
	if index < 0 || index >= int64(length) {
		return newError(ErrIndexOutOfBounds, span,
			fmt.Sprintf("index %d out of bounds for array of length %d", index, length))
	}
	return nil
}

// evalIndex reads from a temporary copy of the array; no binding changes.
func (in *Interpreter) evalIndex(op *ir.Index) (value.Value, *RuntimeError) {
	index, err := in.evalInt(op.Index)
	if err != nil {
		return value.Value{}, err
	}
	arr, err := in.eval(op.Array)
	if err != nil {
		return value.Value{}, err
	}
	if arr.Kind != value.KindArray {
		return value.Value{}, newError(ErrNotAnArray, op.Array.Span,
			fmt.Sprintf("cannot index into %s", arr.KindName()))
	}
	if err := checkBounds(index, len(arr.Array), op.Index.Span); err != nil {
		return value.Value{}, err
	}
	return arr.Array[index], nil
}

// evalStoreIndex evaluates the value, then the index, then looks up the target.
func (in *Interpreter) evalStoreIndex(op *ir.StoreIndex, span lexer.Span) (value.Value, *RuntimeError) {
	v, err := in.eval(op.Value)
	if err != nil {
		return value.Value{}, err
	}
	index, err := in.evalInt(op.Index)
	if err != nil {
		return value.Value{}, err
	}
	i, err := in.slot(op.Local, span)
	if err != nil {
		return value.Value{}, err
	}
	target := in.env[i]
	if target.Kind != value.KindArray {
		return value.Value{}, newError(ErrNotAnArray, span,
			fmt.Sprintf("`%s` holds %s, not an array", op.Local.Name, target.KindName()))
	}
	if err := checkBounds(index, len(target.Array), op.Index.Span); err != nil {
		return value.Value{}, err
	}
	target.Array[index] = v
	return value.Unit(), nil
}
