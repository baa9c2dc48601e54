package typecheck

import (
	"fmt"

	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

func (c *Checker) checkExpr(expr ast.Expr) *ir.Expr {
	switch e := expr.(type) {
	case *ast.Ident:
		return c.checkIdent(e)
	case *ast.IntegerLit:
		return &ir.Expr{Type: types.TypeInt64, Op: &ir.Const{Value: value.Int64(e.Value)}, Span: e.Span()}
	case *ast.LetValue:
		return c.checkLetValue(e)
	case *ast.LetType:
		return c.checkLetType(e)
	case *ast.Sequence:
		return c.checkSequence(e)
	case *ast.Assign:
		return c.checkAssign(e)
	case *ast.ArrayLit:
		return c.checkArrayLit(e)
	case *ast.ArrayTypeLit:
		return c.checkArrayTypeLit(e)
	case *ast.Arithmetic:
		return c.checkArithmetic(e)
	case *ast.ArrayGet:
		return c.checkArrayGet(e)
	case *ast.ArraySet:
		return c.checkArraySet(e)
	default:
		return nil
	}
}

// checkAll checks every expression, even after a failure, and reports
// whether all of them succeeded.
func (c *Checker) checkAll(exprs []ast.Expr) ([]*ir.Expr, bool) {
	out := make([]*ir.Expr, len(exprs))
	ok := true
	for i, e := range exprs {
		out[i] = c.checkExpr(e)
		if out[i] == nil {
			ok = false
		}
	}
	return out, ok
}

func (c *Checker) checkIdent(e *ast.Ident) *ir.Expr {
	sym := c.scope.Lookup(e.Name)
	if sym == nil {
		c.reportErrorWithHelp(diag.KindName, diag.CodeTypeUndefinedIdentifier,
			fmt.Sprintf("unknown variable `%s`", e.Name), e.Span(),
			"bind it with let or var first")
		return nil
	}
	if sym.Type == nil {
		return nil
	}
	return &ir.Expr{Type: sym.Type, Op: &ir.Load{Local: sym.Local()}, Span: e.Span()}
}

func (c *Checker) checkLetValue(e *ast.LetValue) *ir.Expr {
	val := c.checkExpr(e.Value)
	var bound types.Type
	if val != nil {
		bound = val.Type
	}

	var local ir.Local
	var body *ir.Expr
	c.scope.Bind(e.Name.Name, bound, func(sym *Symbol) {
		local = sym.Local()
		body = c.checkExpr(e.Body)
	})

	if val == nil || body == nil {
		return nil
	}
	return &ir.Expr{
		Type: body.Type,
		Op:   &ir.Let{Local: local, Def: e.Name.Span(), Value: val, Body: body},
		Span: e.Span(),
	}
}

func (c *Checker) checkLetType(e *ast.LetType) *ir.Expr {
	typeExpr := c.checkExpr(e.TypeExpr)
	var bound types.Type
	if typeExpr != nil {
		inner, ok := types.AsTypeOf(typeExpr.Type)
		if ok {
			bound = inner
		} else {
			c.reportError(diag.KindType, diag.CodeTypeExpectedType,
				fmt.Sprintf("`var` expects a type, found a value of type `%s`", typeExpr.Type), e.TypeExpr.Span())
		}
	}

	var local ir.Local
	var body *ir.Expr
	c.scope.Bind(e.Name.Name, bound, func(sym *Symbol) {
		local = sym.Local()
		body = c.checkExpr(e.Body)
	})

	if bound == nil || body == nil {
		return nil
	}
	return &ir.Expr{
		Type: body.Type,
		Op:   &ir.Var{Local: local, Def: e.Name.Span(), TypeExpr: typeExpr, Body: body},
		Span: e.Span(),
	}
}

// checkSequence types a sequence by its last element.
func (c *Checker) checkSequence(e *ast.Sequence) *ir.Expr {
	items, ok := c.checkAll(e.Items)
	if !ok || len(items) == 0 {
		return nil
	}
	return &ir.Expr{
		Type: items[len(items)-1].Type,
		Op:   &ir.Seq{Items: items},
		Span: e.Span(),
	}
}

func (c *Checker) checkAssign(e *ast.Assign) *ir.Expr {
	sym := c.scope.Lookup(e.Name.Name)
	if sym == nil {
		c.reportErrorWithHelp(diag.KindName, diag.CodeTypeUndeclaredAssign,
			fmt.Sprintf("assignment to undeclared variable `%s`", e.Name.Name), e.Name.Span(),
			"declare it with let or var before using set")
	}

	val := c.checkExpr(e.Value)
	if sym == nil || sym.Type == nil || val == nil {
		return nil
	}
	if !types.Equal(val.Type, sym.Type) {
		c.reportError(diag.KindType, diag.CodeTypeCannotAssign,
			fmt.Sprintf("cannot assign a value of type `%s` to variable `%s` of type `%s`", val.Type, sym.Name, sym.Type),
			e.Value.Span())
		return nil
	}
	return &ir.Expr{
		Type: types.TypeUnit,
		Op:   &ir.Store{Local: sym.Local(), Value: val},
		Span: e.Span(),
	}
}

func (c *Checker) checkArrayLit(e *ast.ArrayLit) *ir.Expr {
	if len(e.Elems) == 0 {
		return &ir.Expr{
			Type: types.NewArray(types.TypeUnit),
			Op:   &ir.MakeArray{Elems: []*ir.Expr{}},
			Span: e.Span(),
		}
	}

	elems, ok := c.checkAll(e.Elems)

	// Elements that failed to check are skipped; the first one that checked
	// sets the expected type.
	ref := -1
	for i, elem := range elems {
		if elem != nil {
			ref = i
			break
		}
	}
	if ref >= 0 {
		expected := elems[ref].Type
		what := "the type of the first element"
		if ref > 0 {
			what = fmt.Sprintf("the type of element %d", ref+1)
		}
		for i := ref + 1; i < len(elems); i++ {
			if elems[i] == nil || types.Equal(elems[i].Type, expected) {
				continue
			}
			c.reportError(diag.KindType, diag.CodeTypeMismatch,
				fmt.Sprintf("array element %d has type `%s`, expected `%s` (%s)",
					i+1, elems[i].Type, expected, what),
				e.Elems[i].Span())
			ok = false
		}
	}

	if !ok {
		return nil
	}
	return &ir.Expr{
		Type: types.NewArray(elems[0].Type),
		Op:   &ir.MakeArray{Elems: elems},
		Span: e.Span(),
	}
}

func (c *Checker) checkArrayTypeLit(e *ast.ArrayTypeLit) *ir.Expr {
	elem := c.checkExpr(e.Elem)
	if elem == nil {
		return nil
	}
	inner, ok := types.AsTypeOf(elem.Type)
	if !ok {
		c.reportError(diag.KindType, diag.CodeTypeExpectedType,
			fmt.Sprintf("`array-t` expects a type, found a value of type `%s`", elem.Type), e.Elem.Span())
		return nil
	}
	return &ir.Expr{
		Type: types.NewTypeOf(types.NewArray(inner)),
		Op:   &ir.MakeArrayType{Elem: elem},
		Span: e.Span(),
	}
}

func (c *Checker) checkArithmetic(e *ast.Arithmetic) *ir.Expr {
	ok := true
	if len(e.Operands) < 2 {
		c.reportError(diag.KindShape, diag.CodeTypeOperandCount,
			fmt.Sprintf("`%s` expects at least 2 operands, got %d", e.Op, len(e.Operands)), e.Span())
		ok = false
	}

	operands, allChecked := c.checkAll(e.Operands)
	ok = ok && allChecked
	for i, operand := range operands {
		if operand == nil || types.IsInt64(operand.Type) {
			continue
		}
		c.reportError(diag.KindType, diag.CodeTypeInvalidOperand,
			fmt.Sprintf("operand %d of `%s` must be Int64, found `%s`", i+1, e.Op, operand.Type),
			e.Operands[i].Span())
		ok = false
	}

	if !ok {
		return nil
	}
	return &ir.Expr{
		Type: types.TypeInt64,
		Op:   &ir.Arith{Op: e.Op, Operands: operands},
		Span: e.Span(),
	}
}

// checkIndex validates an index operand.
func (c *Checker) checkIndex(index ast.Expr) *ir.Expr {
	idx := c.checkExpr(index)
	if idx == nil {
		return nil
	}
	if !types.IsInt64(idx.Type) {
		c.reportError(diag.KindType, diag.CodeTypeInvalidIndex,
			fmt.Sprintf("array index must be Int64, found `%s`", idx.Type), index.Span())
		return nil
	}
	return idx
}

// elemType returns T when t is Array(T), reporting otherwise.
func (c *Checker) elemType(t types.Type, at ast.Expr) (types.Type, bool) {
	elem, ok := types.AsArray(t)
	if !ok {
		c.reportError(diag.KindType, diag.CodeTypeNotIndexable,
			fmt.Sprintf("cannot index into a value of type `%s`", t), at.Span())
	}
	return elem, ok
}

func (c *Checker) checkArrayGet(e *ast.ArrayGet) *ir.Expr {
	idx := c.checkIndex(e.Index)
	arr := c.checkExpr(e.Array)
	if arr == nil {
		return nil
	}
	elem, ok := c.elemType(arr.Type, e.Array)
	if !ok || idx == nil {
		return nil
	}
	return &ir.Expr{
		Type: elem,
		Op:   &ir.Index{Index: idx, Array: arr},
		Span: e.Span(),
	}
}

// checkArraySet yields Unit, matching what the evaluator returns.
func (c *Checker) checkArraySet(e *ast.ArraySet) *ir.Expr {
	idx := c.checkIndex(e.Index)

	var sym *Symbol
	var elem types.Type
	targetOK := false
	switch target := e.Array.(type) {
	case *ast.Ident:
		if t := c.checkIdent(target); t != nil {
			sym = c.scope.Lookup(target.Name)
			elem, targetOK = c.elemType(t.Type, target)
		}
	default:
		c.reportErrorWithHelp(diag.KindShape, diag.CodeTypeInvalidTarget,
			fmt.Sprintf("`array-set` target must be a variable, found `%s`", target), target.Span(),
			"bind the array with let first")
		c.checkExpr(target)
	}

	val := c.checkExpr(e.Value)
	if !targetOK || idx == nil || val == nil {
		return nil
	}
	if !types.Equal(val.Type, elem) {
		c.reportError(diag.KindType, diag.CodeTypeMismatch,
			fmt.Sprintf("cannot store a value of type `%s` into `%s` of type `%s`", val.Type, sym.Name, sym.Type),
			e.Value.Span())
		return nil
	}
	return &ir.Expr{
		Type: types.TypeUnit,
		Op:   &ir.StoreIndex{Local: sym.Local(), Index: idx, Value: val},
		Span: e.Span(),
	}
}
