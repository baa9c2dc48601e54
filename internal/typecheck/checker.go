package typecheck

import (
	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

// Checker performs type checking on the syntax tree and produces the
// type-annotated tree. Diagnostics accumulate in Errors; checking never stops
// at the first problem.
type Checker struct {
	scope  *Scope
	Errors []diag.Diagnostic
}

// NewChecker creates a checker whose scope holds the given prelude bindings.
func NewChecker(prelude []value.Binding) *Checker {
	scope := NewScope()
	for _, b := range prelude {
		scope.Declare(b.Name, value.StaticType(b.Value))
	}
	return &Checker{
		scope:  scope,
		Errors: []diag.Diagnostic{},
	}
}

// Scope exposes the checker's scope.
func (c *Checker) Scope() *Scope {
	return c.scope
}

// Check returns the typed tree for expr, or nil if any check failed. The
// scope is left exactly as it was found.
func (c *Checker) Check(expr ast.Expr) *ir.Expr {
	return c.checkExpr(expr)
}

// Check type checks expr against a fresh prelude scope.
func Check(expr ast.Expr) (*ir.Expr, []diag.Diagnostic) {
	c := NewChecker(value.Prelude())
	typed := c.Check(expr)
	return typed, c.Errors
}
