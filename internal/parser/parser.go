package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/asurkis/experimental-interpreter/internal/ast"
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
)

// Keywords lists every recognized list head.
var Keywords = []string{
	"let", "var", "seq", "set", "array", "array-t", "array-get", "array-set",
	"+", "-", "*", "/", "%",
}

// Parser builds syntax trees out of token trees.
//   - Diagnostics: errors is an append-only accumulator; callers consult
//     Errors() after Build. A form that reports an error still descends into
//     its children so one pass surfaces as many problems as possible.
//   - Results: Build returns nil whenever the node or any required child failed.
type Parser struct {
	errors []ParseError
}

// New returns an empty syntax builder.
func New() *Parser {
	return &Parser{}
}

// Errors returns the accumulated errors in the order they were found.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// Diagnostics converts the accumulated errors into diagnostics.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(p.errors))
	for i, e := range p.errors {
		out[i] = e.ToDiagnostic()
	}
	return out
}

// Parse tokenizes src and builds its syntax tree. Tokenizer failures are
// fatal and are returned without running the builder.
func Parse(src string, opts ...lexer.Option) (ast.Expr, []diag.Diagnostic) {
	node, lexErrs := lexer.Tokenize(src, opts...)
	if len(lexErrs) > 0 {
		return nil, lexer.Diagnostics(lexErrs)
	}
	p := New()
	expr := p.Build(node)
	return expr, p.Diagnostics()
}

// Build converts one token tree node into a syntax tree node.
func (p *Parser) Build(node lexer.Node) ast.Expr {
	switch n := node.(type) {
	case *lexer.Atom:
		return ast.NewIdent(n.Text, n.Span())
	case *lexer.Int:
		return ast.NewIntegerLit(n.Value, n.Span())
	case *lexer.List:
		return p.buildForm(n)
	default:
		return nil
	}
}

func (p *Parser) buildForm(list *lexer.List) ast.Expr {
	items := list.Items
	if len(items) == 0 {
		p.reportErrorWithHelp(diag.CodeSyntaxEmptyList, "empty list is not an expression", list.Span(),
			"use (array) for an empty array")
		return nil
	}

	var head string
	switch h := items[0].(type) {
	case *lexer.Atom:
		head = h.Text
	case *lexer.List:
		p.reportError(diag.CodeSyntaxArrayAsHead, "array used as function", h.Span())
		p.buildAll(items)
		return nil
	case *lexer.Int:
		p.reportError(diag.CodeSyntaxNumberAsHead, "number used as function", h.Span())
		p.buildAll(items[1:])
		return nil
	}

	span := list.Span()
	switch head {
	case "let", "var":
		if !p.expectArity(list, head, 4) {
			return nil
		}
		name := p.buildIdent(items[1], head)
		value := p.Build(items[2])
		body := p.Build(items[3])
		if name == nil || value == nil || body == nil {
			return nil
		}
		if head == "let" {
			return ast.NewLetValue(name, value, body, span)
		}
		return ast.NewLetType(name, value, body, span)

	case "seq":
		if !p.expectMinArity(list, head, 2) {
			return nil
		}
		rest, ok := p.buildAll(items[1:])
		if !ok {
			return nil
		}
		return ast.NewSequence(rest, span)

	case "set":
		if !p.expectArity(list, head, 3) {
			return nil
		}
		name := p.buildIdent(items[1], head)
		value := p.Build(items[2])
		if name == nil || value == nil {
			return nil
		}
		return ast.NewAssign(name, value, span)

	case "array":
		elems, ok := p.buildAll(items[1:])
		if !ok {
			return nil
		}
		return ast.NewArrayLit(elems, span)

	case "array-t":
		if !p.expectArity(list, head, 2) {
			return nil
		}
		elem := p.Build(items[1])
		if elem == nil {
			return nil
		}
		return ast.NewArrayTypeLit(elem, span)

	case "+", "-", "*", "/", "%":
		if !p.expectMinArity(list, head, 2) {
			return nil
		}
		operands, ok := p.buildAll(items[1:])
		if !ok {
			return nil
		}
		return ast.NewArithmetic(ast.ArithOps[head], operands, span)

	case "array-get":
		if !p.expectArity(list, head, 3) {
			return nil
		}
		index := p.Build(items[1])
		array := p.Build(items[2])
		if index == nil || array == nil {
			return nil
		}
		return ast.NewArrayGet(array, index, span)

	case "array-set":
		if !p.expectArity(list, head, 4) {
			return nil
		}
		index := p.Build(items[1])
		array := p.Build(items[2])
		value := p.Build(items[3])
		if index == nil || array == nil || value == nil {
			return nil
		}
		return ast.NewArraySet(array, index, value, span)

	default:
		p.reportErrorWithHelp(diag.CodeSyntaxUnknownHead, fmt.Sprintf("unknown head `%s`", head), items[0].Span(),
			"known heads: "+knownHeads())
		p.buildAll(items[1:])
		return nil
	}
}

// buildAll builds every node, even after a failure, and reports whether all succeeded.
func (p *Parser) buildAll(nodes []lexer.Node) ([]ast.Expr, bool) {
	out := make([]ast.Expr, 0, len(nodes))
	ok := true
	for _, n := range nodes {
		expr := p.Build(n)
		if expr == nil {
			ok = false
			continue
		}
		out = append(out, expr)
	}
	return out, ok
}

// buildIdent builds node and requires it to be an identifier.
func (p *Parser) buildIdent(node lexer.Node, head string) *ast.Ident {
	expr := p.Build(node)
	if expr == nil {
		return nil
	}
	ident, ok := expr.(*ast.Ident)
	if !ok {
		p.reportError(diag.CodeSyntaxExpectedIdent,
			fmt.Sprintf("`%s` expects an identifier as its binding name, found `%s`", head, node), node.Span())
		return nil
	}
	return ident
}

// expectArity checks the element count of list, including the head.
func (p *Parser) expectArity(list *lexer.List, head string, want int) bool {
	if got := len(list.Items); got != want {
		p.reportError(diag.CodeSyntaxArity,
			fmt.Sprintf("`%s` expects %s, got %d", head, plural(want-1, "argument"), got-1), list.Span())
		return false
	}
	return true
}

// expectMinArity checks a lower bound on the element count, including the head.
func (p *Parser) expectMinArity(list *lexer.List, head string, least int) bool {
	if got := len(list.Items); got < least {
		p.reportError(diag.CodeSyntaxArity,
			fmt.Sprintf("`%s` expects at least %s, got %d", head, plural(least-1, "argument"), got-1), list.Span())
		return false
	}
	return true
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func knownHeads() string {
	heads := append([]string(nil), Keywords...)
	sort.Strings(heads)
	return strings.Join(heads, " ")
}
