package parser

import (
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
)

// ParseError captures a syntax-builder error with location context.
type ParseError struct {
	Message string
	Span    lexer.Span
	Code    diag.Code
	Help    string
}

func (e ParseError) Error() string {
	return e.Message
}

// ToDiagnostic converts a parse error into a shared diagnostic structure.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Stage:    diag.StageSyntax,
		Kind:     diag.KindShape,
		Severity: diag.SeverityError,
		Code:     e.Code,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
	if e.Help != "" {
		d = d.WithHelp(e.Help)
	}
	return d
}

// reportError records a diagnostic without aborting the build of sibling subtrees.
func (p *Parser) reportError(code diag.Code, msg string, span lexer.Span) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Span:    span,
		Code:    code,
	})
}

// reportErrorWithHelp reports an error with help text.
func (p *Parser) reportErrorWithHelp(code diag.Code, msg string, span lexer.Span, help string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Span:    span,
		Code:    code,
		Help:    help,
	})
}
