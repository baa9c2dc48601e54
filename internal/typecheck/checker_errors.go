package typecheck

import (
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
)

// toDiagSpan converts a lexer.Span to a diag.Span.
func toDiagSpan(span lexer.Span) diag.Span {
	return diag.Span{
		Filename: span.Filename,
		Line:     span.Line,
		Column:   span.Column,
		Start:    span.Start,
		End:      span.End,
	}
}

func (c *Checker) reportError(kind diag.Kind, code diag.Code, msg string, span lexer.Span) {
	c.reportErrorWithHelp(kind, code, msg, span, "")
}

func (c *Checker) reportErrorWithHelp(kind diag.Kind, code diag.Code, msg string, span lexer.Span, help string) {
	c.Errors = append(c.Errors, diag.Diagnostic{
		Stage:    diag.StageTypeCheck,
		Kind:     kind,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
		Span:     toDiagSpan(span),
		Help:     help,
	})
}
