package eval

import (
	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
)

type RuntimeErrorKind int

const (
	ErrDivideByZero RuntimeErrorKind = iota
	ErrIndexOutOfBounds
	ErrUndeclaredVariable
	ErrNotAnArray
	ErrNotAType
	ErrNotAnInteger
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case ErrDivideByZero:
		return "DivideByZero"
	case ErrIndexOutOfBounds:
		return "IndexOutOfBounds"
	case ErrUndeclaredVariable:
		return "UndeclaredVariable"
	case ErrNotAnArray:
		return "NotAnArray"
	case ErrNotAType:
		return "NotAType"
	case ErrNotAnInteger:
		return "NotAnInteger"
	default:
		return "Unknown"
	}
}

// RuntimeError aborts an evaluation. The first one raised is the result of
// the whole run.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Span    lexer.Span
}

func (e *RuntimeError) Error() string {
	if e.Span.Line > 0 {
		return e.Span.String() + ": " + e.Message
	}
	return e.Message
}

func (k RuntimeErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrDivideByZero:
		return diag.CodeEvalDivideByZero
	case ErrIndexOutOfBounds:
		return diag.CodeEvalIndexOutOfBounds
	case ErrUndeclaredVariable:
		return diag.CodeEvalUndeclaredVariable
	case ErrNotAnArray:
		return diag.CodeEvalNotAnArray
	case ErrNotAType:
		return diag.CodeEvalNotAType
	case ErrNotAnInteger:
		return diag.CodeEvalNotAnInteger
	default:
		return diag.Code("EVAL_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a runtime error into a shared diagnostic structure.
func (e *RuntimeError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageEval,
		Kind:     diag.KindRuntime,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

func newError(kind RuntimeErrorKind, span lexer.Span, msg string) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: msg, Span: span}
}
