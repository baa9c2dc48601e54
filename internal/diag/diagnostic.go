package diag

import (
	"fmt"
	"strings"
)

// Stage identifies which pipeline phase produced the diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageSyntax    Stage = "syntax"
	StageTypeCheck Stage = "typecheck"
	StageEval      Stage = "eval"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Kind is the coarse error taxonomy shared by every stage.
type Kind string

const (
	KindSyntax  Kind = "SyntaxError"
	KindShape   Kind = "ShapeError"
	KindName    Kind = "NameError"
	KindType    Kind = "TypeError"
	KindRuntime Kind = "RuntimeError"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerUnexpectedEOF     Code = "LEXER_UNEXPECTED_EOF"
	CodeLexerUnbalancedBracket Code = "LEXER_UNBALANCED_BRACKET"
	CodeLexerTrailingInput     Code = "LEXER_TRAILING_INPUT"

	// Syntax builder errors
	CodeSyntaxEmptyList      Code = "SYNTAX_EMPTY_LIST"
	CodeSyntaxArrayAsHead    Code = "SYNTAX_ARRAY_AS_FUNCTION"
	CodeSyntaxNumberAsHead   Code = "SYNTAX_NUMBER_AS_FUNCTION"
	CodeSyntaxUnknownHead    Code = "SYNTAX_UNKNOWN_HEAD"
	CodeSyntaxArity          Code = "SYNTAX_ARITY"
	CodeSyntaxExpectedIdent  Code = "SYNTAX_EXPECTED_IDENTIFIER"

	// Type checker errors
	CodeTypeUndefinedIdentifier Code = "TYPE_UNDEFINED_IDENTIFIER"
	CodeTypeUndeclaredAssign    Code = "TYPE_UNDECLARED_ASSIGNMENT"
	CodeTypeMismatch            Code = "TYPE_MISMATCH"
	CodeTypeCannotAssign        Code = "TYPE_CANNOT_ASSIGN"
	CodeTypeExpectedType        Code = "TYPE_EXPECTED_TYPE"
	CodeTypeInvalidOperand      Code = "TYPE_INVALID_OPERAND"
	CodeTypeOperandCount        Code = "TYPE_OPERAND_COUNT"
	CodeTypeNotIndexable        Code = "TYPE_NOT_INDEXABLE"
	CodeTypeInvalidIndex        Code = "TYPE_INVALID_INDEX"
	CodeTypeInvalidTarget       Code = "TYPE_INVALID_TARGET"

	// Runtime errors
	CodeEvalDivideByZero       Code = "EVAL_DIVIDE_BY_ZERO"
	CodeEvalIndexOutOfBounds   Code = "EVAL_INDEX_OUT_OF_BOUNDS"
	CodeEvalUndeclaredVariable Code = "EVAL_UNDECLARED_VARIABLE"
	CodeEvalNotAnArray         Code = "EVAL_NOT_AN_ARRAY"
	CodeEvalNotAType           Code = "EVAL_NOT_A_TYPE"
	CodeEvalNotAnInteger       Code = "EVAL_NOT_AN_INTEGER"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a pipeline diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Kind     Kind
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Notes    []string
	Help     string
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// String renders the diagnostic on one line: "L:C: Kind: message".
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Span.IsValid() {
		b.WriteString(d.Span.String())
		b.WriteString(": ")
	}
	if d.Kind != "" {
		b.WriteString(string(d.Kind))
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError || d.Severity == "" {
			return true
		}
	}
	return false
}

// Join renders one diagnostic per line.
func Join(diags []Diagnostic) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
