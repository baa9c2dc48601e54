package lexer

import (
	"fmt"
	"unicode"

	"github.com/asurkis/experimental-interpreter/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnexpectedEOF LexerErrorKind = iota
	ErrUnclosedBracket
	ErrUnbalancedBracket
	ErrTrailingInput
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (e LexerError) Error() string {
	return e.Message
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnexpectedEOF:
		return diag.CodeLexerUnexpectedEOF
	case ErrUnclosedBracket, ErrUnbalancedBracket:
		return diag.CodeLexerUnbalancedBracket
	case ErrTrailingInput:
		return diag.CodeLexerTrailingInput
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Kind:     diag.KindSyntax,
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

// Diagnostics converts every error into a diagnostic.
func Diagnostics(errs []LexerError) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(errs))
	for i, e := range errs {
		out[i] = e.ToDiagnostic()
	}
	return out
}

// IsIncomplete reports whether tokenizing failed only because the input ended
// early, so that more text could still complete it.
func IsIncomplete(errs []LexerError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Kind != ErrUnexpectedEOF && e.Kind != ErrUnclosedBracket {
			return false
		}
	}
	return true
}

// Lexer represents the tokenizer state
type Lexer struct {
	input    []rune
	pos      int // index of the current rune
	line     int // line of the current rune (1-based)
	column   int // column of the current rune (1-based)
	filename string

	Errors []LexerError
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFilename stamps every span with the given filename.
func WithFilename(name string) Option {
	return func(l *Lexer) { l.filename = name }
}

// New creates a new lexer for the given input
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		line:   1,
		column: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize reads exactly one token tree from input. It stops at the first
// fatal error; the returned node is nil whenever errors are reported.
func Tokenize(input string, opts ...Option) (Node, []LexerError) {
	l := New(input, opts...)
	node := l.Parse()
	return node, l.Errors
}

// Parse consumes the whole input and returns its single token tree.
func (l *Lexer) Parse() Node {
	l.skipWhitespace()
	node := l.parseValue()
	if node == nil {
		return nil
	}
	l.skipWhitespace()
	if l.eof() {
		return node
	}
	span := l.here()
	if l.current() == ')' {
		l.addError(ErrUnbalancedBracket, fmt.Sprintf("unbalanced bracket at %s", span), span)
	} else {
		l.addError(ErrTrailingInput, fmt.Sprintf("unexpected input after expression at %s", span), span)
	}
	return nil
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) current() rune {
	if l.eof() {
		return 0
	}
	return l.input[l.pos]
}

// read advances past the current rune, keeping line/column in step
func (l *Lexer) read() {
	if l.eof() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// here returns a one-rune span at the current position
func (l *Lexer) here() Span {
	return Span{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Start:    l.pos,
		End:      l.pos + 1,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.eof() && unicode.IsSpace(l.current()) {
		l.read()
	}
}

func (l *Lexer) parseValue() Node {
	if l.eof() {
		span := l.here()
		span.End = span.Start
		l.addError(ErrUnexpectedEOF, "unexpected end of input", span)
		return nil
	}
	switch l.current() {
	case ')':
		span := l.here()
		l.addError(ErrUnbalancedBracket, fmt.Sprintf("unbalanced bracket at %s", span), span)
		return nil
	case '(':
		return l.parseList()
	default:
		return l.parseWord()
	}
}

func (l *Lexer) parseList() Node {
	open := l.here()
	l.read() // skip '('
	items := []Node{}
	for {
		l.skipWhitespace()
		if l.eof() {
			end := l.here()
			end.End = end.Start
			l.addError(ErrUnexpectedEOF, "unexpected end of input", end)
			l.addError(ErrUnclosedBracket, fmt.Sprintf("unbalanced bracket at %s", open), open)
			return nil
		}
		if l.current() == ')' {
			l.read() // skip ')'
			span := open
			span.End = l.pos
			return NewList(items, span)
		}
		child := l.parseValue()
		if child == nil {
			return nil
		}
		items = append(items, child)
	}
}

func (l *Lexer) parseWord() Node {
	span := l.here()
	for !l.eof() && !isDelimiter(l.current()) {
		l.read()
	}
	span.End = l.pos
	word := string(l.input[span.Start:span.End])
	if n, ok := parseInteger(word); ok {
		return NewInt(n, span)
	}
	return NewAtom(word, span)
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')'
}
