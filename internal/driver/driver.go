// Package driver runs the tokenize, build, check and evaluate stages in order
// and stops at the first stage that reports a problem.
package driver

import (
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/eval"
	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
	"github.com/asurkis/experimental-interpreter/internal/parser"
	"github.com/asurkis/experimental-interpreter/internal/typecheck"
	"github.com/asurkis/experimental-interpreter/internal/types"
	"github.com/asurkis/experimental-interpreter/internal/value"
)

// DiagnosticsError carries every diagnostic of the stage that failed.
type DiagnosticsError struct {
	Stage       diag.Stage
	Diagnostics []diag.Diagnostic
	// Incomplete is set when the text ended while brackets were still open.
	Incomplete bool
}

func (e *DiagnosticsError) Error() string {
	return diag.Join(e.Diagnostics)
}

// Result is the outcome of a successful run.
type Result struct {
	Typed *ir.Expr
	Value value.Value
	Type  types.Type
}

// Driver holds the settings shared by every stage.
type Driver struct {
	filename string
	logger   *log.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithFilename sets the name reported in diagnostic spans.
func WithFilename(name string) Option {
	return func(d *Driver) {
		d.filename = name
	}
}

// WithLogger enables stage timing logs.
func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New creates a driver.
func New(opts ...Option) *Driver {
	d := &Driver{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) timed(stage diag.Stage, start time.Time) {
	d.logger.Printf("%s: %s", stage, time.Since(start))
}

// Tokens runs only the tokenizer.
func (d *Driver) Tokens(src string) (lexer.Node, error) {
	defer d.timed(diag.StageLexer, time.Now())

	node, errs := lexer.Tokenize(src, lexer.WithFilename(d.filename))
	if len(errs) > 0 {
		return nil, &DiagnosticsError{
			Stage:       diag.StageLexer,
			Diagnostics: lexer.Diagnostics(errs),
			Incomplete:  lexer.IsIncomplete(errs),
		}
	}
	return node, nil
}

// Compile tokenizes, builds and type checks src.
func (d *Driver) Compile(src string) (*ir.Expr, error) {
	node, err := d.Tokens(src)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p := parser.New()
	expr := p.Build(node)
	d.timed(diag.StageSyntax, start)
	if diags := p.Diagnostics(); len(diags) > 0 || expr == nil {
		return nil, &DiagnosticsError{Stage: diag.StageSyntax, Diagnostics: diags}
	}

	start = time.Now()
	c := typecheck.NewChecker(value.Prelude())
	typed := c.Check(expr)
	d.timed(diag.StageTypeCheck, start)
	if len(c.Errors) > 0 || typed == nil {
		return nil, &DiagnosticsError{Stage: diag.StageTypeCheck, Diagnostics: c.Errors}
	}
	return typed, nil
}

// Run compiles and evaluates src. Runtime failures are wrapped; use
// errors.Cause to reach the *eval.RuntimeError.
func (d *Driver) Run(src string) (*Result, error) {
	typed, err := d.Compile(src)
	if err != nil {
		return nil, err
	}
	return d.Evaluate(typed)
}

// Evaluate runs an already checked tree against a fresh prelude.
func (d *Driver) Evaluate(typed *ir.Expr) (*Result, error) {
	defer d.timed(diag.StageEval, time.Now())
	v, err := eval.New(value.Prelude()).Eval(typed)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation failed")
	}
	return &Result{Typed: typed, Value: v, Type: typed.Type}, nil
}

// Diagnostics extracts the structured diagnostics carried by err, whichever
// stage produced it.
func Diagnostics(err error) []diag.Diagnostic {
	switch cause := errors.Cause(err).(type) {
	case nil:
		return nil
	case *DiagnosticsError:
		return cause.Diagnostics
	case *eval.RuntimeError:
		return []diag.Diagnostic{cause.ToDiagnostic()}
	default:
		return []diag.Diagnostic{{
			Severity: diag.SeverityError,
			Message:  err.Error(),
		}}
	}
}

// IsIncomplete reports whether err means the text ended too early.
func IsIncomplete(err error) bool {
	derr, ok := errors.Cause(err).(*DiagnosticsError)
	return ok && derr.Incomplete
}

// Compile compiles src with default settings.
func Compile(src string) (*ir.Expr, error) {
	return New().Compile(src)
}

// Run compiles and evaluates src with default settings.
func Run(src string) (*Result, error) {
	return New().Run(src)
}
