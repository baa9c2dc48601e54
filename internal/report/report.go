// Package report renders the outcome of a pipeline run for a host: either the
// result or the diagnostics, as text or YAML.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/driver"
	"github.com/asurkis/experimental-interpreter/internal/ir"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatYAML:
		return Format(s), nil
	default:
		return "", errors.Errorf("unknown format %q (want text or yaml)", s)
	}
}

// Entry is one diagnostic in rendered form.
type Entry struct {
	Kind    string   `yaml:"kind,omitempty"`
	Code    string   `yaml:"code,omitempty"`
	Message string   `yaml:"message"`
	Line    int      `yaml:"line,omitempty"`
	Column  int      `yaml:"column,omitempty"`
	Notes   []string `yaml:"notes,omitempty"`
	Help    string   `yaml:"help,omitempty"`
}

// Outcome is what a host shows after a run: a value, a typed tree, or the
// diagnostics of the failing stage.
type Outcome struct {
	OK          bool    `yaml:"ok"`
	Value       string  `yaml:"value,omitempty"`
	Type        string  `yaml:"type,omitempty"`
	Typed       string  `yaml:"typed,omitempty"`
	Stage       string  `yaml:"stage,omitempty"`
	Diagnostics []Entry `yaml:"diagnostics,omitempty"`

	diags []diag.Diagnostic
}

// FromResult builds the outcome of a successful run.
func FromResult(res *driver.Result, showTyped bool) Outcome {
	o := Outcome{
		OK:    true,
		Value: res.Value.String(),
		Type:  res.Type.String(),
	}
	if showTyped {
		o.Typed = res.Typed.PrettyPrint()
	}
	return o
}

// FromTyped builds the outcome of a successful check.
func FromTyped(typed *ir.Expr) Outcome {
	return Outcome{
		OK:    true,
		Type:  typed.Type.String(),
		Typed: typed.PrettyPrint(),
	}
}

// FromError builds the outcome of a failed run.
func FromError(err error) Outcome {
	diags := driver.Diagnostics(err)
	o := Outcome{
		Stage: string(driver.StageOf(err)),
		diags: diags,
	}
	for _, d := range diags {
		o.Diagnostics = append(o.Diagnostics, Entry{
			Kind:    string(d.Kind),
			Code:    string(d.Code),
			Message: d.Message,
			Line:    d.Span.Line,
			Column:  d.Span.Column,
			Notes:   d.Notes,
			Help:    d.Help,
		})
	}
	return o
}

// Renderer writes outcomes to w.
type Renderer struct {
	w        io.Writer
	format   Format
	filename string
	color    bool
}

// NewRenderer creates a renderer. The filename is used for text snippets of
// diagnostics that carry none.
func NewRenderer(w io.Writer, format Format, filename string, color bool) *Renderer {
	return &Renderer{w: w, format: format, filename: filename, color: color}
}

// Render writes o; src is the program text the diagnostics refer to.
func (r *Renderer) Render(o Outcome, src string) error {
	switch r.format {
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(o); err != nil {
			return errors.Wrap(err, "encode report")
		}
		return enc.Close()
	default:
		return r.renderText(o, src)
	}
}

func (r *Renderer) renderText(o Outcome, src string) error {
	var buf bytes.Buffer
	if o.OK {
		if o.Typed != "" {
			buf.WriteString(o.Typed)
			buf.WriteString("\n")
		}
		if o.Value != "" {
			fmt.Fprintf(&buf, "%s : %s\n", o.Value, o.Type)
		}
	} else {
		diag.NewFormatter(&buf, r.filename, src).FormatAll(o.diags)
	}

	out := buf.String()
	if r.color {
		out = paint(out)
	}
	_, err := io.WriteString(r.w, out)
	return err
}

const (
	ansiRed   = "\x1b[1;31m"
	ansiBlue  = "\x1b[1;34m"
	ansiReset = "\x1b[0m"
)

// paint highlights diagnostic headers and caret lines.
func paint(text string) string {
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "error"):
			lines[i] = ansiRed + strings.TrimSuffix(line, "\n") + ansiReset + suffix(line)
		case strings.HasPrefix(line, "help:"), strings.HasPrefix(line, "  = note:"):
			lines[i] = ansiBlue + strings.TrimSuffix(line, "\n") + ansiReset + suffix(line)
		case strings.Contains(line, "| ") && strings.HasSuffix(strings.TrimSuffix(line, "\n"), "^"):
			lines[i] = ansiRed + strings.TrimSuffix(line, "\n") + ansiReset + suffix(line)
		}
	}
	return strings.Join(lines, "")
}

func suffix(line string) string {
	if strings.HasSuffix(line, "\n") {
		return "\n"
	}
	return ""
}
