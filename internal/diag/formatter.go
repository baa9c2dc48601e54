package diag

import (
	"fmt"
	"io"
	"strings"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	w        io.Writer
	filename string
	lines    []string
}

// NewFormatter creates a formatter that renders against the given source text.
func NewFormatter(w io.Writer, filename, src string) *Formatter {
	return &Formatter{
		w:        w,
		filename: filename,
		lines:    strings.Split(src, "\n"),
	}
}

// FormatAll formats every diagnostic, separated by blank lines.
func (f *Formatter) FormatAll(diags []Diagnostic) {
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(f.w)
		}
		f.Format(d)
	}
}

// Format formats and prints a diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)
	if !d.Span.IsValid() || d.Span.Line > len(f.lines) {
		f.printHelp(d)
		return
	}
	f.printSnippet(d.Span)
	f.printHelp(d)
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	if d.Code != "" {
		fmt.Fprintf(f.w, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(f.w, "%s: %s\n", severity, d.Message)
	}
}

// printSnippet prints the offending line with one line of context before it
// and a caret underline below the span.
func (f *Formatter) printSnippet(span Span) {
	contextStart := max(1, span.Line-1)
	lineNumWidth := len(fmt.Sprintf("%d", span.Line))

	location := span.String()
	if f.filename != "" && span.Filename == "" {
		location = f.filename + ":" + location
	}
	fmt.Fprintf(f.w, "  --> %s\n", location)
	fmt.Fprintf(f.w, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	for lineNum := contextStart; lineNum <= span.Line; lineNum++ {
		lineContent := f.lines[lineNum-1]
		fmt.Fprintf(f.w, " %*d | %s\n", lineNumWidth, lineNum, lineContent)
	}

	lineRunes := []rune(f.lines[span.Line-1])
	start := min(len(lineRunes), span.Column-1)
	width := max(1, span.End-span.Start)
	if start+width > len(lineRunes) {
		width = max(1, len(lineRunes)-start)
	}
	fmt.Fprintf(f.w, "   %s | %s%s\n", strings.Repeat(" ", lineNumWidth), strings.Repeat(" ", start), strings.Repeat("^", width))
}

// printHelp prints notes and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.w, "  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.w, "help: %s\n", d.Help)
	}
}
