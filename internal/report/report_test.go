package report

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/asurkis/experimental-interpreter/internal/driver"
)

func render(t *testing.T, format Format, color bool, o Outcome, src string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewRenderer(&buf, format, "main.expi", color).Render(o, src); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "yaml"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("%q: got %q, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Errorf("expected json to be rejected")
	}
}

func TestTextSuccess(t *testing.T) {
	res, err := driver.Run("(let xs (array 1 2) (seq (array-set 0 xs 7) xs))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := render(t, FormatText, false, FromResult(res, false), "")
	if got != "(array 7 2) : Array(Int64)\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got = render(t, FormatText, false, FromResult(res, true), "")
	if !strings.HasPrefix(got, "let xs#1 : Array(Int64)\n") {
		t.Fatalf("expected the typed tree first, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "(array 7 2) : Array(Int64)\n") {
		t.Fatalf("expected the value last, got:\n%s", got)
	}
}

func TestTextCheck(t *testing.T) {
	typed, err := driver.Compile("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "+ : Int64\n  const 1 : Int64\n  const 2 : Int64\n"
	if got := render(t, FormatText, false, FromTyped(typed), ""); got != want {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTextFailure(t *testing.T) {
	src := "(+ 1 i64)"
	_, err := driver.New(driver.WithFilename("main.expi")).Run(src)
	if err == nil {
		t.Fatalf("expected failure")
	}
	o := FromError(err)
	if o.OK || o.Stage != "typecheck" {
		t.Fatalf("unexpected outcome %+v", o)
	}

	got := render(t, FormatText, false, o, src)
	for _, want := range []string{
		"error[TYPE_INVALID_OPERAND]: operand 2 of `+` must be Int64, found `Type(Int64)`",
		"  --> main.expi:1:6",
		" 1 | (+ 1 i64)",
		"^^^",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("unexpected color codes in plain output")
	}
}

func TestTextFailureColored(t *testing.T) {
	src := "(/ 1 0)"
	_, err := driver.Run(src)
	got := render(t, FormatText, true, FromError(err), src)
	if !strings.Contains(got, ansiRed+"error[EVAL_DIVIDE_BY_ZERO]: division by zero in `/`"+ansiReset+"\n") {
		t.Fatalf("expected a colored header, got %q", got)
	}
}

func TestYAMLOutcome(t *testing.T) {
	res, err := driver.Run("(+ 40 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Outcome
	out := render(t, FormatYAML, false, FromResult(res, false), "")
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !decoded.OK || decoded.Value != "42" || decoded.Type != "Int64" {
		t.Fatalf("unexpected outcome %+v", decoded)
	}
	if strings.Contains(out, "diagnostics") {
		t.Fatalf("expected no diagnostics key:\n%s", out)
	}
}

func TestYAMLDiagnostics(t *testing.T) {
	_, err := driver.Run("(array 1 (array 2))")

	var decoded Outcome
	out := render(t, FormatYAML, false, FromError(err), "")
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if decoded.OK || decoded.Stage != "typecheck" || len(decoded.Diagnostics) != 1 {
		t.Fatalf("unexpected outcome %+v", decoded)
	}
	e := decoded.Diagnostics[0]
	if e.Code != "TYPE_MISMATCH" || e.Kind != "TypeError" || e.Line != 1 || e.Column != 10 {
		t.Fatalf("unexpected entry %+v", e)
	}
}
