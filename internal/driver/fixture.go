package driver

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/asurkis/experimental-interpreter/internal/diag"
	"github.com/asurkis/experimental-interpreter/internal/eval"
)

// Fixture is one program with its expected outcome. A fixture with an empty
// Stage is expected to succeed.
type Fixture struct {
	Name   string      `yaml:"name"`
	Source string      `yaml:"source"`
	Value  string      `yaml:"value,omitempty"`
	Type   string      `yaml:"type,omitempty"`
	Stage  diag.Stage  `yaml:"stage,omitempty"`
	Codes  []diag.Code `yaml:"codes,omitempty"`
}

type fixtureFile struct {
	Cases []Fixture `yaml:"cases"`
}

// LoadFixtures decodes a fixture document. Unknown keys are rejected.
func LoadFixtures(r io.Reader) ([]Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file fixtureFile
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode fixtures")
	}
	for i, f := range file.Cases {
		if f.Name == "" {
			return nil, errors.Errorf("fixture %d has no name", i+1)
		}
	}
	return file.Cases, nil
}

// LoadFixtureFile reads fixtures from path.
func LoadFixtureFile(path string) ([]Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	fixtures, err := LoadFixtures(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return fixtures, nil
}

// StageOf reports which stage produced err.
func StageOf(err error) diag.Stage {
	switch cause := errors.Cause(err).(type) {
	case *DiagnosticsError:
		return cause.Stage
	case *eval.RuntimeError:
		return diag.StageEval
	default:
		return ""
	}
}

// Verify runs the fixture and describes the first difference from its
// expected outcome, or returns nil.
func (d *Driver) Verify(f Fixture) error {
	res, err := d.Run(f.Source)

	if f.Stage == "" {
		if err != nil {
			return errors.Errorf("unexpected failure:\n%s", diag.Join(Diagnostics(err)))
		}
		if f.Value != "" && res.Value.String() != f.Value {
			return errors.Errorf("value: expected %s, got %s", f.Value, res.Value)
		}
		if f.Type != "" && res.Type.String() != f.Type {
			return errors.Errorf("type: expected %s, got %s", f.Type, res.Type)
		}
		return nil
	}

	if err == nil {
		return errors.Errorf("expected a %s failure, got %s : %s", f.Stage, res.Value, res.Type)
	}
	if got := StageOf(err); got != f.Stage {
		return errors.Errorf("stage: expected %s, got %s\n%s", f.Stage, got, diag.Join(Diagnostics(err)))
	}
	if len(f.Codes) > 0 {
		got := codes(Diagnostics(err))
		if !reflect.DeepEqual(got, f.Codes) {
			return errors.Errorf("codes: expected %v, got %v\n%s", f.Codes, got, diag.Join(Diagnostics(err)))
		}
	}
	return nil
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func (f Fixture) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Source)
}
