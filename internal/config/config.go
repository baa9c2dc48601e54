// Package config loads the settings of the expi command: an optional YAML
// file, overridden by command-line flags.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every user-tunable setting.
type Config struct {
	Format      string `yaml:"format"`
	ShowTyped   bool   `yaml:"show_typed"`
	HistoryFile string `yaml:"history_file"`
	Verbose     bool   `yaml:"verbose"`
	Color       bool   `yaml:"color"`
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Config {
	cfg := Config{Format: "text"}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".expi_history")
	}
	return cfg
}

// DefaultPath is where the config file is looked up when -config is not given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "expi", "config.yaml")
}

// Decode reads YAML settings from r on top of base. Unknown keys are errors.
func Decode(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "config: parse")
	}
	return cfg, nil
}

// Load reads the file at path on top of the defaults. A missing file is only
// an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return Config{}, errors.Wrapf(err, "config: open %s", path)
	}
	defer f.Close()

	cfg, err = Decode(f, cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Flags are the command-line overrides registered on a flag set.
type Flags struct {
	fs          *flag.FlagSet
	path        string
	format      string
	showTyped   bool
	historyFile string
	verbose     bool
	color       bool
}

// Bind registers the config flags on fs.
func Bind(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.path, "config", DefaultPath(), "path to a YAML config file")
	fs.StringVar(&f.format, "format", "text", "output format: text or yaml")
	fs.BoolVar(&f.showTyped, "typed", false, "print the type-annotated tree before the value")
	fs.StringVar(&f.historyFile, "history", "", "REPL history file")
	fs.BoolVar(&f.verbose, "v", false, "log stage timings to stderr")
	fs.BoolVar(&f.color, "color", false, "colorize diagnostics")
	return f
}

// Resolve loads the config file and applies the flags that were set
// explicitly. Call it after fs.Parse.
func (f *Flags) Resolve() (Config, error) {
	explicit := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "config" {
			explicit = true
		}
	})

	cfg, err := Load(f.path, explicit)
	if err != nil {
		return Config{}, err
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "format":
			cfg.Format = f.format
		case "typed":
			cfg.ShowTyped = f.showTyped
		case "history":
			cfg.HistoryFile = f.historyFile
		case "v":
			cfg.Verbose = f.verbose
		case "color":
			cfg.Color = f.color
		}
	})
	return cfg, nil
}
