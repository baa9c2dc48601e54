package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/asurkis/experimental-interpreter/internal/config"
	"github.com/asurkis/experimental-interpreter/internal/driver"
	"github.com/asurkis/experimental-interpreter/internal/lexer"
	"github.com/asurkis/experimental-interpreter/internal/report"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: expi <command> [options]\n")
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  run [file]       Evaluate a program and print its value\n")
		fmt.Fprintf(os.Stderr, "  check [file]     Type check a program and print the typed tree\n")
		fmt.Fprintf(os.Stderr, "  tokens [file]    Print the token tree of a program\n")
		fmt.Fprintf(os.Stderr, "  repl             Start an interactive session\n")
		fmt.Fprintf(os.Stderr, "  test [path...]   Run *_test.yaml program fixtures\n")
		fmt.Fprintf(os.Stderr, "  lsp              Serve the language server protocol on stdio\n")
		fmt.Fprintf(os.Stderr, "\nWithout a file, the program is read from stdin.\n")
		fmt.Fprintf(os.Stderr, "Run 'expi <command> -h' for command options.\n")
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "run":
		os.Exit(runRun(args))
	case "check":
		os.Exit(runCheck(args))
	case "tokens":
		os.Exit(runTokens(args))
	case "repl":
		os.Exit(runRepl(args))
	case "test":
		os.Exit(runTest(args))
	case "lsp":
		os.Exit(runLSP(args))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(2)
	}
}

// session is the state shared by the one-shot commands.
type session struct {
	cfg      config.Config
	filename string
	src      string
	driver   *driver.Driver
	renderer *report.Renderer
}

func newLogger(verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[expi] ", log.Ltime|log.Lmicroseconds)
}

// setup parses the command's flags, resolves config and reads the program.
func setup(name string, args []string) (*session, int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags := config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, 2
	}
	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, 2
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, 2
	}

	filename, src, err := readProgram(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, 1
	}

	logger := newLogger(cfg.Verbose)
	logger.Printf("%s: %d bytes from %s", name, len(src), filename)

	return &session{
		cfg:      cfg,
		filename: filename,
		src:      src,
		driver:   driver.New(driver.WithFilename(filename), driver.WithLogger(logger)),
		renderer: report.NewRenderer(os.Stdout, format, filename, cfg.Color),
	}, 0
}

func readProgram(args []string) (string, string, error) {
	if len(args) > 1 {
		return "", "", errors.New("expected at most one program file")
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", errors.Wrap(err, "read stdin")
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", errors.Wrapf(err, "read %s", args[0])
	}
	return args[0], string(data), nil
}

func (s *session) render(o report.Outcome) int {
	if err := s.renderer.Render(o, s.src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !o.OK {
		return 1
	}
	return 0
}

func runRun(args []string) int {
	s, code := setup("run", args)
	if s == nil {
		return code
	}
	res, err := s.driver.Run(s.src)
	if err != nil {
		return s.render(report.FromError(err))
	}
	return s.render(report.FromResult(res, s.cfg.ShowTyped))
}

func runCheck(args []string) int {
	s, code := setup("check", args)
	if s == nil {
		return code
	}
	typed, err := s.driver.Compile(s.src)
	if err != nil {
		return s.render(report.FromError(err))
	}
	return s.render(report.FromTyped(typed))
}

func runTokens(args []string) int {
	s, code := setup("tokens", args)
	if s == nil {
		return code
	}
	node, err := s.driver.Tokens(s.src)
	if err != nil {
		return s.render(report.FromError(err))
	}
	fmt.Println(lexer.Describe(node))
	return 0
}
