package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/asurkis/experimental-interpreter/internal/config"
	"github.com/asurkis/experimental-interpreter/internal/driver"
	"github.com/asurkis/experimental-interpreter/internal/report"
)

const (
	promptMain = "expi> "
	promptCont = "  ... "
	replBanner = "expi interactive session. Each entry is evaluated on its own. Type :quit to exit."
)

func runRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	flags := config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logger := newLogger(cfg.Verbose)
	d := driver.New(driver.WithFilename("<repl>"), driver.WithLogger(logger))
	renderer := report.NewRenderer(os.Stdout, format, "<repl>", cfg.Color)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				logger.Printf("history: %v", err)
			}
			f.Close()
		}
		defer func() {
			f, err := os.Create(cfg.HistoryFile)
			if err != nil {
				logger.Printf("history: %v", err)
				return
			}
			defer f.Close()
			if _, err := ln.WriteHistory(f); err != nil {
				logger.Printf("history: %v", err)
			}
		}()
	}

	fmt.Println(replBanner)
	for {
		src, ok := readEntry(ln, d)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			case ":typed":
				cfg.ShowTyped = !cfg.ShowTyped
				fmt.Printf("show typed tree: %v\n", cfg.ShowTyped)
			default:
				fmt.Println("unknown command; known commands are :typed and :quit")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		var o report.Outcome
		if res, err := d.Run(src); err != nil {
			o = report.FromError(err)
		} else {
			o = report.FromResult(res, cfg.ShowTyped)
		}
		if err := renderer.Render(o, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// readEntry reads lines until they form a complete program or fail for a
// reason other than open brackets.
func readEntry(ln *liner.State, d *driver.Driver) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := d.Tokens(src); err != nil && driver.IsIncomplete(err) && strings.TrimSpace(src) != "" {
			continue
		}
		return src, true
	}
}
