package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asurkis/experimental-interpreter/internal/driver"
)

// TestResult represents the result of running a single fixture
type TestResult struct {
	Name     string
	Passed   bool
	Error    error
	Duration time.Duration
}

// runTest runs fixture files, by default everything under the current directory
func runTest(args []string) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "print every fixture, not only failures")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	failed := 0
	for _, path := range paths {
		failed += runAllTests(path, *verbose)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// runAllTests discovers and runs all fixture files at path and returns the
// number of failures
func runAllTests(path string, verbose bool) int {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error accessing path %s: %v\n", path, err)
		return 1
	}

	var testFiles []string
	if info.IsDir() {
		testFiles, err = findTestFiles(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding test files: %v\n", err)
			return 1
		}
	} else {
		testFiles = []string{path}
	}

	if len(testFiles) == 0 {
		fmt.Printf("No test files found in %s\n", path)
		return 0
	}

	fmt.Printf("Running tests in %s...\n\n", path)

	var total, passed, failed int
	for _, testFile := range testFiles {
		for _, result := range runTestFile(testFile) {
			total++
			if result.Passed {
				passed++
				if verbose {
					fmt.Printf("  ✓ %s (%s)\n", result.Name, result.Duration)
				}
				continue
			}
			failed++
			fmt.Printf("  ✗ %s\n", result.Name)
			if result.Error != nil {
				fmt.Printf("    Error: %s\n", strings.ReplaceAll(result.Error.Error(), "\n", "\n    "))
			}
		}
	}

	fmt.Printf("\n")
	fmt.Printf("Test Results: %d total, %d passed, %d failed\n", total, passed, failed)
	return failed
}

// findTestFiles finds every file ending in _test.yaml, skipping hidden directories
func findTestFiles(dir string) ([]string, error) {
	var testFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, "_test.yaml") {
			testFiles = append(testFiles, path)
		}
		return nil
	})

	return testFiles, err
}

// runTestFile runs every fixture in one file
func runTestFile(filename string) []TestResult {
	fixtures, err := driver.LoadFixtureFile(filename)
	if err != nil {
		return []TestResult{{
			Name:   filepath.Base(filename),
			Passed: false,
			Error:  err,
		}}
	}

	d := driver.New(driver.WithFilename(filename))
	results := make([]TestResult, 0, len(fixtures))
	for _, f := range fixtures {
		start := time.Now()
		err := d.Verify(f)
		results = append(results, TestResult{
			Name:     filepath.Base(filename) + "/" + f.Name,
			Passed:   err == nil,
			Error:    err,
			Duration: time.Since(start),
		})
	}
	return results
}
