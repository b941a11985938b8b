// FILE: hookwisp/src/cmd/hookwisp/output.go
package main

import (
	"fmt"
	"io"
	"os"
)

// consoleOutput carries user-facing messages that exist before, or outside
// of, the structured logger. Quiet mode silences all of it.
type consoleOutput struct {
	quiet  bool
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

var output = newConsoleOutput(false, os.Stdout, os.Stderr)

func newConsoleOutput(quiet bool, stdout, stderr io.Writer) *consoleOutput {
	return &consoleOutput{quiet: quiet, stdout: stdout, stderr: stderr, exit: os.Exit}
}

// InitOutputHandler applies --quiet, called once before any output
func InitOutputHandler(quiet bool) {
	output = newConsoleOutput(quiet, os.Stdout, os.Stderr)
}

func (o *consoleOutput) print(format string, args ...any) {
	if !o.quiet {
		fmt.Fprintf(o.stdout, format, args...)
	}
}

func (o *consoleOutput) error(format string, args ...any) {
	if !o.quiet {
		fmt.Fprintf(o.stderr, format, args...)
	}
}

// fatal exits with code; the exit status is the only signal in quiet mode
func (o *consoleOutput) fatal(code int, format string, args ...any) {
	o.error(format, args...)
	o.exit(code)
}

func Print(format string, args ...any) {
	output.print(format, args...)
}

func Error(format string, args ...any) {
	output.error(format, args...)
}

func FatalError(code int, format string, args ...any) {
	output.fatal(code, format, args...)
}
