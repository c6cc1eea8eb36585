// Package diagnostics formats parse errors and runtime tracebacks for
// humans. The core error types carry structure only; all presentation
// lives here.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/funvibe/wspace/internal/parser"
	"github.com/funvibe/wspace/internal/vm"
	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// useColor reports whether ANSI color should be written to w.
func useColor(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

// Render writes a structured failure to w in its canonical textual
// form. Errors that are neither parse errors nor tracebacks are printed
// as-is.
func Render(w io.Writer, err error) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		RenderParseError(w, parseErr)
		return
	}

	var traceback *vm.Traceback
	if errors.As(err, &traceback) {
		RenderTraceback(w, traceback)
		return
	}

	fmt.Fprintf(w, "%s\n", err)
}

// RenderParseError writes a parse error as "[Line N] message".
func RenderParseError(w io.Writer, err *parser.ParseError) {
	if useColor(w) {
		fmt.Fprintf(w, "%s[Line %d]%s %s%s%s\n",
			ansiBold, err.Line, ansiReset, ansiRed, err.Message(), ansiReset)
		return
	}
	fmt.Fprintf(w, "[Line %d] %s\n", err.Line, err.Message())
}

// RenderTraceback writes the full call-stack traceback, outermost frame
// first, followed by the failure reason.
func RenderTraceback(w io.Writer, tb *vm.Traceback) {
	fmt.Fprintln(w, "Stack traceback:")
	for _, entry := range tb.Entries {
		if entry.Labeled {
			fmt.Fprintf(w, "[Line %d] in subroutine #%d\n", entry.Line, entry.Label)
		} else {
			fmt.Fprintf(w, "[Line %d] in main()\n", entry.Line)
		}
	}

	if useColor(w) {
		fmt.Fprintf(w, "%sError: %s%s\n", ansiRed, tb.Reason.Message(), ansiReset)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", tb.Reason.Message())
}
