// Package cli exposes the embeddable entry points: run a program from
// source text or from a file, rendering diagnostics along the way.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/wspace/internal/bytecode"
	"github.com/funvibe/wspace/internal/diagnostics"
	"github.com/funvibe/wspace/internal/parser"
	"github.com/funvibe/wspace/internal/pipeline"
	"github.com/funvibe/wspace/internal/vm"
)

type runConfig struct {
	in   io.Reader
	out  io.Writer
	diag io.Writer
}

// Option adjusts how a program is run.
type Option func(*runConfig)

// WithInput sets the input source the program reads from.
func WithInput(r io.Reader) Option {
	return func(cfg *runConfig) { cfg.in = r }
}

// WithOutput sets the output sink the program writes to.
func WithOutput(w io.Writer) Option {
	return func(cfg *runConfig) { cfg.out = w }
}

// WithDiagnostics sets the writer diagnostics are rendered to.
func WithDiagnostics(w io.Writer) Option {
	return func(cfg *runConfig) { cfg.diag = w }
}

func newRunConfig(opts []Option) *runConfig {
	cfg := &runConfig{
		in:   os.Stdin,
		out:  os.Stdout,
		diag: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Compile parses source text into a resolved program without running it.
func Compile(source string) (*bytecode.Program, error) {
	return parser.New(source).Parse()
}

// RunSource parses and executes a program given as source text. Both
// parse errors and runtime tracebacks are rendered to the diagnostic
// writer and returned as structured values; a parse failure means no
// instruction ever executed. Callers that only want print-and-return
// behavior may ignore the returned error.
func RunSource(source string, opts ...Option) error {
	cfg := newRunConfig(opts)

	ctx := pipeline.NewContext(source)
	ctx.Input = cfg.in
	ctx.Output = cfg.out

	ctx = pipeline.New(&parser.Processor{}, &vm.Processor{}).Run(ctx)
	if ctx.Err != nil {
		diagnostics.Render(cfg.diag, ctx.Err)
		return ctx.Err
	}
	return nil
}

// RunFile reads a program from the named file and delegates to
// RunSource. A file that cannot be read is reported distinctly from any
// parse or runtime failure.
func RunFile(path string, opts ...Option) error {
	cfg := newRunConfig(opts)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(cfg.diag, "Could not open '%s'\n", path)
		return fmt.Errorf("open %s: %w", path, err)
	}

	return RunSource(string(source), opts...)
}

// RunBundle executes a previously built bytecode bundle.
func RunBundle(bundle *bytecode.Bundle, opts ...Option) error {
	cfg := newRunConfig(opts)

	machine := vm.New(bundle.Program)
	machine.SetInput(cfg.in)
	machine.SetOutput(cfg.out)

	if err := machine.Run(); err != nil {
		diagnostics.Render(cfg.diag, err)
		return err
	}
	return nil
}
