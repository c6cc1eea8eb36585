// Package pipeline wires the parse and execute stages together for the
// entry points.
package pipeline

import (
	"io"

	"github.com/funvibe/wspace/internal/bytecode"
)

// Context carries one run through the pipeline: the source going in,
// the compiled program between stages, and the first error of whichever
// stage failed.
type Context struct {
	Source   string
	FilePath string

	// Program is set by the parse stage and consumed by the run stage.
	Program *bytecode.Program

	// Input and Output are the program's I/O channels. Nil values keep
	// the VM defaults (process stdin/stdout).
	Input  io.Reader
	Output io.Writer

	// Err is the first failure: a *parser.ParseError or a *vm.Traceback.
	Err error
}

func NewContext(source string) *Context {
	return &Context{Source: source}
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages after a failed one see ctx.Err set
// and pass it through untouched, so a malformed program never partially
// executes.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
