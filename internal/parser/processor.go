package parser

import (
	"github.com/funvibe/wspace/internal/pipeline"
)

// Processor is the pipeline stage that turns source text into a
// resolved program.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Err != nil {
		return ctx
	}

	program, err := New(ctx.Source).Parse()
	if err != nil {
		ctx.Err = err
		return ctx
	}

	ctx.Program = program
	return ctx
}
