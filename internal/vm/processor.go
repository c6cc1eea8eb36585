package vm

import (
	"github.com/funvibe/wspace/internal/pipeline"
)

// Processor is the pipeline stage that executes a parsed program.
type Processor struct{}

func (vp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Err != nil {
		return ctx
	}
	if ctx.Program == nil {
		// Should not be hit if the parse stage runs first, but as a
		// safeguard: nothing to execute.
		return ctx
	}

	machine := New(ctx.Program)
	if ctx.Input != nil {
		machine.SetInput(ctx.Input)
	}
	if ctx.Output != nil {
		machine.SetOutput(ctx.Output)
	}

	if err := machine.Run(); err != nil {
		ctx.Err = err
	}
	return ctx
}
