package monomorphize

import "github.com/funvibe/peggen/internal/pipeline"

// MonomorphizeProcessor expands every template reachable from ctx.Model's
// concrete rules, leaving ctx.Monomorphized fully parameter-free (spec
// §4.2).
type MonomorphizeProcessor struct{}

func (mp *MonomorphizeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Model == nil {
		return ctx
	}
	m := New(ctx.Model.Rules)
	ctx.Monomorphized = m.Process()
	return ctx
}
