package analyzer

import "github.com/funvibe/peggen/internal/pipeline"

// AnalyzerProcessor runs every analysis pass over ctx.Model and records its
// artifacts on ctx.Analysis (spec §4.1).
type AnalyzerProcessor struct{}

func (p *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Model == nil {
		return ctx
	}
	a := Analyze(ctx.Model)
	ctx.Analysis = a
	if len(a.Errors) > 0 {
		ctx.Errors = append(ctx.Errors, a.Errors...)
	}
	return ctx
}
