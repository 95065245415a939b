// Package pipeline threads a grammar file through the compiler's stages —
// lexing, parsing, model conversion, analysis, monomorphization, emission —
// a staged-Processor shape threading source through successive compiler
// stages.
package pipeline

import (
	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/gast"
	"github.com/funvibe/peggen/internal/model"
)

// PipelineContext holds all data passed between compiler stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string // path to the grammar file, if any

	TokenStream TokenStream
	AstRoot     *gast.Grammar
	Model       *model.Grammar
	Analysis    *analyzer.Analysis

	Monomorphized []*model.Rule // flattened, fully concrete rules (spec §4.2)

	Generated []byte // emitted Go source, gofmt'd

	Errors []*diagnostics.DiagnosticError
}

// NewPipelineContext creates an initialized context for the given source.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Errors:     []*diagnostics.DiagnosticError{},
	}
}

// HasErrors reports whether any stage has recorded a diagnostic.
func (c *PipelineContext) HasErrors() bool { return len(c.Errors) > 0 }
