package model

import (
	"fmt"
	"os"

	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/surface"
	"github.com/funvibe/peggen/internal/token"
	"github.com/funvibe/peggen/internal/utils"
)

// ConverterProcessor turns ctx.AstRoot into ctx.Model (spec §3), resolving
// and flattening a `parent` grammar chain when present (SPEC_FULL's
// supplemental inheritance feature).
type ConverterProcessor struct{}

func (cp *ConverterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	m, err := Convert(ctx.AstRoot)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewPhaseError(
			diagnostics.PhaseModel, diagnostics.ErrM001, token.Token{}, err.Error()))
		return ctx
	}

	if m.ParentName != "" {
		merged, err := resolveParentChain(m, ctx.FilePath, map[string]bool{})
		if err != nil {
			ctx.Errors = append(ctx.Errors, diagnostics.NewPhaseError(
				diagnostics.PhaseModel, diagnostics.ErrM008, token.Token{}, err.Error()))
			return ctx
		}
		m = merged
	}

	ctx.Model = m
	return ctx
}

// resolveParentChain loads, parses, converts, and (recursively) resolves a
// grammar's `parent` file, then flattens it under child. visited guards
// against an inheritance cycle (A:B, B:A).
func resolveParentChain(child *Grammar, childPath string, visited map[string]bool) (*Grammar, error) {
	if child.ParentName == "" {
		return child, nil
	}
	if childPath == "" {
		return nil, fmt.Errorf("grammar %q inherits from %q but has no source file path to resolve it against", child.Name, child.ParentName)
	}

	parentPath := utils.ResolveParentGrammarPath(childPath, child.ParentName)
	if visited[parentPath] {
		return nil, fmt.Errorf("cyclic grammar inheritance at %q", parentPath)
	}
	visited[parentPath] = true

	data, err := os.ReadFile(parentPath)
	if err != nil {
		return nil, fmt.Errorf("loading parent grammar %q: %w", parentPath, err)
	}

	pctx := pipeline.NewPipelineContext(string(data))
	pctx.FilePath = parentPath
	pctx = (&surface.LexerProcessor{}).Process(pctx)
	pctx = (&surface.ParserProcessor{}).Process(pctx)
	if len(pctx.Errors) > 0 {
		return nil, fmt.Errorf("parsing parent grammar %q: %s", parentPath, pctx.Errors[0].Error())
	}

	parentModel, err := Convert(pctx.AstRoot)
	if err != nil {
		return nil, fmt.Errorf("converting parent grammar %q: %w", parentPath, err)
	}
	parentModel, err = resolveParentChain(parentModel, parentPath, visited)
	if err != nil {
		return nil, err
	}

	return child.Flatten(parentModel), nil
}
