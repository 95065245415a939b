package emitter

import (
	"bytes"
	"go/format"
	"text/template"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/model"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/token"
)

// EmitterProcessor turns ctx.Monomorphized into ctx.Generated: formatted Go
// source for a recursive-descent parser built on pkg/pegrt (spec §4.3).
type EmitterProcessor struct {
	// PackageName names the emitted file's package clause. Defaults to the
	// grammar's own name, lowercased, when empty.
	PackageName string
}

func (ep *EmitterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.Model == nil || len(ctx.Monomorphized) == 0 {
		return ctx
	}

	// Literal resolution and every other structural analysis must be rerun
	// over the monomorphized tree: instantiation clones pattern nodes (see
	// internal/monomorphize/substitute.go's clonePattern), so the
	// pre-monomorphization analyzer.Analysis keys its ResolvedLits map by
	// pointers this pass never sees.
	monoGrammar := &model.Grammar{Name: ctx.Model.Name, ParentName: ctx.Model.ParentName, Rules: ctx.Monomorphized}
	a := analyzer.Analyze(monoGrammar)
	if len(a.Errors) > 0 {
		ctx.Errors = append(ctx.Errors, a.Errors...)
		return ctx
	}
	ctx.Analysis = a

	gc := newGenCtx(monoGrammar, a)

	var bodies bytes.Buffer
	for _, r := range ctx.Monomorphized {
		src, err := generateRule(gc, r)
		if err != nil {
			ctx.Errors = append(ctx.Errors, diagnostics.NewPhaseError(
				diagnostics.PhaseEmitter, diagnostics.ErrE001, token.Token{}, err.Error()))
			return ctx
		}
		bodies.WriteString(src)
	}

	pkgName := ep.PackageName
	if pkgName == "" {
		pkgName = sanitizePackageName(monoGrammar.Name)
	}

	var out bytes.Buffer
	if err := fileTemplate.Execute(&out, fileData{Package: pkgName, Bodies: bodies.String()}); err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewPhaseError(
			diagnostics.PhaseEmitter, diagnostics.ErrE001, token.Token{}, err.Error()))
		return ctx
	}

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		// Keep the unformatted source so the failure is diagnosable, but
		// still surface it as a compiler error: a codegen bug produced
		// something that isn't valid Go.
		ctx.Generated = out.Bytes()
		ctx.Errors = append(ctx.Errors, diagnostics.NewPhaseError(
			diagnostics.PhaseEmitter, diagnostics.ErrE002, token.Token{}, err.Error()))
		return ctx
	}
	ctx.Generated = formatted
	return ctx
}

type fileData struct {
	Package string
	Bodies  string
}

// fileTemplate is the generated file's fixed scaffolding: a
// generated-code header comment, the package clause, and imports. Every
// per-rule function body is pre-rendered Go source text spliced in as
// Bodies, since text/template has no notion of Go's own AST and only
// splices in already-rendered text.
var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by peggen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/funvibe/peggen/pkg/pegrt"
)

{{.Bodies}}
`))

// sanitizePackageName lowercases and strips anything that isn't a valid Go
// identifier rune from a grammar name, so "MyLang" or "my-lang" both yield
// a legal package clause.
func sanitizePackageName(name string) string {
	if name == "" {
		return "parser"
	}
	var b []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		case c >= 'A' && c <= 'Z':
			b = append(b, c-'A'+'a')
		case c == '_':
			b = append(b, c)
		}
	}
	if len(b) == 0 {
		return "parser"
	}
	if b[0] >= '0' && b[0] <= '9' {
		b = append([]byte{'_'}, b...)
	}
	return string(b)
}
