package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/peggen/internal/model"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/surface"
)

func compileToModel(t *testing.T, path, source string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = path
	ctx = (&surface.LexerProcessor{}).Process(ctx)
	ctx = (&surface.ParserProcessor{}).Process(ctx)
	ctx = (&model.ConverterProcessor{}).Process(ctx)
	return ctx
}

func TestConverterProcessorFlattensParentGrammar(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "Base.peg")
	childPath := filepath.Join(dir, "Child.peg")

	baseSrc := `grammar Base {
		rule greeting -> string = s:string -> { s } ;
	}`
	childSrc := `grammar Child : Base {
		pub rule main() -> string = g:greeting -> { g } ;
	}`

	if err := os.WriteFile(basePath, []byte(baseSrc), 0o644); err != nil {
		t.Fatalf("write Base.peg: %v", err)
	}

	ctx := compileToModel(t, childPath, childSrc)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if ctx.Model == nil {
		t.Fatal("expected a model")
	}

	names := map[string]bool{}
	for _, r := range ctx.Model.Rules {
		names[r.Name] = true
	}
	if !names["main"] {
		t.Error("expected child's own 'main' rule to survive flattening")
	}
	if !names["greeting"] {
		t.Error("expected parent's 'greeting' rule to be merged in")
	}
}

func TestConverterProcessorChildRuleShadowsParent(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "Base.peg")
	childPath := filepath.Join(dir, "Child.peg")

	baseSrc := `grammar Base {
		rule greeting -> string = s:string -> { s } ;
	}`
	childSrc := `grammar Child : Base {
		rule greeting -> string = s:string -> { s } ;
		pub rule main() -> string = g:greeting -> { g } ;
	}`

	if err := os.WriteFile(basePath, []byte(baseSrc), 0o644); err != nil {
		t.Fatalf("write Base.peg: %v", err)
	}

	ctx := compileToModel(t, childPath, childSrc)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}

	count := 0
	for _, r := range ctx.Model.Rules {
		if r.Name == "greeting" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one 'greeting' rule after shadowing, got %d", count)
	}
}

func TestConverterProcessorMissingParentFileReportsError(t *testing.T) {
	dir := t.TempDir()
	childPath := filepath.Join(dir, "Child.peg")
	childSrc := `grammar Child : Missing {
		pub rule main() -> string = s:string -> { s } ;
	}`

	ctx := compileToModel(t, childPath, childSrc)
	if len(ctx.Errors) == 0 {
		t.Fatal("expected an error for an unresolvable parent grammar")
	}
}
