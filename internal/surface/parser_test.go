package surface_test

import (
	"testing"

	"github.com/funvibe/peggen/internal/gast"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/surface"
)

func parseGrammar(t *testing.T, src string) *gast.Grammar {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src)
	ctx = (&surface.LexerProcessor{}).Process(ctx)
	ctx = (&surface.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %v", e)
		}
		t.FailNow()
	}
	if ctx.AstRoot == nil {
		t.Fatal("nil AST root")
	}
	return ctx.AstRoot
}

func TestParseMinimalGrammar(t *testing.T) {
	g := parseGrammar(t, `grammar Expr {
		pub rule main() -> i64 = n:integer -> { n } ;
	}`)

	if g.Name != "Expr" {
		t.Fatalf("got name %q", g.Name)
	}
	if len(g.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(g.Rules))
	}
	r := g.Rules[0]
	if !r.Public || r.Name != "main" || r.ReturnType != "i64" {
		t.Fatalf("rule mismatch: %+v", r)
	}
	if len(r.Variants) != 1 || len(r.Variants[0].Patterns) != 1 {
		t.Fatalf("variant mismatch: %+v", r.Variants)
	}
	lit, ok := r.Variants[0].Patterns[0].(*gast.RuleCall)
	if !ok {
		t.Fatalf("want RuleCall pattern, got %T", r.Variants[0].Patterns[0])
	}
	if lit.Binding != "n" || lit.Name != "integer" {
		t.Fatalf("got %+v", lit)
	}
	if r.Variants[0].Action != "n" {
		t.Fatalf("got action %q", r.Variants[0].Action)
	}
}

func TestParseParentGrammarAndVariants(t *testing.T) {
	g := parseGrammar(t, `grammar Child : Base {
		rule atom -> i64 =
			"(" e:main ")" -> { e }
			| peek(integer) n:integer -> { n } ;
	}`)

	if g.ParentName != "Base" {
		t.Fatalf("got parent %q", g.ParentName)
	}
	r := g.Rules[0]
	if len(r.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(r.Variants))
	}

	first := r.Variants[0].Patterns
	if len(first) != 3 {
		t.Fatalf("first variant: got %d patterns, want 3", len(first))
	}
	if _, ok := first[0].(*gast.Literal); !ok {
		t.Fatalf("pattern 0: want Literal, got %T", first[0])
	}
	call, ok := first[1].(*gast.RuleCall)
	if !ok || call.Binding != "e" || call.Name != "main" {
		t.Fatalf("pattern 1: got %+v", first[1])
	}

	second := r.Variants[1].Patterns
	if len(second) != 2 {
		t.Fatalf("second variant: got %d patterns, want 2", len(second))
	}
	if _, ok := second[0].(*gast.Peek); !ok {
		t.Fatalf("pattern 0: want Peek, got %T", second[0])
	}
}

func TestParseGenericAndValueParams(t *testing.T) {
	g := parseGrammar(t, `grammar G {
		rule separated<T: Elem>(item, sep) -> []T = item* -> { item } ;
	}`)

	r := g.Rules[0]
	if len(r.GenericParams) != 1 || r.GenericParams[0].Name != "T" || r.GenericParams[0].Bound != "Elem" {
		t.Fatalf("got generics %+v", r.GenericParams)
	}
	if len(r.ValueParams) != 2 || r.ValueParams[0].Name != "item" || r.ValueParams[0].Type != "" {
		t.Fatalf("got value params %+v", r.ValueParams)
	}
	if r.ReturnType != "[]T" {
		t.Fatalf("got return type %q", r.ReturnType)
	}
}

func TestParseSuffixesAndRecover(t *testing.T) {
	g := parseGrammar(t, `grammar G {
		rule stmts -> i64 =
			s:recover(stmt, until(";")) * -> { s } ;
	}`)

	r := g.Rules[0]
	p := r.Variants[0].Patterns[0]
	rep, ok := p.(*gast.Repeat)
	if !ok {
		t.Fatalf("want Repeat, got %T", p)
	}
	rec, ok := rep.Inner.(*gast.Recover)
	if !ok || rec.Binding != "s" {
		t.Fatalf("want bound Recover, got %T %+v", rep.Inner, rep.Inner)
	}
	if _, ok := rec.Sync.(*gast.Until); !ok {
		t.Fatalf("want Until sync pattern, got %T", rec.Sync)
	}
}
