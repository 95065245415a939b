package emitter_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/emitter"
	"github.com/funvibe/peggen/internal/model"
	"github.com/funvibe/peggen/internal/monomorphize"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/surface"
)

// requireValidGo parses src as a Go source file, failing the test with the
// parser's error (and the offending source) if it isn't syntactically
// valid. A substring match on generated text can't catch a malformed
// statement the way actually parsing it can.
func requireValidGo(t *testing.T, src string) {
	t.Helper()
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "generated.go", src, 0); err != nil {
		t.Fatalf("generated source is not valid Go: %v\n---\n%s", err, src)
	}
}

// compile runs src through the full pipeline up to and including the
// emitter, failing the test on any compiler diagnostic.
func compile(t *testing.T, src string) string {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src)
	ctx = (&surface.LexerProcessor{}).Process(ctx)
	ctx = (&surface.ParserProcessor{}).Process(ctx)
	ctx = (&model.ConverterProcessor{}).Process(ctx)
	ctx = (&analyzer.AnalyzerProcessor{}).Process(ctx)
	ctx = (&monomorphize.MonomorphizeProcessor{}).Process(ctx)
	ctx = (&emitter.EmitterProcessor{}).Process(ctx)

	if len(ctx.Errors) > 0 {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("compile failed:\n%s", strings.Join(msgs, "\n"))
	}
	if len(ctx.Generated) == 0 {
		t.Fatal("no source generated")
	}
	return string(ctx.Generated)
}

func TestEmitLeftRecursiveCalculator(t *testing.T) {
	src := `grammar Calc {
		pub rule main() -> i64 = e:expr -> { e } ;
		rule expr -> i64 =
			a:expr "+" b:term -> { a + b }
			| t:term -> { t } ;
		rule term -> i64 = n:integer -> { n } ;
	}`

	out := compile(t, src)
	requireValidGo(t, out)

	for _, want := range []string{
		"package calc",
		"func parse_main_impl(c *pegrt.Cursor) (i64, error)",
		"func ParseMain(c *pegrt.Cursor) (i64, error)",
		"func parse_expr_impl(c *pegrt.Cursor) (i64, error)",
		"func parse_term_impl(c *pegrt.Cursor) (i64, error)",
		"pegrt.ParseInt",
		"left-recursive rule matched empty string",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, out)
		}
	}
}

func TestEmitCutCommitsPastFatalPoint(t *testing.T) {
	src := `grammar Cond {
		pub rule main() -> bool = if_stmt -> { true } ;
		rule if_stmt -> bool = "if" => cond:ident "then" body:ident -> { true } ;
	}`

	out := compile(t, src)
	requireValidGo(t, out)

	for _, want := range []string{
		"func parse_if_stmt_impl",
		"c.SetFatal(true)",
		"pegrt.ParseIdent",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, out)
		}
	}
}

func TestEmitOptionalAndRepeat(t *testing.T) {
	src := `grammar Lst {
		pub rule main() -> []i64 = xs:list -> { xs } ;
		rule list -> []i64 = (n:integer)* -> { n } ;
		pub rule maybe -> i64 = n:integer? -> { 0 } ;
	}`

	out := compile(t, src)
	requireValidGo(t, out)

	for _, want := range []string{
		"func parse_list_impl",
		"pegrt.Repeated",
		"func parse_maybe_impl",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, out)
		}
	}
}

func TestEmitSeparatedPseudoRule(t *testing.T) {
	src := `grammar Csv {
		pub rule main() -> []i64 = xs:separated(integer, ",") -> { xs } ;
	}`

	out := compile(t, src)
	requireValidGo(t, out)

	for _, want := range []string{
		"pegrt.SliceSink",
		"pegrt.Attempt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, out)
		}
	}
	for _, bad := range []string{
		"_ := ",
		"return _,",
	} {
		if strings.Contains(out, bad) {
			t.Errorf("generated source contains invalid blank-identifier construct %q\n---\n%s", bad, out)
		}
	}
}

func TestEmitDelimitedGroupWithNestedOptional(t *testing.T) {
	src := `grammar Rec {
		pub rule main() -> i64 = r:record -> { r } ;
		rule record -> i64 = [ n:integer? ] -> { 0 } ;
	}`

	out := compile(t, src)
	requireValidGo(t, out)

	for _, want := range []string{
		"func parse_record_impl",
		"pegrt.Bracketed",
		".Delimited(pegrt.Bracketed)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, out)
		}
	}
}
