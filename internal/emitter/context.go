// Package emitter turns a monomorphized, fully concrete rule set into Go
// source for a recursive-descent parser built on pkg/pegrt (spec §4.3). The
// same decision tree (variant dispatch, cut handling, left-recursion loop,
// per-pattern-kind step emission) is built by composing helper functions
// that return Go source as text, plus a thin text/template skeleton for
// the generated file's fixed scaffolding (header comment, package clause,
// imports); per-rule function signatures are written by generateRule.
// go/format.Source cleans up the final whitespace.
package emitter

import (
	"fmt"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/model"
)

// genCtx threads the per-grammar artifacts every pattern/rule emission
// function needs (resolved literals, the grammar itself, a fresh-name
// counter) instead of passing each one through every call individually.
type genCtx struct {
	analysis *analyzer.Analysis
	grammar  *model.Grammar
	tmp      int // counter for fresh temporary variable names
}

func newGenCtx(g *model.Grammar, a *analyzer.Analysis) *genCtx {
	return &genCtx{analysis: a, grammar: g}
}

// fresh allocates a temporary identifier, e.g. "_t3", unique within one
// generated file.
func (g *genCtx) fresh(prefix string) string {
	g.tmp++
	return fmt.Sprintf("_%s%d", prefix, g.tmp)
}

func goIdent(name string) string {
	return "parse_" + name + "_impl"
}

func goPublicIdent(name string) string {
	return "Parse" + exportCase(name)
}

// exportCase upper-cases a rule's first letter so a public wrapper (spec
// §4.3.1: "a thin wrapper parse_R exposing the same signature without the
// context") is itself exported Go, e.g. "expr" -> "Expr".
func exportCase(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
