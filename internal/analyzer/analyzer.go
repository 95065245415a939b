package analyzer

import (
	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/model"
	"github.com/funvibe/peggen/internal/token"
)

// RuleAnalysis holds the per-rule artifacts the emitter depends on.
type RuleAnalysis struct {
	Split   LeftRecursionSplit
	Shadows []ShadowWarning
}

// Analysis holds the whole-grammar artifacts Analyze computes: the custom
// keyword set, resolved literal token types, each rule's left-recursion
// split and shadowing warnings, the call graph, unused rules, and the
// diagnostics. Per-pattern first token, nullability, and cut position are
// not stored here; GetSimplePeek, IsNullable, and FindCut compute them on
// demand.
type Analysis struct {
	CustomKeywords map[string]bool
	ResolvedLits   map[*model.Literal][]TokenTypeRef
	CallGraph      CallGraph
	Unused         []string
	Rules          map[string]*RuleAnalysis
	Errors         []*diagnostics.DiagnosticError
}

// Analyze runs every analyzer pass over the model in spec-order: keywords
// first (literal resolution depends on them), then per-rule structural
// checks, then whole-grammar graph checks.
func Analyze(g *model.Grammar) *Analysis {
	a := &Analysis{
		CustomKeywords: CollectCustomKeywords(g),
		ResolvedLits:   map[*model.Literal][]TokenTypeRef{},
		Rules:          map[string]*RuleAnalysis{},
	}

	resolveAllLiterals(g, a)

	for _, r := range g.Rules {
		ra := &RuleAnalysis{}
		ra.Split = SplitLeftRecursive(r.Name, r.Variants)
		if len(ra.Split.Recursive) > 0 && len(ra.Split.Base) == 0 {
			a.Errors = append(a.Errors, diagnostics.NewPhaseError(
				diagnostics.PhaseAnalyzer, diagnostics.ErrA002, token.Token{}, r.Name))
		}
		for i, v := range r.Variants {
			if v.CutIndex >= 0 {
				if dup := FindCut(v.Patterns[v.CutIndex+1:]); dup != nil {
					a.Errors = append(a.Errors, diagnostics.NewPhaseError(
						diagnostics.PhaseAnalyzer, diagnostics.ErrA005, token.Token{}, r.Name))
				}
			}
			_ = i
		}
		ra.Shadows = CheckShadowing(r.Name, r.Variants, a.ResolvedLits)
		for _, sw := range ra.Shadows {
			a.Errors = append(a.Errors, diagnostics.NewPhaseError(
				diagnostics.PhaseAnalyzer, diagnostics.ErrA003, token.Token{}, sw.ShadowedBy, r.Name, sw.Shadowed))
		}
		a.Rules[r.Name] = ra
	}

	a.CallGraph = BuildCallGraph(g)
	for _, name := range FindIndirectLeftRecursionCycles(g, a.CallGraph) {
		a.Errors = append(a.Errors, diagnostics.NewPhaseError(
			diagnostics.PhaseAnalyzer, diagnostics.ErrA001, token.Token{}, name))
	}

	a.Unused = FindUnused(g, a.CallGraph)
	for _, name := range a.Unused {
		a.Errors = append(a.Errors, diagnostics.NewPhaseError(
			diagnostics.PhaseAnalyzer, diagnostics.ErrA004, token.Token{}, name))
	}

	return a
}

func resolveAllLiterals(g *model.Grammar, a *Analysis) {
	for _, r := range g.Rules {
		for _, v := range r.Variants {
			resolveLiteralsInSeq(v.Patterns, a)
		}
	}
}

func resolveLiteralsInSeq(patterns []model.Pattern, a *Analysis) {
	for _, p := range patterns {
		switch n := p.(type) {
		case *model.Literal:
			refs, err := ResolveLiteral(n.Lit, token.Token{}, a.CustomKeywords)
			if err != nil {
				a.Errors = append(a.Errors, err)
				continue
			}
			a.ResolvedLits[n] = refs
		case *model.Group:
			for _, alt := range n.Alternatives {
				resolveLiteralsInSeq(alt, a)
			}
		case *model.Delimited:
			resolveLiteralsInSeq(n.Inner, a)
		case *model.Optional:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.Repeat:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.Plus:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.SpanBinding:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.Recover:
			resolveLiteralsInSeq([]model.Pattern{n.Body}, a)
			resolveLiteralsInSeq([]model.Pattern{n.Sync}, a)
		case *model.Peek:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.Not:
			resolveLiteralsInSeq([]model.Pattern{n.Inner}, a)
		case *model.RuleCall:
			resolveLiteralsInSeq(n.ValueArgs, a)
		case *model.Until:
			resolveLiteralsInSeq([]model.Pattern{n.Pattern}, a)
		}
	}
}
