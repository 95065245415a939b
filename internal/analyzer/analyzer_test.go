package analyzer_test

import (
	"testing"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/model"
)

func TestResolveAllLiteralsEntersRuleCallArgs(t *testing.T) {
	sep := &model.Literal{Lit: ","}
	g := &model.Grammar{
		Name: "G",
		Rules: []*model.Rule{{
			Name:       "main",
			ReturnType: "[]i64",
			Variants: []*model.Variant{{
				CutIndex: -1,
				Patterns: []model.Pattern{
					&model.RuleCall{
						Binding: "xs",
						Name:    "separated",
						ValueArgs: []model.Pattern{
							&model.RuleCall{Name: "integer"},
							sep,
						},
					},
				},
			}},
		}},
	}

	a := analyzer.Analyze(g)
	if _, ok := a.ResolvedLits[sep]; !ok {
		t.Fatalf("separator literal %q passed as a RuleCall value argument was never resolved", sep.Lit)
	}
}

func TestResolveAllLiteralsEntersUntilSync(t *testing.T) {
	sync := &model.Literal{Lit: ";"}
	g := &model.Grammar{
		Name: "G",
		Rules: []*model.Rule{{
			Name:       "main",
			ReturnType: "[]pegrt.Atom",
			Variants: []*model.Variant{{
				CutIndex: -1,
				Patterns: []model.Pattern{
					&model.Until{Binding: "body", Pattern: sync},
				},
			}},
		}},
	}

	a := analyzer.Analyze(g)
	if _, ok := a.ResolvedLits[sync]; !ok {
		t.Fatalf("until's sync literal %q was never resolved", sync.Lit)
	}
}

func TestCollectCustomKeywordsEntersRuleCallArgsAndUntil(t *testing.T) {
	g := &model.Grammar{
		Name: "G",
		Rules: []*model.Rule{{
			Name: "main",
			Variants: []*model.Variant{{
				CutIndex: -1,
				Patterns: []model.Pattern{
					&model.RuleCall{
						Name: "separated",
						ValueArgs: []model.Pattern{
							&model.RuleCall{Name: "integer"},
							&model.Literal{Lit: "endkw"},
						},
					},
					&model.Until{Pattern: &model.Literal{Lit: "stopkw"}},
				},
			}},
		}},
	}

	kws := analyzer.CollectCustomKeywords(g)
	for _, want := range []string{"endkw", "stopkw"} {
		if !kws[want] {
			t.Errorf("custom keyword %q reachable only through a RuleCall arg or Until sync was not collected", want)
		}
	}
}

func TestFindIndirectLeftRecursionCyclesIgnoresNonLeftEdges(t *testing.T) {
	// a's first pattern calls b (left edge); b's *second* pattern calls a
	// back, a non-left-position reference that must not be reported as
	// indirect left recursion.
	g := &model.Grammar{
		Name: "G",
		Rules: []*model.Rule{
			{
				Name: "a",
				Variants: []*model.Variant{{
					CutIndex: -1,
					Patterns: []model.Pattern{&model.RuleCall{Name: "b"}},
				}},
			},
			{
				Name: "b",
				Variants: []*model.Variant{{
					CutIndex: -1,
					Patterns: []model.Pattern{
						&model.Literal{Lit: "x"},
						&model.RuleCall{Name: "a"},
					},
				}},
			},
		},
	}

	cg := analyzer.BuildCallGraph(g)
	cyclic := analyzer.FindIndirectLeftRecursionCycles(g, cg)
	if len(cyclic) != 0 {
		t.Fatalf("expected no indirect left recursion (b's call to a isn't in first position), got %v", cyclic)
	}
}

func TestFindIndirectLeftRecursionCyclesDetectsRealCycle(t *testing.T) {
	// a's first pattern calls b, b's first pattern calls a: a genuine
	// indirect left-recursion cycle.
	g := &model.Grammar{
		Name: "G",
		Rules: []*model.Rule{
			{
				Name: "a",
				Variants: []*model.Variant{{
					CutIndex: -1,
					Patterns: []model.Pattern{&model.RuleCall{Name: "b"}},
				}},
			},
			{
				Name: "b",
				Variants: []*model.Variant{{
					CutIndex: -1,
					Patterns: []model.Pattern{&model.RuleCall{Name: "a"}},
				}},
			},
		},
	}

	cg := analyzer.BuildCallGraph(g)
	cyclic := analyzer.FindIndirectLeftRecursionCycles(g, cg)
	if len(cyclic) == 0 {
		t.Fatal("expected a's first-position call chain back to itself through b to be reported")
	}
}
