package analyzer

import "github.com/funvibe/peggen/internal/model"

// LeftRecursionSplit partitions a rule's variants into directly
// left-recursive and base variants (spec §4.1.7).
type LeftRecursionSplit struct {
	Recursive []*model.Variant
	Base      []*model.Variant
}

// SplitLeftRecursive classifies each variant of rule by whether its first
// pattern is a RuleCall back to rule itself.
func SplitLeftRecursive(ruleName string, variants []*model.Variant) LeftRecursionSplit {
	var split LeftRecursionSplit
	for _, v := range variants {
		if len(v.Patterns) > 0 {
			if rc, ok := v.Patterns[0].(*model.RuleCall); ok && rc.Name == ruleName {
				split.Recursive = append(split.Recursive, v)
				continue
			}
		}
		split.Base = append(split.Base, v)
	}
	return split
}

// CallGraph maps a rule name to the set of rule names it calls directly,
// used both for indirect-left-recursion detection (spec §4.1.7) and for
// reference-graph / unused-rule analysis (spec §4.1.9).
type CallGraph map[string]map[string]bool

// BuildCallGraph walks every variant of every rule and records RuleCall
// targets.
func BuildCallGraph(g *model.Grammar) CallGraph {
	cg := CallGraph{}
	for _, r := range g.Rules {
		callees := map[string]bool{}
		for _, v := range r.Variants {
			collectCalls(v.Patterns, callees)
		}
		cg[r.Name] = callees
	}
	return cg
}

func collectCalls(patterns []model.Pattern, out map[string]bool) {
	for _, p := range patterns {
		switch n := p.(type) {
		case *model.RuleCall:
			out[n.Name] = true
			for _, a := range n.ValueArgs {
				collectCalls([]model.Pattern{a}, out)
			}
		case *model.Group:
			for _, alt := range n.Alternatives {
				collectCalls(alt, out)
			}
		case *model.Delimited:
			collectCalls(n.Inner, out)
		case *model.Optional:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.Repeat:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.Plus:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.SpanBinding:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.Recover:
			collectCalls([]model.Pattern{n.Body}, out)
			collectCalls([]model.Pattern{n.Sync}, out)
		case *model.Peek:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.Not:
			collectCalls([]model.Pattern{n.Inner}, out)
		case *model.Until:
			collectCalls([]model.Pattern{n.Pattern}, out)
		}
	}
}

// FindIndirectLeftRecursionCycles reports, for every rule whose first
// pattern calls another rule (not itself), any cycle of length > 1 back to
// that rule — spec §4.1.7: "Indirect left recursion across rules is
// reported as an error (cycle length > 1 in the reference graph)." The
// second parameter is unused for traversal (kept for call-site symmetry
// with the general CallGraph); the cycle search only ever follows
// left-edges, built separately, since a non-left-position call back to the
// origin isn't left recursion at all.
func FindIndirectLeftRecursionCycles(g *model.Grammar, cg CallGraph) []string {
	lg := buildLeftCallGraph(g)
	var cyclic []string
	for _, r := range g.Rules {
		for start := range lg[r.Name] {
			if start != r.Name && reaches(lg, start, r.Name, map[string]bool{}) {
				cyclic = append(cyclic, r.Name)
				break
			}
		}
	}
	return cyclic
}

// buildLeftCallGraph records, per rule, the set of callees reachable by
// following only each variant's first pattern when it is a RuleCall — the
// left-edge subset of the full call graph that left-recursion analysis
// must be restricted to.
func buildLeftCallGraph(g *model.Grammar) CallGraph {
	lg := CallGraph{}
	for _, r := range g.Rules {
		callees := map[string]bool{}
		for _, v := range r.Variants {
			if len(v.Patterns) == 0 {
				continue
			}
			if rc, ok := v.Patterns[0].(*model.RuleCall); ok {
				callees[rc.Name] = true
			}
		}
		lg[r.Name] = callees
	}
	return lg
}

func firstCalleeIfNotSelf(r *model.Rule) string {
	for _, v := range r.Variants {
		if len(v.Patterns) == 0 {
			continue
		}
		rc, ok := v.Patterns[0].(*model.RuleCall)
		if !ok || rc.Name == r.Name {
			continue
		}
		return rc.Name
	}
	return ""
}

// reaches is a bounded DFS over "first pattern is a RuleCall to X" edges,
// looking for a path from start back to target of length >= 1.
func reaches(cg CallGraph, start, target string, visited map[string]bool) bool {
	if visited[start] {
		return false
	}
	visited[start] = true
	for callee := range cg[start] {
		if callee == target {
			return true
		}
		if reaches(cg, callee, target, visited) {
			return true
		}
	}
	return false
}
