package analyzer

import "github.com/funvibe/peggen/internal/model"

// FindUnused reports rules unreachable from any public rule or from the
// conventional entry rule named "main", excluding rules whose name begins
// with "_" (spec §4.1.9).
func FindUnused(g *model.Grammar, cg CallGraph) []string {
	reachable := map[string]bool{}
	var stack []string
	for _, r := range g.Rules {
		if r.Public || r.Name == "main" {
			if !reachable[r.Name] {
				reachable[r.Name] = true
				stack = append(stack, r.Name)
			}
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for callee := range cg[n] {
			if !reachable[callee] {
				reachable[callee] = true
				stack = append(stack, callee)
			}
		}
	}

	var unused []string
	for _, r := range g.Rules {
		if reachable[r.Name] {
			continue
		}
		if len(r.Name) > 0 && r.Name[0] == '_' {
			continue
		}
		unused = append(unused, r.Name)
	}
	return unused
}
