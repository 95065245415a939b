package analyzer

import "github.com/funvibe/peggen/internal/model"

// CollectBindings returns the ordered set of binding names a surrounding
// scope should see (spec §4.1.3). Surfaces from named RuleCall/Literal,
// SpanBinding, named Recover, and from Optional/Repeat/Plus applied to a
// binding-carrying inner. Not drops bindings entirely.
func CollectBindings(patterns []model.Pattern) []string {
	var out []string
	for _, p := range patterns {
		switch n := p.(type) {
		case *model.Literal:
			if n.HasBinding() {
				out = append(out, n.Binding)
			}
		case *model.RuleCall:
			if n.HasBinding() {
				out = append(out, n.Binding)
			}
		case *model.Repeat:
			out = append(out, CollectBindings([]model.Pattern{n.Inner})...)
		case *model.Plus:
			out = append(out, CollectBindings([]model.Pattern{n.Inner})...)
		case *model.Optional:
			out = append(out, CollectBindings([]model.Pattern{n.Inner})...)
		case *model.Delimited:
			out = append(out, CollectBindings(n.Inner)...)
		case *model.SpanBinding:
			out = append(out, n.SpanName)
			out = append(out, CollectBindings([]model.Pattern{n.Inner})...)
		case *model.Recover:
			if n.HasBinding() {
				out = append(out, n.Binding)
			} else {
				out = append(out, CollectBindings([]model.Pattern{n.Body})...)
			}
		case *model.Peek:
			out = append(out, CollectBindings([]model.Pattern{n.Inner})...)
		case *model.Group:
			for _, alt := range n.Alternatives {
				out = append(out, CollectBindings(alt)...)
			}
		case *model.Until:
			if n.HasBinding() {
				out = append(out, n.Binding)
			}
		// model.Cut, model.Not: never bind. Not drops bindings per spec §3.4/§4.1.3.
		}
	}
	return out
}
