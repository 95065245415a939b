package monomorphize

import "github.com/funvibe/peggen/internal/model"

// substituteParams replaces every RuleCall referencing a pattern-parameter
// name with a clone of the argument pattern bound to it, threading any
// existing binding on the call site onto the substituted pattern if the
// argument itself didn't already bind one.
func substituteParams(p model.Pattern, paramMap map[string]model.Pattern) model.Pattern {
	switch n := p.(type) {
	case *model.RuleCall:
		if replacement, ok := paramMap[n.Name]; ok {
			cloned := clonePattern(replacement)
			if n.Binding != "" {
				switch r := cloned.(type) {
				case *model.RuleCall:
					if r.Binding == "" {
						r.Binding = n.Binding
					}
				case *model.Recover:
					if r.Binding == "" {
						r.Binding = n.Binding
					}
				case *model.Literal:
					if r.Binding == "" {
						r.Binding = n.Binding
					}
				case *model.Until:
					if r.Binding == "" {
						r.Binding = n.Binding
					}
				}
			}
			return cloned
		}
		for i, a := range n.ValueArgs {
			n.ValueArgs[i] = substituteParams(a, paramMap)
		}
		return n
	case *model.Group:
		for _, alt := range n.Alternatives {
			for i, sub := range alt {
				alt[i] = substituteParams(sub, paramMap)
			}
		}
		return n
	case *model.Delimited:
		for i, sub := range n.Inner {
			n.Inner[i] = substituteParams(sub, paramMap)
		}
		return n
	case *model.Optional:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.Repeat:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.Plus:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.SpanBinding:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.Peek:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.Not:
		n.Inner = substituteParams(n.Inner, paramMap)
		return n
	case *model.Recover:
		n.Body = substituteParams(n.Body, paramMap)
		n.Sync = substituteParams(n.Sync, paramMap)
		return n
	default:
		return p
	}
}

// clonePattern deep-copies a pattern tree, since the same argument pattern
// can be spliced into a template body at more than one call site.
func clonePattern(p model.Pattern) model.Pattern {
	switch n := p.(type) {
	case *model.Cut:
		c := *n
		return &c
	case *model.Literal:
		c := *n
		return &c
	case *model.RuleCall:
		c := *n
		c.ValueArgs = make([]model.Pattern, len(n.ValueArgs))
		for i, a := range n.ValueArgs {
			c.ValueArgs[i] = clonePattern(a)
		}
		return &c
	case *model.Group:
		c := *n
		c.Alternatives = make([][]model.Pattern, len(n.Alternatives))
		for i, alt := range n.Alternatives {
			seq := make([]model.Pattern, len(alt))
			for j, p := range alt {
				seq[j] = clonePattern(p)
			}
			c.Alternatives[i] = seq
		}
		return &c
	case *model.Delimited:
		c := *n
		c.Inner = make([]model.Pattern, len(n.Inner))
		for i, sub := range n.Inner {
			c.Inner[i] = clonePattern(sub)
		}
		return &c
	case *model.Optional:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.Repeat:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.Plus:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.SpanBinding:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.Peek:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.Not:
		c := *n
		c.Inner = clonePattern(n.Inner)
		return &c
	case *model.Recover:
		c := *n
		c.Body = clonePattern(n.Body)
		c.Sync = clonePattern(n.Sync)
		return &c
	case *model.Until:
		c := *n
		c.Pattern = clonePattern(n.Pattern)
		return &c
	default:
		return p
	}
}

func cloneRule(r *model.Rule) *model.Rule {
	nr := &model.Rule{
		Public:        r.Public,
		Name:          r.Name,
		GenericParams: append([]model.GenericParam(nil), r.GenericParams...),
		ValueParams:   append([]model.ValueParam(nil), r.ValueParams...),
		ReturnType:    r.ReturnType,
		Span:          r.Span,
		IsTemplate:    r.IsTemplate,
	}
	nr.Variants = make([]*model.Variant, len(r.Variants))
	for i, v := range r.Variants {
		nv := &model.Variant{
			Action:   v.Action,
			Label:    v.Label,
			Span:     v.Span,
			CutIndex: v.CutIndex,
		}
		nv.Patterns = make([]model.Pattern, len(v.Patterns))
		for j, p := range v.Patterns {
			nv.Patterns[j] = clonePattern(p)
		}
		nr.Variants[i] = nv
	}
	return nr
}

// substituteType textually replaces a bare type-parameter name with its
// inferred concrete type. Without a Go type-expression parser, return
// types here are opaque passthrough strings (SPEC_FULL's generic-bound
// feature), so substitution applies only when the whole return type is
// exactly a type-parameter name; a parameter inside a composite type such
// as []T or *T is left as written.
func substituteType(ty string, typeMap map[string]string) string {
	if replacement, ok := typeMap[ty]; ok {
		return replacement
	}
	return ty
}
