package model

import (
	"fmt"

	"github.com/funvibe/peggen/internal/gast"
)

// Convert normalizes a parsed grammar AST into the semantic model: mostly
// a structural copy, plus the two values that are genuinely derived rather
// than copied (Rule.IsTemplate, Variant.CutIndex).
func Convert(g *gast.Grammar) (*Grammar, error) {
	out := &Grammar{Name: g.Name, ParentName: g.ParentName}
	seen := map[string]bool{}
	for _, r := range g.Rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule: %q", r.Name)
		}
		seen[r.Name] = true
		mr, err := convertRule(r)
		if err != nil {
			return nil, err
		}
		out.Rules = append(out.Rules, mr)
	}
	return out, nil
}

// Flatten merges a parent grammar's rules under the child, with the
// child's rules shadowing the parent's by name; a deliberate design
// decision recorded in SPEC_FULL.md.
func (g *Grammar) Flatten(parent *Grammar) *Grammar {
	if parent == nil {
		return g
	}
	childNames := map[string]bool{}
	for _, r := range g.Rules {
		childNames[r.Name] = true
	}
	merged := &Grammar{Name: g.Name, ParentName: g.ParentName}
	for _, r := range parent.Rules {
		if !childNames[r.Name] {
			merged.Rules = append(merged.Rules, r)
		}
	}
	merged.Rules = append(merged.Rules, g.Rules...)
	return merged
}

func convertRule(r *gast.Rule) (*Rule, error) {
	genParams := make([]GenericParam, 0, len(r.GenericParams))
	for _, gp := range r.GenericParams {
		genParams = append(genParams, GenericParam{Name: gp.Name, Bound: gp.Bound})
	}
	valParams := make([]ValueParam, 0, len(r.ValueParams))
	hasUntyped := false
	for _, vp := range r.ValueParams {
		valParams = append(valParams, ValueParam{Name: vp.Name, Type: vp.Type})
		if vp.Type == "" {
			hasUntyped = true
		}
	}

	variants := make([]*Variant, 0, len(r.Variants))
	for _, v := range r.Variants {
		mv, err := convertVariant(v)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		variants = append(variants, mv)
	}

	return &Rule{
		Public:        r.Public,
		Name:          r.Name,
		GenericParams: genParams,
		ValueParams:   valParams,
		ReturnType:    r.ReturnType,
		Variants:      variants,
		Span:          r.Span,
		IsTemplate:    len(genParams) > 0 || hasUntyped,
	}, nil
}

func convertVariant(v *gast.Variant) (*Variant, error) {
	patterns := make([]Pattern, 0, len(v.Patterns))
	cutIndex := -1
	for i, p := range v.Patterns {
		if _, ok := p.(*gast.Cut); ok {
			if cutIndex >= 0 {
				return nil, fmt.Errorf("more than one cut in a single variant")
			}
			cutIndex = i
		}
		patterns = append(patterns, convertPattern(p))
	}
	return &Variant{
		Patterns: patterns,
		Action:   v.Action,
		Label:    v.Label,
		Span:     v.Span,
		CutIndex: cutIndex,
	}, nil
}

func convertPattern(p gast.Pattern) Pattern {
	switch n := p.(type) {
	case *gast.Cut:
		return &Cut{base{n.Span()}}
	case *gast.Literal:
		return &Literal{base{n.Span()}, n.Binding, n.Lit}
	case *gast.RuleCall:
		args := make([]Pattern, 0, len(n.ValueArgs))
		for _, a := range n.ValueArgs {
			args = append(args, convertPattern(a))
		}
		types := append([]string(nil), n.TypeArgs...)
		return &RuleCall{base{n.Span()}, n.Binding, n.Name, types, args}
	case *gast.Group:
		alts := make([][]Pattern, 0, len(n.Alternatives))
		for _, alt := range n.Alternatives {
			seq := make([]Pattern, 0, len(alt))
			for _, sp := range alt {
				seq = append(seq, convertPattern(sp))
			}
			alts = append(alts, seq)
		}
		return &Group{base{n.Span()}, alts}
	case *gast.Delimited:
		inner := make([]Pattern, 0, len(n.Inner))
		for _, sp := range n.Inner {
			inner = append(inner, convertPattern(sp))
		}
		return &Delimited{base{n.Span()}, DelimKind(n.Kind), inner}
	case *gast.Optional:
		return &Optional{base{n.Span()}, convertPattern(n.Inner)}
	case *gast.Repeat:
		return &Repeat{base{n.Span()}, convertPattern(n.Inner)}
	case *gast.Plus:
		return &Plus{base{n.Span()}, convertPattern(n.Inner)}
	case *gast.SpanBinding:
		return &SpanBinding{base{n.Span()}, convertPattern(n.Inner), n.SpanName}
	case *gast.Recover:
		return &Recover{base{n.Span()}, n.Binding, convertPattern(n.Body), convertPattern(n.Sync)}
	case *gast.Peek:
		return &Peek{base{n.Span()}, convertPattern(n.Inner)}
	case *gast.Not:
		return &Not{base{n.Span()}, convertPattern(n.Inner)}
	case *gast.Until:
		return &Until{base{n.Span()}, n.Binding, convertPattern(n.Pattern)}
	default:
		panic(fmt.Sprintf("model.convertPattern: unhandled pattern node %T", p))
	}
}
