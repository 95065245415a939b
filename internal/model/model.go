// Package model is the normalized semantic model spec §3 describes: a
// backend-agnostic mirror of the grammar AST with patterns in an enumerated
// form, spans preserved, and a handful of values precomputed once at
// conversion time (whether a rule is a template, where a variant's cut
// sits) so the analyzer (§4.1), monomorphizer (§4.2), and emitter (§4.3)
// never have to re-derive them from raw AST shape.
package model

import "github.com/funvibe/peggen/internal/gast"

type Span = gast.Span

// Grammar mirrors spec §3.1.
type Grammar struct {
	Name       string
	ParentName string
	Rules      []*Rule
}

// RuleByName is a convenience lookup used by the emitter.
func (g *Grammar) RuleByName(name string) *Rule {
	for _, r := range g.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// GenericParam mirrors gast.GenericParam.
type GenericParam struct {
	Name  string
	Bound string
}

// ValueParam mirrors spec §3.2: an empty Type marks a pattern parameter.
type ValueParam struct {
	Name string
	Type string
}

func (p ValueParam) IsPatternParam() bool { return p.Type == "" }

// Rule mirrors spec §3.2. IsTemplate is precomputed: "a rule is a
// 'template' iff it has any generic type parameter or any untyped value
// parameter; templates are not emitted directly — only their instantiations
// are" (spec §3.2 invariant).
type Rule struct {
	Public        bool
	Name          string
	GenericParams []GenericParam
	ValueParams   []ValueParam
	ReturnType    string
	Variants      []*Variant
	Span          Span
	IsTemplate    bool
}

// Variant mirrors spec §3.3. CutIndex is -1 when the variant has no cut.
type Variant struct {
	Patterns []Pattern
	Action   string
	Label    string
	Span     Span
	CutIndex int
}

func (v *Variant) HasCut() bool { return v.CutIndex >= 0 }

// Pattern is the closed sum from spec §3.4, identical in shape to
// gast.Pattern — kept as a distinct type so every downstream pass only
// needs to import model, not gast, and so normalization (e.g. resolving
// CutIndex once) has somewhere to live that isn't re-run per pass.
type Pattern interface {
	patternNode()
	Span() Span
}

type base struct{ S Span }

func (base) patternNode() {}
func (b base) Span() Span { return b.S }

type Cut struct{ base }

type Literal struct {
	base
	Binding string
	Lit     string
}

func (l *Literal) HasBinding() bool { return l.Binding != "" }

type RuleCall struct {
	base
	Binding   string
	Name      string
	TypeArgs  []string
	ValueArgs []Pattern
}

func (r *RuleCall) HasBinding() bool { return r.Binding != "" }

type Group struct {
	base
	Alternatives [][]Pattern
}

type DelimKind int

const (
	Bracketed DelimKind = iota
	Braced
	Parenthesized
)

type Delimited struct {
	base
	Kind  DelimKind
	Inner []Pattern
}

type Optional struct {
	base
	Inner Pattern
}

type Repeat struct {
	base
	Inner Pattern
}

type Plus struct {
	base
	Inner Pattern
}

type SpanBinding struct {
	base
	Inner    Pattern
	SpanName string
}

type Recover struct {
	base
	Binding string
	Body    Pattern
	Sync    Pattern
}

func (r *Recover) HasBinding() bool { return r.Binding != "" }

type Peek struct {
	base
	Inner Pattern
}

type Not struct {
	base
	Inner Pattern
}

type Until struct {
	base
	Binding string
	Pattern Pattern
}

func (u *Until) HasBinding() bool { return u.Binding != "" }
