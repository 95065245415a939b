// Package gast is the grammar description language's abstract syntax tree —
// spec §2's "Grammar AST (external collaborator output)". It is produced by
// internal/surface (a minimal recursive-descent reader for the DSL in spec
// §6) and consumed by internal/model's AST→model conversion pass. Nothing
// here is normalized yet: patterns still carry raw literal text and
// unresolved rule-call argument lists exactly as written.
package gast

import "github.com/funvibe/peggen/internal/token"

// Span is a half-open source range, preserved end-to-end for diagnostics
// (spec §3.4: "Every pattern carries a source span for diagnostics").
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

func SpanOf(tok token.Token) Span {
	return Span{StartLine: tok.Line, StartCol: tok.Column, EndLine: tok.Line, EndCol: tok.Column + len(tok.Lexeme)}
}

func Join(a, b Span) Span {
	return Span{StartLine: a.StartLine, StartCol: a.StartCol, EndLine: b.EndLine, EndCol: b.EndCol}
}

// Grammar is the root node: `grammar Name [: Parent] { rule* }` (spec §6).
type Grammar struct {
	Name       string
	ParentName string // "" if absent
	Rules      []*Rule
	Span       Span
}

// GenericParam is a rule's generic type parameter, with an optional
// `where`-style bound (SPEC_FULL supplemental feature; spec §4.2 step (d)
// mentions substituting into the "where-clause").
type GenericParam struct {
	Name  string
	Bound string // "" if unbounded
}

// ValueParam is one of a rule's grammar parameters (spec §3.2). An empty
// Type marks an untyped *pattern parameter*, replaced structurally at
// monomorphization time rather than carried as a runtime value.
type ValueParam struct {
	Name string
	Type string // "" => pattern parameter
}

// Rule is `[pub] rule Name [<T>] [(params)] -> ReturnType = variant (| variant)*`.
type Rule struct {
	Public        bool
	Name          string
	GenericParams []GenericParam
	ValueParams   []ValueParam
	ReturnType    string
	Variants      []*Variant
	Span          Span
}

// Variant is one `pattern* [# "label"] -> { action }` alternative.
type Variant struct {
	Patterns []Pattern
	Action   string // opaque action expression block, emitted verbatim
	Label    string // "" if absent
	Span     Span
}

// Pattern is the closed sum described in spec §3.4. It is implemented as a
// sealed interface (spec §9: "implement as a closed sum type; avoid open
// inheritance") rather than an open class hierarchy.
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
	Binding string // "" if unbound
	Lit     string // raw string payload, not yet tokenized
}

type RuleCall struct {
	base
	Binding   string
	Name      string
	TypeArgs  []string
	ValueArgs []Pattern
}

// Group is ordered choice among alternative sequences (spec §3.4); each
// alternative is itself a sequence of patterns, no delimiter consumed.
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
