package gast

// Constructors for the sealed Pattern variants. internal/surface builds
// gast nodes exclusively through these — the base{} field that implements
// patternNode() stays unexported so nothing outside this package can
// fabricate a Pattern that skips the closed-sum guarantee.

func NewCut(s Span) *Cut { return &Cut{base{s}} }

func NewLiteral(s Span, binding, lit string) *Literal {
	return &Literal{base{s}, binding, lit}
}

func NewRuleCall(s Span, binding, name string, typeArgs []string, valueArgs []Pattern) *RuleCall {
	return &RuleCall{base{s}, binding, name, typeArgs, valueArgs}
}

func NewGroup(s Span, alternatives [][]Pattern) *Group {
	return &Group{base{s}, alternatives}
}

func NewDelimited(s Span, kind DelimKind, inner []Pattern) *Delimited {
	return &Delimited{base{s}, kind, inner}
}

func NewOptional(s Span, inner Pattern) *Optional { return &Optional{base{s}, inner} }

func NewRepeat(s Span, inner Pattern) *Repeat { return &Repeat{base{s}, inner} }

func NewPlus(s Span, inner Pattern) *Plus { return &Plus{base{s}, inner} }

func NewSpanBinding(s Span, inner Pattern, spanName string) *SpanBinding {
	return &SpanBinding{base{s}, inner, spanName}
}

func NewRecover(s Span, binding string, body, sync Pattern) *Recover {
	return &Recover{base{s}, binding, body, sync}
}

func NewPeek(s Span, inner Pattern) *Peek { return &Peek{base{s}, inner} }

func NewNot(s Span, inner Pattern) *Not { return &Not{base{s}, inner} }

func NewUntil(s Span, binding string, pattern Pattern) *Until {
	return &Until{base{s}, binding, pattern}
}
