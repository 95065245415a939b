package analyzer

import "github.com/funvibe/peggen/internal/model"

// IsNullable reports whether a pattern can match the empty sequence (spec
// §4.1.5).
func IsNullable(p model.Pattern) bool {
	switch n := p.(type) {
	case *model.Cut:
		return true
	case *model.RuleCall:
		return true
	case *model.Optional:
		return true
	case *model.Repeat:
		return true
	case *model.Plus:
		return IsNullable(n.Inner)
	case *model.SpanBinding:
		return IsNullable(n.Inner)
	case *model.Recover:
		return true
	case *model.Peek:
		return true
	case *model.Not:
		return true
	case *model.Group:
		for _, alt := range n.Alternatives {
			if SequenceNullable(alt) {
				return true
			}
		}
		return false
	case *model.Literal, *model.Delimited, *model.Until:
		return false
	default:
		return false
	}
}

// SequenceNullable reports whether every pattern in a sequence is nullable.
func SequenceNullable(seq []model.Pattern) bool {
	for _, p := range seq {
		if !IsNullable(p) {
			return false
		}
	}
	return true
}
