package monomorphize

import (
	"fmt"
	"strings"

	"github.com/funvibe/peggen/internal/model"
)

// repr renders a structural, Debug-like textual form of a pattern, used as
// the monomorphization cache key: hashing this text distinguishes
// instantiations by the shape of their argument patterns.
func repr(p model.Pattern) string {
	switch n := p.(type) {
	case *model.Cut:
		return "Cut"
	case *model.Literal:
		return fmt.Sprintf("Literal(%s,%q)", n.Binding, n.Lit)
	case *model.RuleCall:
		args := make([]string, len(n.ValueArgs))
		for i, a := range n.ValueArgs {
			args[i] = repr(a)
		}
		return fmt.Sprintf("RuleCall(%s,%s,[%s],[%s])", n.Binding, n.Name, strings.Join(n.TypeArgs, ","), strings.Join(args, ","))
	case *model.Group:
		alts := make([]string, len(n.Alternatives))
		for i, alt := range n.Alternatives {
			alts[i] = reprSeq(alt)
		}
		return fmt.Sprintf("Group[%s]", strings.Join(alts, "|"))
	case *model.Delimited:
		return fmt.Sprintf("Delimited(%d,%s)", n.Kind, reprSeq(n.Inner))
	case *model.Optional:
		return fmt.Sprintf("Optional(%s)", repr(n.Inner))
	case *model.Repeat:
		return fmt.Sprintf("Repeat(%s)", repr(n.Inner))
	case *model.Plus:
		return fmt.Sprintf("Plus(%s)", repr(n.Inner))
	case *model.SpanBinding:
		return fmt.Sprintf("SpanBinding(%s,%s)", n.SpanName, repr(n.Inner))
	case *model.Recover:
		return fmt.Sprintf("Recover(%s,%s,%s)", n.Binding, repr(n.Body), repr(n.Sync))
	case *model.Peek:
		return fmt.Sprintf("Peek(%s)", repr(n.Inner))
	case *model.Not:
		return fmt.Sprintf("Not(%s)", repr(n.Inner))
	case *model.Until:
		return fmt.Sprintf("Until(%s,%s)", n.Binding, repr(n.Pattern))
	default:
		return "Unknown"
	}
}

func reprSeq(seq []model.Pattern) string {
	parts := make([]string, len(seq))
	for i, p := range seq {
		parts[i] = repr(p)
	}
	return strings.Join(parts, ";")
}
