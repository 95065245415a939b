package analyzer

import "github.com/funvibe/peggen/internal/model"

// SimplePeek is the statically-known first token class of a pattern (spec
// §4.1.4), or Known == false when none can be determined.
type SimplePeek struct {
	Known bool
	Ref   TokenTypeRef // valid only when Known
}

// GetSimplePeek resolves a pattern's first-token class, delegating through
// wrapper patterns as spec §4.1.4 describes. Literal first-sets require the
// already-resolved literal token types, since a literal's first token
// depends on keyword/punctuation resolution (spec §4.1.2).
func GetSimplePeek(p model.Pattern, resolved map[*model.Literal][]TokenTypeRef) SimplePeek {
	switch n := p.(type) {
	case *model.Literal:
		refs := resolved[n]
		if len(refs) == 0 {
			return SimplePeek{}
		}
		return SimplePeek{Known: true, Ref: refs[0]}
	case *model.Delimited:
		switch n.Kind {
		case model.Bracketed:
			return SimplePeek{Known: true, Ref: TokenTypeRef{Kind: KindPunct, Punct: '['}}
		case model.Braced:
			return SimplePeek{Known: true, Ref: TokenTypeRef{Kind: KindPunct, Punct: '{'}}
		default:
			return SimplePeek{Known: true, Ref: TokenTypeRef{Kind: KindPunct, Punct: '('}}
		}
	case *model.Optional:
		return GetSimplePeek(n.Inner, resolved)
	case *model.Repeat:
		return GetSimplePeek(n.Inner, resolved)
	case *model.Plus:
		return GetSimplePeek(n.Inner, resolved)
	case *model.SpanBinding:
		return GetSimplePeek(n.Inner, resolved)
	case *model.Recover:
		return GetSimplePeek(n.Body, resolved)
	case *model.Peek:
		return GetSimplePeek(n.Inner, resolved)
	case *model.Group:
		if len(n.Alternatives) == 1 && len(n.Alternatives[0]) > 0 {
			return GetSimplePeek(n.Alternatives[0][0], resolved)
		}
		return SimplePeek{}
	// model.RuleCall, multi-alternative model.Group, model.Not, model.Cut, model.Until: no simple peek.
	default:
		return SimplePeek{}
	}
}

// GetSequencePeek returns the first pattern's simple peek for a sequence,
// the usual way dispatch decisions are made (spec §4.3.2/§4.3.3).
func GetSequencePeek(seq []model.Pattern, resolved map[*model.Literal][]TokenTypeRef) SimplePeek {
	if len(seq) == 0 {
		return SimplePeek{}
	}
	return GetSimplePeek(seq[0], resolved)
}
