package analyzer

import "github.com/funvibe/peggen/internal/model"

// ShadowWarning records that variants i and j (i < j) of a rule start with
// the same simple-peek token (spec §4.1.8).
type ShadowWarning struct {
	RuleName   string
	ShadowedBy int // i
	Shadowed   int // j
}

// CheckShadowing compares the leading simple-peek token of every pair of a
// rule's variants (i < j) and reports each pair that shares it. Only that
// first token is compared: two variants with the same leading token are
// reported even when their later patterns differ. A variant with no simple
// peek (a leading RuleCall or multi-alternative Group) is never compared.
func CheckShadowing(ruleName string, variants []*model.Variant, resolved map[*model.Literal][]TokenTypeRef) []ShadowWarning {
	var warnings []ShadowWarning
	for i := 0; i < len(variants); i++ {
		pi := GetSequencePeek(variants[i].Patterns, resolved)
		if !pi.Known {
			continue
		}
		for j := i + 1; j < len(variants); j++ {
			pj := GetSequencePeek(variants[j].Patterns, resolved)
			if pj.Known && sameRef(pi.Ref, pj.Ref) {
				warnings = append(warnings, ShadowWarning{RuleName: ruleName, ShadowedBy: i, Shadowed: j})
			}
		}
	}
	return warnings
}

func sameRef(a, b TokenTypeRef) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPunct:
		return a.Punct == b.Punct
	default:
		return a.Keyword == b.Keyword
	}
}
