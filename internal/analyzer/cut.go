package analyzer

import "github.com/funvibe/peggen/internal/model"

// CutAnalysis is the result of splitting a pattern sequence at its Cut, if
// any (spec §4.1.6).
type CutAnalysis struct {
	PreCut, PostCut []model.Pattern
}

// FindCut returns the split of seq around its Cut pattern, or nil if seq
// has none. Variant.CutIndex is the precomputed top-level answer for a
// whole variant; FindCut additionally serves nested sequences such as a
// Group alternative's own patterns.
func FindCut(seq []model.Pattern) *CutAnalysis {
	for i, p := range seq {
		if _, ok := p.(*model.Cut); ok {
			return &CutAnalysis{PreCut: seq[:i], PostCut: seq[i+1:]}
		}
	}
	return nil
}
