package analyzer

import (
	"strings"
	"unicode"

	"github.com/funvibe/peggen/internal/config"
	"github.com/funvibe/peggen/internal/model"
)

// CollectCustomKeywords walks every Literal pattern in the grammar and
// tokenizes its string payload, recording every identifier token that is
// neither a reserved host keyword nor the wildcard symbol (spec §4.1.1).
func CollectCustomKeywords(g *model.Grammar) map[string]bool {
	kws := map[string]bool{}
	for _, r := range g.Rules {
		for _, v := range r.Variants {
			collectFromPatterns(v.Patterns, kws)
		}
	}
	return kws
}

func collectFromPatterns(patterns []model.Pattern, kws map[string]bool) {
	for _, p := range patterns {
		switch n := p.(type) {
		case *model.Literal:
			for _, tok := range tokenizeLiteral(n.Lit) {
				if isIdentToken(tok) && tok != config.WildcardSymbol && !config.ReservedHostKeywords[tok] {
					kws[tok] = true
				}
			}
		case *model.Group:
			for _, alt := range n.Alternatives {
				collectFromPatterns(alt, kws)
			}
		case *model.Delimited:
			collectFromPatterns(n.Inner, kws)
		case *model.Optional:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.Repeat:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.Plus:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.SpanBinding:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.Recover:
			collectFromPatterns([]model.Pattern{n.Body}, kws)
			collectFromPatterns([]model.Pattern{n.Sync}, kws)
		case *model.Peek:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.Not:
			collectFromPatterns([]model.Pattern{n.Inner}, kws)
		case *model.RuleCall:
			collectFromPatterns(n.ValueArgs, kws)
		case *model.Until:
			collectFromPatterns([]model.Pattern{n.Pattern}, kws)
		}
	}
}

// tokenizeLiteral splits a literal's raw string payload into a sequence of
// single-character punctuation tokens and maximal identifier runs, mirroring
// what a real host tokenizer would produce for the same text (spec §4.1.2:
// "A literal may thus expand to a sequence of adjacent tokens").
func tokenizeLiteral(s string) []string {
	var toks []string
	i := 0
	for i < len(s) {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentCont(rune(s[j])) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			toks = append(toks, string(c))
			i++
		}
	}
	return toks
}

func isIdentStart(c rune) bool { return unicode.IsLetter(c) || c == '_' }
func isIdentCont(c rune) bool  { return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' }

func isIdentToken(tok string) bool {
	if tok == "" {
		return false
	}
	if !isIdentStart(rune(tok[0])) {
		return false
	}
	return strings.IndexFunc(tok, func(r rune) bool { return !isIdentCont(r) }) == -1
}
