package analyzer

import (
	"fmt"
	"unicode"

	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/token"
)

// TokenTypeRef is one element of a resolved literal's token-type sequence
// (spec §4.1.2). Kind distinguishes a custom keyword, a host keyword/ident,
// or a single punctuation character so the emitter can pick the right
// pegrt parse call.
type TokenTypeRef struct {
	Kind    TokenRefKind
	Keyword string // set when Kind == KindKeyword or KindCustomKeyword
	Punct   byte   // set when Kind == KindPunct
}

type TokenRefKind int

const (
	KindCustomKeyword TokenRefKind = iota
	KindHostKeyword
	KindPunct
)

// ResolveLiteral expands a literal string into its token-type sequence
// (spec §4.1.2). Rejects bare delimiter characters, bare booleans, and
// leading-digit strings.
func ResolveLiteral(lit string, tok token.Token, customKeywords map[string]bool) ([]TokenTypeRef, *diagnostics.DiagnosticError) {
	if customKeywords[lit] {
		return []TokenTypeRef{{Kind: KindCustomKeyword, Keyword: lit}}, nil
	}

	switch lit {
	case "(", ")", "[", "]", "{", "}":
		return nil, diagnostics.NewError(diagnostics.ErrM005, tok, lit,
			"use bracketed/braced/parenthesized shapes instead of a bare delimiter literal")
	case "true", "false":
		return nil, diagnostics.NewError(diagnostics.ErrM005, tok, lit,
			"use the lit_bool primitive instead of a bare boolean literal")
	}
	if len(lit) > 0 && unicode.IsDigit(rune(lit[0])) {
		return nil, diagnostics.NewError(diagnostics.ErrM005, tok, lit,
			"use the integer/lit_int primitives instead of a leading-digit literal")
	}

	toks := tokenizeLiteral(lit)
	if len(toks) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrM005, tok, lit, "empty literal is not supported")
	}

	refs := make([]TokenTypeRef, 0, len(toks))
	for _, t := range toks {
		if isIdentToken(t) {
			if customKeywords[t] {
				refs = append(refs, TokenTypeRef{Kind: KindCustomKeyword, Keyword: t})
			} else {
				refs = append(refs, TokenTypeRef{Kind: KindHostKeyword, Keyword: t})
			}
			continue
		}
		if len(t) != 1 {
			return nil, diagnostics.NewError(diagnostics.ErrM005, tok, lit,
				fmt.Sprintf("unsupported multi-byte punctuation %q", t))
		}
		refs = append(refs, TokenTypeRef{Kind: KindPunct, Punct: t[0]})
	}
	return refs, nil
}
