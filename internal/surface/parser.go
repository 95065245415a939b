package surface

import (
	"strconv"
	"strings"

	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/gast"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/token"
)

// Parser builds a *gast.Grammar from a grammar description's token stream.
// Mirrors a curToken/peekToken/expectPeek recursive-descent shape;
// there is no infix-precedence table here since the pattern grammar has no
// binary operators, only prefix/suffix pattern combinators.
type Parser struct {
	stream    pipeline.TokenStream
	curToken  token.Token
	peekToken token.Token
	ctx       *pipeline.PipelineContext
}

// NewParser creates a Parser reading from stream, reporting diagnostics on ctx.
func NewParser(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	peeked := p.stream.Peek(1)
	if len(peeked) > 0 {
		p.peekToken = peeked[0]
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
	p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, p.peekToken, t, p.peekToken.Type))
}

// ParseGrammar parses `grammar Name [: Parent] { rule* }`.
func (p *Parser) ParseGrammar() *gast.Grammar {
	if !p.curTokenIs(token.GRAMMAR) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, p.curToken, token.GRAMMAR, p.curToken.Type))
		return nil
	}
	start := gast.SpanOf(p.curToken)

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	g := &gast.Grammar{Name: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		g.ParentName = p.curToken.Lexeme
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		r := p.parseRule()
		if r != nil {
			g.Rules = append(g.Rules, r)
		} else {
			p.nextToken()
		}
	}
	g.Span = gast.Join(start, gast.SpanOf(p.curToken))
	return g
}

// parseRule parses `[pub] rule Name [<gp,...>] [(vp,...)] -> Type = variant (| variant)* ;`.
func (p *Parser) parseRule() *gast.Rule {
	start := gast.SpanOf(p.curToken)
	r := &gast.Rule{}

	if p.curTokenIs(token.PUB) {
		r.Public = true
		p.nextToken()
	}
	if !p.curTokenIs(token.RULE) {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, p.curToken, token.RULE, p.curToken.Type))
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	r.Name = p.curToken.Lexeme

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		r.GenericParams = p.parseGenericParams()
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		r.ValueParams = p.parseValueParams()
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	r.ReturnType = p.parseTypeExpr()

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	for {
		v := p.parseVariant()
		if v != nil {
			r.Variants = append(r.Variants, v)
		}
		if p.curTokenIs(token.PIPE) {
			p.nextToken()
			continue
		}
		break
	}
	if p.curTokenIs(token.SEMI) {
		p.nextToken()
	}
	r.Span = gast.Join(start, gast.SpanOf(p.curToken))
	return r
}

// parseGenericParams parses `T[: Bound] (, T[: Bound])*` after the opening `<`.
func (p *Parser) parseGenericParams() []gast.GenericParam {
	var params []gast.GenericParam
	p.nextToken()
	for !p.curTokenIs(token.GT) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP002, p.curToken, p.curToken.Lexeme))
			break
		}
		gp := gast.GenericParam{Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			gp.Bound = p.parseTypeExpr()
		}
		params = append(params, gp)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return params
}

// parseValueParams parses `name[: Type] (, name[: Type])*` after the opening `(`.
// A param with no Type is a pattern parameter (monomorphized per call site).
func (p *Parser) parseValueParams() []gast.ValueParam {
	var params []gast.ValueParam
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP002, p.curToken, p.curToken.Lexeme))
			break
		}
		vp := gast.ValueParam{Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			vp.Type = p.parseTypeExpr()
		}
		params = append(params, vp)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return params
}

// parseTypeExpr reads a raw host-type expression and advances curToken to
// its last token. Supports the shapes SPEC_FULL's generic/value-param
// extension needs: slice prefix `[]T`, pointer prefix `*T`, dotted names,
// and `<...>`-bracketed type arguments carried through verbatim.
func (p *Parser) parseTypeExpr() string {
	var b strings.Builder
	if p.curTokenIs(token.LBRACKET) && p.peekTokenIs(token.RBRACKET) {
		b.WriteString("[]")
		p.nextToken()
		p.nextToken()
	}
	if p.curTokenIs(token.STAR) {
		b.WriteString("*")
		p.nextToken()
	}
	b.WriteString(p.curToken.Lexeme)
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		b.WriteString(".")
		p.nextToken()
		b.WriteString(p.curToken.Lexeme)
	}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.nextToken()
		b.WriteString("<")
		first := true
		for !p.curTokenIs(token.GT) && !p.curTokenIs(token.EOF) {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(p.parseTypeExpr())
			first = false
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
			break
		}
		b.WriteString(">")
	}
	return b.String()
}

// parseVariant parses `pattern* [# "label"] -> { action }`.
func (p *Parser) parseVariant() *gast.Variant {
	start := gast.SpanOf(p.curToken)
	v := &gast.Variant{}

	for !p.curTokenIs(token.HASH) && !p.curTokenIs(token.ARROW) &&
		!p.curTokenIs(token.PIPE) && !p.curTokenIs(token.SEMI) && !p.curTokenIs(token.EOF) {
		pat := p.parsePattern()
		if pat == nil {
			p.nextToken()
			continue
		}
		v.Patterns = append(v.Patterns, pat)
	}

	if p.curTokenIs(token.HASH) {
		if !p.expectPeek(token.STRING) {
			return v
		}
		v.Label = p.curToken.Lexeme
		p.nextToken()
	}

	if p.curTokenIs(token.ARROW) {
		if !p.expectPeek(token.LBRACE) {
			return v
		}
		v.Action = p.parseActionExpr()
	}
	v.Span = gast.Join(start, gast.SpanOf(p.curToken))
	return v
}

// parseActionExpr reconstructs the host-language action body between a
// matched pair of braces. Balanced-brace token-text reconstruction rather
// than raw source slicing, since string literal tokens lose their exact
// source quoting once lexed; re-quoted with strconv.Quote on the way back
// out. go/format.Source normalizes whitespace at emission time regardless.
func (p *Parser) parseActionExpr() string {
	depth := 1
	p.nextToken()
	var parts []string
	for depth > 0 && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				p.nextToken()
				return strings.Join(parts, " ")
			}
		case token.STRING:
			parts = append(parts, strconv.Quote(p.curToken.Lexeme))
			p.nextToken()
			continue
		}
		parts = append(parts, p.curToken.Lexeme)
		p.nextToken()
	}
	return strings.Join(parts, " ")
}

// parsePattern parses one pattern atom, applying an optional leading
// binding and any trailing suffix combinators (?, *, +, @name).
func (p *Parser) parsePattern() gast.Pattern {
	start := gast.SpanOf(p.curToken)

	if p.curTokenIs(token.BANG) {
		p.nextToken()
		inner := p.parsePattern()
		if inner == nil {
			return nil
		}
		return gast.NewNot(gast.Join(start, inner.Span()), inner)
	}

	var binding string
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		binding = p.curToken.Lexeme
		p.nextToken()
		p.nextToken()
	}

	atom := p.parsePatternCore(start, binding)
	if atom == nil {
		return nil
	}
	return p.parseSuffixes(atom)
}

func (p *Parser) parseSuffixes(atom gast.Pattern) gast.Pattern {
	for {
		switch p.curToken.Type {
		case token.QUESTION:
			s := gast.Join(atom.Span(), gast.SpanOf(p.curToken))
			atom = gast.NewOptional(s, atom)
			p.nextToken()
		case token.STAR:
			s := gast.Join(atom.Span(), gast.SpanOf(p.curToken))
			atom = gast.NewRepeat(s, atom)
			p.nextToken()
		case token.PLUS:
			s := gast.Join(atom.Span(), gast.SpanOf(p.curToken))
			atom = gast.NewPlus(s, atom)
			p.nextToken()
		case token.AT:
			p.nextToken()
			name := p.curToken.Lexeme
			s := gast.Join(atom.Span(), gast.SpanOf(p.curToken))
			atom = gast.NewSpanBinding(s, atom, name)
			p.nextToken()
		default:
			return atom
		}
	}
}

// parsePatternCore parses the unsuffixed pattern forms: literal, rule call,
// group, delimited sub-stream, cut, peek/recover/until pseudo-calls.
func (p *Parser) parsePatternCore(start gast.Span, binding string) gast.Pattern {
	switch p.curToken.Type {
	case token.CUT:
		p.nextToken()
		return gast.NewCut(start)

	case token.STRING:
		lit := p.curToken.Lexeme
		p.nextToken()
		return gast.NewLiteral(start, binding, lit)

	case token.IDENT:
		name := p.curToken.Lexeme
		var typeArgs []string
		var valueArgs []gast.Pattern
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			typeArgs = p.parseTypeArgList()
		}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			valueArgs = p.parseValueArgList()
		}
		call := gast.NewRuleCall(gast.Join(start, gast.SpanOf(p.curToken)), binding, name, typeArgs, valueArgs)
		p.nextToken()
		return call

	case token.PAREN:
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		inner := p.parsePatternSeqUntil(token.RPAREN)
		if !p.curTokenIs(token.RPAREN) {
			p.peekError(token.RPAREN)
		} else {
			p.nextToken()
		}
		return gast.NewDelimited(start, gast.Parenthesized, inner)

	case token.LPAREN:
		p.nextToken()
		var alts [][]gast.Pattern
		alts = append(alts, p.parsePatternSeqUntilAny(token.RPAREN, token.PIPE))
		for p.curTokenIs(token.PIPE) {
			p.nextToken()
			alts = append(alts, p.parsePatternSeqUntilAny(token.RPAREN, token.PIPE))
		}
		if !p.curTokenIs(token.RPAREN) {
			p.peekError(token.RPAREN)
		} else {
			p.nextToken()
		}
		return gast.NewGroup(start, alts)

	case token.LBRACKET:
		p.nextToken()
		inner := p.parsePatternSeqUntil(token.RBRACKET)
		if !p.curTokenIs(token.RBRACKET) {
			p.peekError(token.RBRACKET)
		} else {
			p.nextToken()
		}
		return gast.NewDelimited(start, gast.Bracketed, inner)

	case token.LBRACE:
		p.nextToken()
		inner := p.parsePatternSeqUntil(token.RBRACE)
		if !p.curTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
		} else {
			p.nextToken()
		}
		return gast.NewDelimited(start, gast.Braced, inner)

	case token.PEEK:
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		p.nextToken()
		inner := p.parsePattern()
		if !p.curTokenIs(token.RPAREN) {
			p.peekError(token.RPAREN)
		} else {
			p.nextToken()
		}
		return gast.NewPeek(start, inner)

	case token.UNTIL:
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		p.nextToken()
		inner := p.parsePattern()
		if !p.curTokenIs(token.RPAREN) {
			p.peekError(token.RPAREN)
		} else {
			p.nextToken()
		}
		return gast.NewUntil(start, binding, inner)

	case token.RECOVER:
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		p.nextToken()
		body := p.parsePattern()
		if !p.curTokenIs(token.COMMA) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrM006, p.curToken, "expected ',' between body and sync pattern"))
		} else {
			p.nextToken()
		}
		sync := p.parsePattern()
		if !p.curTokenIs(token.RPAREN) {
			p.peekError(token.RPAREN)
		} else {
			p.nextToken()
		}
		return gast.NewRecover(start, binding, body, sync)

	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP004, p.curToken, p.curToken.Type))
		p.nextToken()
		return nil
	}
}

func (p *Parser) parsePatternSeqUntil(end token.TokenType) []gast.Pattern {
	var seq []gast.Pattern
	for !p.curTokenIs(end) && !p.curTokenIs(token.EOF) {
		pat := p.parsePattern()
		if pat == nil {
			break
		}
		seq = append(seq, pat)
	}
	return seq
}

func (p *Parser) parsePatternSeqUntilAny(ends ...token.TokenType) []gast.Pattern {
	var seq []gast.Pattern
	for !p.curTokenIs(token.EOF) {
		stop := false
		for _, e := range ends {
			if p.curTokenIs(e) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		pat := p.parsePattern()
		if pat == nil {
			break
		}
		seq = append(seq, pat)
	}
	return seq
}

func (p *Parser) parseTypeArgList() []string {
	var args []string
	p.nextToken()
	for !p.curTokenIs(token.GT) && !p.curTokenIs(token.EOF) {
		args = append(args, p.parseTypeExpr())
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return args
}

func (p *Parser) parseValueArgList() []gast.Pattern {
	var args []gast.Pattern
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		pat := p.parsePattern()
		if pat != nil {
			args = append(args, pat)
		}
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return args
}
