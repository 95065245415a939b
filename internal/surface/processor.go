package surface

import (
	"github.com/funvibe/peggen/internal/diagnostics"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/token"
)

const lookaheadBufferSize = 10

type bufferedLexer struct {
	l      *Lexer
	buffer []token.Token
	pos    int
}

func newBufferedLexer(l *Lexer) *bufferedLexer {
	return &bufferedLexer{l: l}
}

func (bl *bufferedLexer) Next() token.Token {
	if bl.pos < len(bl.buffer) {
		tok := bl.buffer[bl.pos]
		bl.pos++
		return tok
	}
	return bl.l.NextToken()
}

func (bl *bufferedLexer) Peek(n int) []token.Token {
	if len(bl.buffer)-bl.pos == 0 {
		bl.buffer = append(bl.buffer, bl.l.NextToken())
	}
	for len(bl.buffer)-bl.pos < n {
		next := bl.buffer[len(bl.buffer)-1]
		if next.Type == token.EOF {
			break
		}
		bl.buffer = append(bl.buffer, bl.l.NextToken())
	}
	if bl.pos > lookaheadBufferSize {
		bl.buffer = bl.buffer[bl.pos:]
		bl.pos = 0
	}
	end := bl.pos + n
	if end > len(bl.buffer) {
		end = len(bl.buffer)
	}
	return bl.buffer[bl.pos:end]
}

var _ pipeline.TokenStream = (*bufferedLexer)(nil)

// LexerProcessor wraps the source code in a buffered token stream.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = newBufferedLexer(New(ctx.SourceCode))
	return ctx
}

// ParserProcessor consumes the token stream and builds the grammar AST.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "token stream", "nil"))
		return ctx
	}
	p := NewParser(ctx.TokenStream, ctx)
	ctx.AstRoot = p.ParseGrammar()
	return ctx
}
