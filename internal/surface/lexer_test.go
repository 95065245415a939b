package surface_test

import (
	"testing"

	"github.com/funvibe/peggen/internal/surface"
	"github.com/funvibe/peggen/internal/token"
)

func TestLexerTokens(t *testing.T) {
	input := `grammar Expr {
  pub rule main() -> i64 = n:integer -> { n } ;
  rule atom -> i64 = "(" e:main ")" -> { e } | peek(integer) n:integer -> { n } ;
}`

	expected := []token.TokenType{
		token.GRAMMAR, token.IDENT, token.LBRACE,
		token.PUB, token.RULE, token.IDENT, token.LPAREN, token.RPAREN, token.ARROW, token.IDENT, token.ASSIGN,
		token.IDENT, token.COLON, token.IDENT, token.ARROW, token.LBRACE, token.IDENT, token.RBRACE, token.SEMI,
		token.RULE, token.IDENT, token.ARROW, token.IDENT, token.ASSIGN,
		token.STRING, token.IDENT, token.COLON, token.IDENT, token.STRING, token.ARROW, token.LBRACE, token.IDENT, token.RBRACE,
		token.PIPE,
		token.PEEK, token.LPAREN, token.IDENT, token.RPAREN,
		token.IDENT, token.COLON, token.IDENT, token.ARROW, token.LBRACE, token.IDENT, token.RBRACE, token.SEMI,
		token.RBRACE,
		token.EOF,
	}

	l := surface.New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Lexeme, want)
		}
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	l := surface.New("grammar X { // a comment\n}")
	var got []token.TokenType
	for {
		tok := l.NextToken()
		got = append(got, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	want := []token.TokenType{token.GRAMMAR, token.IDENT, token.LBRACE, token.RBRACE, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := surface.New(`"a\"b"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("got %s, want STRING", tok.Type)
	}
	if tok.Lexeme != `a\"b` {
		t.Fatalf("got %q", tok.Lexeme)
	}
}
