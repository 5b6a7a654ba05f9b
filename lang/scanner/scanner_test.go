package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svetlins/glox/lang/scanner"
	"github.com/svetlins/glox/lang/token"
)

// scanAll tokenizes src and returns every token up to and including EOF.
func scanAll(src string) []token.Token {
	var s scanner.Scanner
	s.Init(src)

	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestScanTokens(t *testing.T) {
	cases := []struct {
		src  string
		want []token.Kind
	}{
		{"", []token.Kind{token.EOF}},
		{"   \t\r\n", []token.Kind{token.EOF}},
		{"// just a comment", []token.Kind{token.EOF}},
		{"(){};,.", []token.Kind{
			token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
			token.SEMI, token.COMMA, token.DOT, token.EOF,
		}},
		{"+ - * /", []token.Kind{
			token.PLUS, token.MINUS, token.STAR, token.SLASH, token.EOF,
		}},
		{"! != = == < <= > >=", []token.Kind{
			token.BANG, token.BANGEQ, token.EQ, token.EQEQ,
			token.LT, token.LE, token.GT, token.GE, token.EOF,
		}},
		{"123 45.67", []token.Kind{token.NUMBER, token.NUMBER, token.EOF}},
		{`"hello"`, []token.Kind{token.STRING, token.EOF}},
		{"foo _bar baz2", []token.Kind{token.IDENT, token.IDENT, token.IDENT, token.EOF}},
		{"x // trailing\ny", []token.Kind{token.IDENT, token.IDENT, token.EOF}},
		{"1/2", []token.Kind{token.NUMBER, token.SLASH, token.NUMBER, token.EOF}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			assert.Equal(t, c.want, kinds(scanAll(c.src)))
		})
	}
}

func TestScanKeywords(t *testing.T) {
	src := "and class else false for fun if nil or print return super this true var while"
	want := []token.Kind{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR,
		token.FUN, token.IF, token.NIL, token.OR, token.PRINT,
		token.RETURN, token.SUPER, token.THIS, token.TRUE, token.VAR,
		token.WHILE, token.EOF,
	}
	assert.Equal(t, want, kinds(scanAll(src)))
}

func TestScanKeywordPrefixes(t *testing.T) {
	// lexemes that share a prefix with a keyword are plain identifiers
	src := "an classy f fals nils ort printer vars whiles truthy thistle fund"
	for _, tok := range scanAll(src) {
		if tok.Kind == token.EOF {
			break
		}
		assert.Equal(t, token.IDENT, tok.Kind, "lexeme %q", tok.Lexeme)
	}
}

func TestScanLexemes(t *testing.T) {
	toks := scanAll(`var answer = 42.5; print "hi";`)
	require.Len(t, toks, 9)
	assert.Equal(t, "var", toks[0].Lexeme)
	assert.Equal(t, "answer", toks[1].Lexeme)
	assert.Equal(t, "42.5", toks[3].Lexeme)
	// the quotes are part of the string lexeme, stripped by the compiler
	assert.Equal(t, `"hi"`, toks[6].Lexeme)
}

func TestScanLines(t *testing.T) {
	toks := scanAll("one\ntwo\n\nfour")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 4, toks[2].Line)

	// a multi-line string advances the line counter
	toks = scanAll("\"a\nb\" x")
	require.Len(t, toks, 3)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, 2, toks[1].Line)
}

func TestScanTrailingDot(t *testing.T) {
	// a trailing dot is not part of the number
	assert.Equal(t,
		[]token.Kind{token.NUMBER, token.DOT, token.EOF},
		kinds(scanAll("1.")))
}

func TestScanErrors(t *testing.T) {
	toks := scanAll("@")
	require.Len(t, toks, 2)
	assert.Equal(t, token.ILLEGAL, toks[0].Kind)
	assert.Equal(t, "Unexpected character.", toks[0].Lexeme)

	toks = scanAll(`"no closing quote`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.ILLEGAL, toks[0].Kind)
	assert.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanEOFForever(t *testing.T) {
	var s scanner.Scanner
	s.Init("x")
	require.Equal(t, token.IDENT, s.Next().Kind)
	for i := 0; i < 3; i++ {
		assert.Equal(t, token.EOF, s.Next().Kind)
	}
}

func TestScannerRestartable(t *testing.T) {
	var s scanner.Scanner
	s.Init("first")
	require.Equal(t, "first", s.Next().Lexeme)
	s.Init("second")
	require.Equal(t, "second", s.Next().Lexeme)
}
