// Package scanner tokenizes Lox source text on demand for the compiler to
// consume. The scanner is pure: it holds no heap references and can be
// re-initialized with a new source at any time.
package scanner

import (
	"github.com/svetlins/glox/lang/token"
)

// Scanner produces tokens lazily from an immutable source string. Tokens
// borrow slices of the source; they remain valid for as long as the source
// string is reachable.
type Scanner struct {
	src     string
	start   int // start of the lexeme being scanned
	current int // character offset of the next unread character
	line    int // 1-based line of the lexeme being scanned
}

// Init resets the scanner to tokenize src from the beginning.
func (s *Scanner) Init(src string) {
	s.src = src
	s.start = 0
	s.current = 0
	s.line = 1
}

// Next scans and returns the next token. Once the source is exhausted it
// returns EOF tokens forever.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMI)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		if s.match('=') {
			return s.make(token.BANGEQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQEQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.match('=') {
			return s.make(token.LE)
		}
		return s.make(token.LT)
	case '>':
		if s.match('=') {
			return s.make(token.GE)
		}
		return s.make(token.GT)
	case '"':
		return s.stringLit()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

// peek returns the next unread byte without advancing, or 0 at EOF.
func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

// peekNext returns the byte after the next one, or 0 past EOF.
func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			// line comment, runs to end of line
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Lexeme: s.src[s.start:s.current],
		Line:   s.line,
	}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{
		Kind:   token.ILLEGAL,
		Lexeme: msg,
		Line:   s.line,
	}
}

// stringLit scans a double-quoted string literal. There is no escape
// processing; the quotes are part of the lexeme and are stripped by the
// compiler. Newlines are allowed inside the literal.
func (s *Scanner) stringLit() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.STRING)
}

// number scans a decimal literal with an optional fractional part. A
// trailing dot is not consumed: "1." scans as NUMBER DOT.
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // the dot
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(s.identifierKind())
}

// identifierKind classifies the lexeme just scanned as a keyword or a plain
// identifier, using a hand-rolled trie keyed on the leading characters.
func (s *Scanner) identifierKind() token.Kind {
	switch s.src[s.start] {
	case 'a':
		return s.checkKeyword(1, "nd", token.AND)
	case 'c':
		return s.checkKeyword(1, "lass", token.CLASS)
	case 'e':
		return s.checkKeyword(1, "lse", token.ELSE)
	case 'f':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'a':
				return s.checkKeyword(2, "lse", token.FALSE)
			case 'o':
				return s.checkKeyword(2, "r", token.FOR)
			case 'u':
				return s.checkKeyword(2, "n", token.FUN)
			}
		}
	case 'i':
		return s.checkKeyword(1, "f", token.IF)
	case 'n':
		return s.checkKeyword(1, "il", token.NIL)
	case 'o':
		return s.checkKeyword(1, "r", token.OR)
	case 'p':
		return s.checkKeyword(1, "rint", token.PRINT)
	case 'r':
		return s.checkKeyword(1, "eturn", token.RETURN)
	case 's':
		return s.checkKeyword(1, "uper", token.SUPER)
	case 't':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'h':
				return s.checkKeyword(2, "is", token.THIS)
			case 'r':
				return s.checkKeyword(2, "ue", token.TRUE)
			}
		}
	case 'v':
		return s.checkKeyword(1, "ar", token.VAR)
	case 'w':
		return s.checkKeyword(1, "hile", token.WHILE)
	}
	return token.IDENT
}

func (s *Scanner) checkKeyword(offset int, rest string, kind token.Kind) token.Kind {
	if s.src[s.start+offset:s.current] == rest {
		return kind
	}
	return token.IDENT
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
