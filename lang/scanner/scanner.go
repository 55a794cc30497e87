// Package scanner tokenizes bslang source text into the Token stream the
// compiler consumes. Whitespace and comments are consumed internally and
// never surface to the caller.
package scanner

import (
	"unicode"
	"unicode/utf8"

	"github.com/mna/bslang/lang/token"
)

// Scanner tokenizes a single source string. It is not safe for concurrent
// use, and a Scanner instance scans exactly one source.
type Scanner struct {
	src string
	off int  // byte offset of s.cur
	cur rune // current rune, or utf8.RuneError/0 at EOF
	w   int  // width in bytes of s.cur
}

// New returns a Scanner ready to tokenize src.
func New(src string) *Scanner {
	s := &Scanner{src: src}
	s.advance()
	return s
}

func (s *Scanner) advance() {
	s.off += s.w
	if s.off >= len(s.src) {
		s.cur = 0
		s.w = 0
		return
	}
	r, w := utf8.DecodeRuneInString(s.src[s.off:])
	s.cur = r
	s.w = w
}

func (s *Scanner) peek() rune {
	if s.off+s.w >= len(s.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.off+s.w:])
	return r
}

func (s *Scanner) atEOF() bool { return s.off >= len(s.src) }

// Next returns the next non-discardable token: whitespace and comments are
// consumed internally and never observed by the caller.
func (s *Scanner) Next() token.Token {
	for {
		s.skipWhite()
		if s.cur == '#' {
			s.skipComment()
			continue
		}
		break
	}

	start := s.off
	if s.atEOF() {
		return token.Token{From: start, Len: 0, Kind: token.EOF}
	}

	switch {
	case isIdentStart(s.cur):
		return s.identifier(start)
	case isDigit(s.cur):
		return s.number(start)
	case s.cur == '\'':
		return s.literal(start)
	}

	return s.operator(start)
}

func (s *Scanner) skipWhite() {
	for !s.atEOF() && unicode.IsSpace(s.cur) {
		s.advance()
	}
}

func (s *Scanner) skipComment() {
	for !s.atEOF() && s.cur != '\n' {
		s.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (s *Scanner) identifier(start int) token.Token {
	for !s.atEOF() && isIdentCont(s.cur) {
		s.advance()
	}
	text := s.src[start:s.off]
	kind := token.Identifier
	if kw, ok := token.Keywords[text]; ok {
		kind = kw
	}
	return token.Token{From: start, Len: s.off - start, Kind: kind}
}

// number scans a decimal digit sequence: no sign, no exponent, no radix
// prefixes.
func (s *Scanner) number(start int) token.Token {
	for !s.atEOF() && isDigit(s.cur) {
		s.advance()
	}
	return token.Token{From: start, Len: s.off - start, Kind: token.Number}
}

// literal scans a single-quoted string literal, including its quotes. There
// is no escape-sequence syntax: a quote always ends the literal, and
// newlines are permitted inside it.
func (s *Scanner) literal(start int) token.Token {
	s.advance() // opening quote
	for {
		if s.atEOF() {
			return token.Token{From: start, Len: s.off - start, Kind: token.Error}
		}
		if s.cur == '\'' {
			s.advance()
			return token.Token{From: start, Len: s.off - start, Kind: token.Literal}
		}
		s.advance()
	}
}

var doubleOps = map[[2]rune]bool{
	{'=', '='}: true,
	{'!', '='}: true,
	{'<', '='}: true,
	{'>', '='}: true,
}

var singleOps = map[rune]bool{
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'[': true, ']': true, '(': true, ')': true, '{': true, '}': true,
	',': true, '.': true, '=': true, '<': true, '>': true, '!': true,
	';': true,
}

func (s *Scanner) operator(start int) token.Token {
	first := s.cur
	second := s.peek()
	if doubleOps[[2]rune{first, second}] {
		s.advance()
		s.advance()
		return token.Token{From: start, Len: s.off - start, Kind: token.Double}
	}
	if singleOps[first] {
		s.advance()
		return token.Token{From: start, Len: s.off - start, Kind: token.Single, Ch: first}
	}
	s.advance()
	return token.Token{From: start, Len: s.off - start, Kind: token.Error}
}

// ScanAll tokenizes the whole source, useful for the `tokenize` CLI command
// and for tests. It stops at the first Error or EOF token (inclusive).
func ScanAll(src string) []token.Token {
	s := New(src)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF || tok.Kind == token.Error {
			break
		}
	}
	return toks
}
