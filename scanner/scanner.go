// Package scanner converts Lox source code into a sequence of lexical tokens.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/loxlang/golox/lox"
	"github.com/loxlang/golox/token"
)

const eof = -1

// Scanner converts Lox source code into lexical tokens, one at a time.
//
// Tokens are read using Next. Scanning never stops at the first error: illegal tokens are reported and scanning
// continues, so that a single pass can surface every lexical error in a file.
type Scanner struct {
	file *token.File
	src  []byte

	ch           rune
	pos          token.Position
	readOffset   int
	lastReadSize int

	errs lox.Errors
}

// New constructs a Scanner which will scan the named source code.
func New(filename string, src []byte) *Scanner {
	file := token.NewFile(filename, src)
	s := &Scanner{
		file: file,
		src:  src,
		pos:  token.Position{File: file, Line: 1, Column: 0},
	}
	s.next()
	return s
}

// Scan scans the whole of the source code into a slice of tokens, terminated by an EOF token.
// Any lexical errors encountered are returned, but scanning always produces a complete, best-effort token stream.
func (s *Scanner) Scan() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens, s.errs.Err()
}

// Errs returns the errors accumulated so far by calls to Next.
func (s *Scanner) Errs() lox.Errors {
	return s.errs
}

// Next returns the next token in the source code. It returns an EOF token once the end of the source code has been
// reached, and every subsequent call also returns an EOF token.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()

	tok := token.Token{StartPos: s.pos}

	switch {
	case s.ch == eof:
		tok.Type = token.EOF
	case s.ch == ';':
		tok.Type = token.Semicolon
	case s.ch == ',':
		tok.Type = token.Comma
	case s.ch == '.':
		tok.Type = token.Dot
	case s.ch == '=':
		tok.Type = token.Equal
		if s.peek() == '=' {
			s.next()
			tok.Type = token.EqualEqual
		}
	case s.ch == '+':
		tok.Type = token.Plus
	case s.ch == '-':
		tok.Type = token.Minus
	case s.ch == '*':
		tok.Type = token.Asterisk
	case s.ch == '/':
		if s.peek() == '/' {
			s.next()
			s.next()
			s.skipLineComment()
			return s.Next()
		}
		tok.Type = token.Slash
	case s.ch == '<':
		tok.Type = token.Less
		if s.peek() == '=' {
			s.next()
			tok.Type = token.LessEqual
		}
	case s.ch == '>':
		tok.Type = token.Greater
		if s.peek() == '=' {
			s.next()
			tok.Type = token.GreaterEqual
		}
	case s.ch == '!':
		tok.Type = token.Bang
		if s.peek() == '=' {
			s.next()
			tok.Type = token.BangEqual
		}
	case s.ch == '(':
		tok.Type = token.LeftParen
	case s.ch == ')':
		tok.Type = token.RightParen
	case s.ch == '{':
		tok.Type = token.LeftBrace
	case s.ch == '}':
		tok.Type = token.RightBrace
	case s.ch == '"':
		return s.scanString()
	case isDigit(s.ch):
		return s.scanNumber()
	case isAlpha(s.ch):
		return s.scanIdent()
	default:
		ch := s.ch
		s.next()
		tok.EndPos = s.pos
		tok.Type = token.Illegal
		tok.Lexeme = string(ch)
		s.errs.Add(tok, "Unexpected character %q.", ch)
		return tok
	}

	tok.Lexeme = string(s.ch)
	s.next()
	tok.EndPos = s.pos
	return tok
}

func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.next()
	}
}

func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch != eof {
		s.next()
	}
}

func (s *Scanner) scanString() token.Token {
	tok := token.Token{StartPos: s.pos}
	s.next() // consume opening quote
	var b strings.Builder
	for {
		if s.ch == eof || s.ch == '\n' {
			tok.EndPos = s.pos
			tok.Type = token.Illegal
			tok.Lexeme = `"` + b.String()
			s.errs.Add(tok, "Unterminated string.")
			return tok
		}
		if s.ch == '"' {
			s.next()
			break
		}
		b.WriteRune(s.ch)
		s.next()
	}
	tok.EndPos = s.pos
	tok.Type = token.String
	tok.Lexeme = `"` + b.String() + `"`
	tok.Literal = b.String()
	return tok
}

func (s *Scanner) scanNumber() token.Token {
	tok := token.Token{StartPos: s.pos}
	var b strings.Builder
	for isDigit(s.ch) {
		b.WriteRune(s.ch)
		s.next()
	}
	if s.ch == '.' && isDigit(s.peek()) {
		b.WriteRune(s.ch)
		s.next()
		for isDigit(s.ch) {
			b.WriteRune(s.ch)
			s.next()
		}
	}
	tok.EndPos = s.pos
	tok.Type = token.Number
	tok.Lexeme = b.String()
	n, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		// Can't happen: the lexeme above is always a valid float literal.
		panic(fmt.Sprintf("scanner: invalid number literal %q: %s", tok.Lexeme, err))
	}
	tok.Literal = n
	return tok
}

func (s *Scanner) scanIdent() token.Token {
	tok := token.Token{StartPos: s.pos}
	var b strings.Builder
	for isAlphaNumeric(s.ch) {
		b.WriteRune(s.ch)
		s.next()
	}
	tok.EndPos = s.pos
	tok.Lexeme = b.String()
	tok.Type = token.LookupIdent(tok.Lexeme)
	return tok
}

func isWhitespace(ch rune) bool {
	switch ch {
	case ' ', '\r', '\t', '\n':
		return true
	default:
		return false
	}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isAlpha(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}

// next reads the next character into s.ch and advances the scanner. s.ch is set to eof once the end of the source
// has been reached.
func (s *Scanner) next() {
	if s.ch == eof {
		return
	}

	if s.ch == '\n' {
		s.pos.Line++
		s.pos.Column = 0
	} else {
		s.pos.Column += s.lastReadSize
	}

	if s.readOffset >= len(s.src) {
		s.ch = eof
		return
	}

	r, size := utf8.DecodeRune(s.src[s.readOffset:])
	if r == utf8.RuneError && size == 1 {
		badByte := s.src[s.readOffset]
		pos := s.pos
		s.readOffset++
		s.lastReadSize = 1
		errTok := token.Token{StartPos: pos, EndPos: token.Position{File: s.file, Line: pos.Line, Column: pos.Column + 1}}
		s.errs.Add(errTok, "Invalid UTF-8 byte %#x.", badByte)
		s.next()
		return
	}

	s.lastReadSize = size
	s.readOffset += size
	s.ch = r
}

// peek returns the next character without advancing the scanner, or eof if at the end of the source.
func (s *Scanner) peek() rune {
	if s.readOffset >= len(s.src) {
		return eof
	}
	r, _ := utf8.DecodeRune(s.src[s.readOffset:])
	return r
}
