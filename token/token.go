// Package token declares the type representing a lexical token of Lox code.
package token

import (
	"cmp"
	"fmt"

	"github.com/fatih/color"
)

// InitIdent is the identifier used for the constructor method of a class.
const InitIdent = "init"

//go:generate go tool stringer -type Type

// Type is the type of a lexical token of Lox code.
type Type int

// The list of all token types.
const (
	Illegal Type = iota
	EOF

	// Keywords
	keywordsStart
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordsEnd

	// Literals
	Ident
	String
	Number

	// Symbols
	Semicolon
	Comma
	Dot
	Equal
	Plus
	Minus
	Asterisk
	Slash
	Less
	LessEqual
	Greater
	GreaterEqual
	EqualEqual
	BangEqual
	Bang
	LeftParen
	RightParen
	LeftBrace
	RightBrace

	typesEnd
)

var typeStrings = map[Type]string{
	Illegal:      "illegal",
	EOF:          "EOF",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	For:          "for",
	Fun:          "fun",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	Ident:        "identifier",
	String:       "string",
	Number:       "number",
	Semicolon:    ";",
	Comma:        ",",
	Dot:          ".",
	Equal:        "=",
	Plus:         "+",
	Minus:        "-",
	Asterisk:     "*",
	Slash:        "/",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
	EqualEqual:   "==",
	BangEqual:    "!=",
	Bang:         "!",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
}

func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var keywordTypesByIdent = func() map[string]Type {
	m := make(map[string]Type, keywordsEnd-keywordsStart-1)
	for i := keywordsStart + 1; i < keywordsEnd; i++ {
		m[typeStrings[i]] = i
	}
	return m
}()

// LookupIdent returns the type of the keyword with the given identifier, or Ident if the identifier is not a
// keyword.
func LookupIdent(ident string) Type {
	if t, ok := keywordTypesByIdent[ident]; ok {
		return t
	}
	return Ident
}

// Format implements fmt.Formatter. All verbs have the default behaviour, except for 'm' (message) which formats the
// type for use in an error message.
func (t Type) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		fmt.Fprintf(f, "'%s'", typeStrings[t])
	default:
		fmt.Fprint(f, t.String())
	}
}

// Token is a lexical token of Lox code.
// Literal is non-nil only for Number (float64) and String (the unescaped body between the delimiting quotes).
type Token struct {
	Type     Type
	Lexeme   string
	Literal  any
	StartPos Position
	EndPos   Position
}

// Start returns the position of the first character of the token.
func (t Token) Start() Position { return t.StartPos }

// End returns the position of the character immediately after the token.
func (t Token) End() Position { return t.EndPos }

// IsZero reports whether t is the zero value.
func (t Token) IsZero() bool { return t == Token{} }

func (t Token) String() string {
	return fmt.Sprintf("%s: %s [%s]", t.StartPos, t.Lexeme, t.Type)
}

// Position is a position in a source file.
type Position struct {
	File   *File
	Line   int // 1-based line number
	Column int // 0-based byte offset from the start of the line
}

// Compare returns -1, 0 or 1 depending on whether p comes before, is the same as, or comes after other.
func (p Position) Compare(other Position) int {
	if p.File != other.File {
		return cmp.Compare(p.File.name, other.File.name)
	}
	if p.Line == other.Line {
		return cmp.Compare(p.Column, other.Column)
	}
	return cmp.Compare(p.Line, other.Line)
}

func (p Position) String() string {
	var prefix string
	if p.File != nil && p.File.name != "" {
		prefix = p.File.name + ":"
	}
	return fmt.Sprintf("%s%d:%d", prefix, p.Line, p.Column+1)
}

// Format implements fmt.Formatter. All verbs have the default behaviour, except for 'm' (message) which formats the
// position for use in an error message, coloured when connected to a terminal.
func (p Position) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		cyan := color.New(color.FgCyan)
		yellow := color.New(color.FgYellow)
		if p.File != nil && p.File.name != "" {
			cyan.Fprint(f, p.File.name)
			fmt.Fprint(f, ":")
		}
		yellow.Fprintf(f, "%d:%d", p.Line, p.Column+1)
	default:
		fmt.Fprint(f, p.String())
	}
}

// Range describes a range of characters in the source code.
type Range interface {
	Start() Position
	End() Position
}

// File is a simple representation of a source file, tracking line boundaries so that positions can be mapped back to
// source text.
type File struct {
	name        string
	contents    []byte
	lineOffsets []int
}

// NewFile returns a new File with the given name and contents.
func NewFile(name string, contents []byte) *File {
	f := &File{name: name, contents: contents}
	f.lineOffsets = append(f.lineOffsets, 0)
	for i, b := range contents {
		if b == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// Name returns the name of the file.
func (f *File) Name() string { return f.name }

// Line returns the nth (1-based) line of the file, without the trailing newline.
func (f *File) Line(n int) []byte {
	low := f.lineOffsets[n-1]
	high := len(f.contents)
	if n < len(f.lineOffsets) {
		high = f.lineOffsets[n] - 1
	}
	return f.contents[low:high]
}
