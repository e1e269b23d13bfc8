package scanner_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/loxlang/golox/scanner"
	"github.com/loxlang/golox/token"
)

func types(toks []token.Token) []token.Type {
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte(`(){};,.+-*!!====<=>=<>/`)).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Semicolon, token.Comma, token.Dot, token.Plus, token.Minus, token.Asterisk,
		token.Bang, token.BangEqual, token.EqualEqual, token.Equal, token.LessEqual, token.GreaterEqual,
		token.Less, token.Greater, token.Slash,
		token.EOF,
	}
	if diff := cmp.Diff(want, types(toks)); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestScanIgnoresLineComments(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte("1 // this is a comment\n2")).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []token.Type{token.Number, token.Number, token.EOF}
	if diff := cmp.Diff(want, types(toks)); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestScanString(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte(`"hello world"`)).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Type != token.String {
		t.Fatalf("got type %s, want String", toks[0].Type)
	}
	if toks[0].Literal != "hello world" {
		t.Errorf("got literal %q, want %q", toks[0].Literal, "hello world")
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := scanner.New("test.lox", []byte(`"hello`)).Scan()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestScanNumber(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"123.456", 123.456},
		{"0", 0},
	}
	for _, test := range tests {
		toks, err := scanner.New("test.lox", []byte(test.src)).Scan()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got := toks[0].Literal.(float64); got != test.want {
			t.Errorf("scanning %q: got %v, want %v", test.src, got, test.want)
		}
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte("and class else false for fun if nil or print return super this true var while foo")).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []token.Type{
		token.And, token.Class, token.Else, token.False, token.For, token.Fun, token.If, token.Nil, token.Or,
		token.Print, token.Return, token.Super, token.This, token.True, token.Var, token.While,
		token.Ident, token.EOF,
	}
	if diff := cmp.Diff(want, types(toks)); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestScanIllegalCharacterDoesNotStopScanning(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte("1 @ 2")).Scan()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	want := []token.Type{token.Number, token.Illegal, token.Number, token.EOF}
	if diff := cmp.Diff(want, types(toks), cmpopts.EquateComparable()); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	toks, err := scanner.New("test.lox", []byte("1\n2\n\n3")).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []int{1, 2, 4, 4} // includes EOF on the final line
	got := make([]int, len(toks))
	for i, tok := range toks {
		got[i] = tok.Start().Line
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("line numbers mismatch (-want +got):\n%s", diff)
	}
}
