// Package lox provides the error type shared by the scanner, parser, resolver and interpreter.
package lox

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/loxlang/golox/token"
)

// Error describes an error that occurred while processing a Lox program. It can describe any error which can be
// attributed to a range of characters in the source code.
type Error struct {
	Msg   string
	Start token.Position
	End   token.Position
}

// NewError creates an [*Error] describing a problem with the given range of source code.
// The message is constructed from the format string and args, as in [fmt.Sprintf].
func NewError(rang token.Range, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Start: rang.Start(), End: rang.End()}
}

var (
	bold     = color.New(color.Bold)
	faint    = color.New(color.Faint)
	red      = color.New(color.FgRed)
	faintRed = color.New(color.Faint, color.FgRed)
)

// Error formats the error by displaying the message and highlighting the range of characters in the source code that
// it applies to.
//
// For example:
//
//	test.lox:2:7: error: Unterminated string.
//	print "bar;
//	      ~~~~~
func (e *Error) Error() string {
	var b strings.Builder
	buildString := func() string { return strings.TrimSuffix(b.String(), "\n") }

	bold.Fprint(&b, fmt.Sprintf("%m", e.Start), ": ", red.Sprint("error"), ": ", e.Msg, "\n")

	if e.Start.File == nil {
		return buildString()
	}

	lines := make([]string, e.End.Line-e.Start.Line+1)
	for i := e.Start.Line; i <= e.End.Line; i++ {
		line := e.Start.File.Line(i)
		if !utf8.Valid(line) {
			// If any of the lines aren't valid UTF-8 then we can't display the source, so return the bare message.
			return buildString()
		}
		lines[i-e.Start.Line] = string(line)
	}
	faint.Fprintln(&b, lines[0])
	if e.Start == e.End {
		return buildString()
	}

	if len(lines) == 1 {
		fmt.Fprint(&b, strings.Repeat(" ", runewidth.StringWidth(lines[0][:e.Start.Column])))
		faintRed.Fprintln(&b, strings.Repeat("~", max(1, runewidth.StringWidth(lines[0][e.Start.Column:e.End.Column]))))
	} else {
		fmt.Fprint(&b, strings.Repeat(" ", runewidth.StringWidth(lines[0][:e.Start.Column])))
		faintRed.Fprintln(&b, strings.Repeat("~", runewidth.StringWidth(lines[0][e.Start.Column:])))
		for _, line := range lines[1 : len(lines)-1] {
			faint.Fprintln(&b, line)
			faintRed.Fprintln(&b, strings.Repeat("~", runewidth.StringWidth(line)))
		}
		if last := lines[len(lines)-1]; len(last) > 0 {
			faint.Fprintln(&b, last)
			faintRed.Fprintln(&b, strings.Repeat("~", runewidth.StringWidth(last[:e.End.Column])))
		}
	}

	return buildString()
}

// Errors is a list of [*Error]s accumulated during a single scan, parse or resolve pass.
type Errors []*Error

// Add appends an [*Error] describing a problem with the given range of source code.
func (e *Errors) Add(rang token.Range, format string, args ...any) {
	*e = append(*e, NewError(rang, format, args...))
}

// Error formats the errors by concatenating their messages, after sorting them by their start position.
func (e Errors) Error() string {
	sorted := slices.Clone([]*Error(e))
	slices.SortFunc(sorted, func(a, b *Error) int { return a.Start.Compare(b.Start) })
	msgs := make([]string, len(sorted))
	for i, err := range sorted {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns the error list as an [error] if it's non-empty, otherwise nil. This must be used to return an [Errors]
// from a function as an [error] so that it becomes an untyped nil when there are no errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
