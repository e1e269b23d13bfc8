package interpreter

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/loxlang/golox/stack"
	"github.com/loxlang/golox/token"
)

// callStack tracks the chain of active calls so that a runtime panic can be reported with a stack trace.
type callStack struct {
	frames      *stack.Stack[*stackFrame]
	calledFuncs *stack.Stack[string]
}

// stackFrame points to a function call: where the call was made and which function it was made from.
type stackFrame struct {
	Function string // name of the function the call was made from, or empty if not in a function
	Location token.Position
}

func newCallStack() *callStack {
	cs := &callStack{
		frames:      stack.New[*stackFrame](),
		calledFuncs: stack.New[string](),
	}
	cs.calledFuncs.Push("")
	return cs
}

// Push records a call to function, made at location, as the new top of the stack.
func (cs *callStack) Push(function string, location token.Position) {
	cs.frames.Push(&stackFrame{
		Function: cs.calledFuncs.Peek(),
		Location: location,
	})
	cs.calledFuncs.Push(function)
}

// Pop removes the most recently pushed call.
func (cs *callStack) Pop() {
	cs.frames.Pop()
	cs.calledFuncs.Pop()
}

// Len returns the current call depth.
func (cs *callStack) Len() int {
	return cs.frames.Len()
}

var (
	csBold  = color.New(color.Bold)
	csFaint = color.New(color.Faint)
)

// StackTrace renders the current call stack, most recent call first.
func (cs *callStack) StackTrace() string {
	var b strings.Builder
	csBold.Fprintln(&b, "Stack Trace (most recent call first):")
	locations := make([]string, cs.Len())
	locationWidth := 0
	functions := make([]string, cs.Len())
	functionWidth := 0
	lines := make([]string, cs.Len())
	for i, frame := range cs.frames.Backward() {
		locations[i] = fmt.Sprintf("%m", frame.Location)
		locationWidth = max(locationWidth, runewidth.StringWidth(locations[i]))
		function := ""
		if frame.Function != "" {
			function = fmt.Sprintf("in %s", frame.Function)
		}
		functions[i] = function
		functionWidth = max(functionWidth, runewidth.StringWidth(functions[i]))
		lines[i] = csFaint.Sprintf("%s", bytes.TrimLeftFunc(frame.Location.File.Line(frame.Location.Line), unicode.IsSpace))
	}
	for i := cs.Len() - 1; i >= 0; i-- {
		location := runewidth.FillRight(locations[i], locationWidth)
		function := runewidth.FillRight(functions[i], functionWidth)
		fmt.Fprint(&b, "  ", location, " ", function, " ", lines[i])
		if i > 0 {
			fmt.Fprintln(&b)
		}
	}
	return b.String()
}
