package interpreter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loxlang/golox/interpreter"
	"github.com/loxlang/golox/parser"
	"github.com/loxlang/golox/resolver"
)

func mustRun(t *testing.T, src string) (stdout string, err error) {
	t.Helper()
	program, perr := parser.Parse("test.lox", []byte(src))
	if perr != nil {
		t.Fatalf("unexpected parse error: %s", perr)
	}
	locals, rerr := resolver.Resolve(program)
	if rerr != nil {
		t.Fatalf("unexpected resolve error: %s", rerr)
	}
	var buf bytes.Buffer
	interp := interpreter.New(interpreter.WithStdout(&buf))
	err = interp.Interpret(program, locals)
	return buf.String(), err
}

func TestInterpretArithmeticExpressionStatement(t *testing.T) {
	stdout, err := mustRun(t, `print 1 + 2;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "3\n" {
		t.Errorf("got stdout %q, want %q", stdout, "3\n")
	}
}

func TestInterpretStringConcatenation(t *testing.T) {
	stdout, err := mustRun(t, `var a = "hi"; var b = " there"; print a + b;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "hi there\n" {
		t.Errorf("got stdout %q, want %q", stdout, "hi there\n")
	}
}

func TestInterpretForLoop(t *testing.T) {
	stdout, err := mustRun(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "0\n1\n2\n" {
		t.Errorf("got stdout %q, want %q", stdout, "0\n1\n2\n")
	}
}

func TestInterpretClosureCapturesOuterBindingNotLaterShadow(t *testing.T) {
	src := `
var a = "global";
{ fun showA() { print a; } showA(); var a = "block"; showA(); }
`
	stdout, err := mustRun(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "global\nglobal\n" {
		t.Errorf("got stdout %q, want %q", stdout, "global\nglobal\n")
	}
}

func TestInterpretClassInheritanceAndSuper(t *testing.T) {
	src := `
class A { speak() { print "A"; } }
class B < A { speak() { super.speak(); print "B"; } }
B().speak();
`
	stdout, err := mustRun(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "A\nB\n" {
		t.Errorf("got stdout %q, want %q", stdout, "A\nB\n")
	}
}

func TestInterpretArityMismatchIsRuntimeError(t *testing.T) {
	_, err := mustRun(t, `fun f(a, b) {} f(1, 2, 3);`)
	if err == nil {
		t.Fatal("expected a runtime error, got nil")
	}
	if !strings.Contains(err.Error(), "Expected 2 arguments but got 3.") {
		t.Errorf("got error %q, want it to contain %q", err.Error(), "Expected 2 arguments but got 3.")
	}
}

func TestInterpretInitAlwaysReturnsInstanceRegardlessOfBareReturn(t *testing.T) {
	src := `
class A {
  init(x) {
    this.x = x;
    if (x > 0) return;
  }
}
print A(1).x;
`
	stdout, err := mustRun(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "1\n" {
		t.Errorf("got stdout %q, want %q", stdout, "1\n")
	}
}

func TestInterpretBoundMethodRetainsReceiverAcrossReassignment(t *testing.T) {
	src := `
class A {
  init(name) { this.name = name; }
  getName() { print this.name; }
}
var inst = A("original");
var m = inst.getName;
m();
inst.getName();
`
	stdout, err := mustRun(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "original\noriginal\n" {
		t.Errorf("got stdout %q, want %q", stdout, "original\noriginal\n")
	}
}

func TestInterpretTruthiness(t *testing.T) {
	src := `
if (0) print "zero is truthy"; else print "zero is falsey";
if ("") print "empty string is truthy"; else print "empty string is falsey";
if (nil) print "nil is truthy"; else print "nil is falsey";
if (false) print "false is truthy"; else print "false is falsey";
`
	stdout, err := mustRun(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := "zero is truthy\nempty string is truthy\nnil is falsey\nfalse is falsey\n"
	if stdout != want {
		t.Errorf("got stdout %q, want %q", stdout, want)
	}
}

func TestInterpretLogicalOrShortCircuitsToFirstTruthyOperand(t *testing.T) {
	stdout, err := mustRun(t, `print "hi" or 1/0;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "hi\n" {
		t.Errorf("got stdout %q, want %q", stdout, "hi\n")
	}
}

func TestInterpretUnaryMinusEvaluatesOperandOnce(t *testing.T) {
	stdout, err := mustRun(t, `var calls = 0; fun five() { calls = calls + 1; return 5; } print -five(); print calls;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "-5\n1\n" {
		t.Errorf("got stdout %q, want %q", stdout, "-5\n1\n")
	}
}

func TestInterpretNumberStringifyStripsTrailingZero(t *testing.T) {
	stdout, err := mustRun(t, `print 3.0; print 3.5;`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stdout != "3\n3.5\n" {
		t.Errorf("got stdout %q, want %q", stdout, "3\n3.5\n")
	}
}

func TestInterpretUndefinedVariable(t *testing.T) {
	_, err := mustRun(t, `print doesNotExist;`)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !strings.Contains(err.Error(), "Undefined variable 'doesNotExist'.") {
		t.Errorf("got error %q, want it to contain undefined variable message", err.Error())
	}
}
