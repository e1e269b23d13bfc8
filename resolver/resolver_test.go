package resolver_test

import (
	"strings"
	"testing"

	"github.com/loxlang/golox/parser"
	"github.com/loxlang/golox/resolver"
)

func resolveSrc(t *testing.T, src string) error {
	t.Helper()
	program, err := parser.Parse("test.lox", []byte(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	_, err = resolver.Resolve(program)
	return err
}

func TestResolveReportsTopLevelReturn(t *testing.T) {
	err := resolveSrc(t, "return 1;")
	assertErrorContains(t, err, "Can't return from top-level code.")
}

func TestResolveReportsReturnValueFromInitializer(t *testing.T) {
	err := resolveSrc(t, `class A { init() { return 1; } }`)
	assertErrorContains(t, err, "Can't return a value from an initializer.")
}

func TestResolveAllowsBareReturnFromInitializer(t *testing.T) {
	err := resolveSrc(t, `class A { init() { return; } }`)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestResolveReportsSuperOutsideClass(t *testing.T) {
	err := resolveSrc(t, `fun f() { super.method(); }`)
	assertErrorContains(t, err, "Can't use 'super' outside a class.")
}

func TestResolveReportsSuperWithoutSuperclass(t *testing.T) {
	err := resolveSrc(t, `class A { method() { super.method(); } }`)
	assertErrorContains(t, err, "Can't use 'super' in a class with no superclass.")
}

func TestResolveReportsThisOutsideClass(t *testing.T) {
	err := resolveSrc(t, `fun f() { print this; }`)
	assertErrorContains(t, err, "Can't use 'this' outside of a class.")
}

func TestResolveReportsClassInheritingFromItself(t *testing.T) {
	err := resolveSrc(t, `class A < A {}`)
	assertErrorContains(t, err, "A class can't inherit from itself.")
}

func TestResolveReportsSelfReferenceInInitializer(t *testing.T) {
	err := resolveSrc(t, `var a = "outer"; { var a = a; }`)
	assertErrorContains(t, err, "Can't read local variable in its own initializer.")
}

func TestResolveAllowsSuperclassMethodCallOnSubclass(t *testing.T) {
	err := resolveSrc(t, `class A { speak() {} } class B < A { speak() { super.speak(); } }`)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func assertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("error %q does not contain %q", err.Error(), substr)
	}
}
