package interpreter

import (
	"fmt"
	"strconv"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/token"
)

// loxObject is the interface implemented by every Lox runtime value.
type loxObject interface {
	String() string
}

// loxTruther is implemented by the values for which truthiness isn't simply "true": everything is truthy except nil
// and the boolean false.
type loxTruther interface {
	IsTruthy() bool
}

type loxNumber float64

var _ loxObject = loxNumber(0)

func (n loxNumber) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

type loxString string

var _ loxObject = loxString("")

func (s loxString) String() string {
	return string(s)
}

type loxBool bool

var (
	_ loxObject  = loxBool(false)
	_ loxTruther = loxBool(false)
)

func (b loxBool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b loxBool) IsTruthy() bool {
	return bool(b)
}

// loxNil is the Lox nil value. It's a dedicated type (rather than a bare Go nil) so that it can implement loxObject
// and be compared for equality and printed like any other value.
type loxNil struct{}

var (
	_ loxObject  = loxNil{}
	_ loxTruther = loxNil{}
)

func (loxNil) String() string {
	return "nil"
}

func (loxNil) IsTruthy() bool {
	return false
}

// callable is implemented by every Lox value which can appear as the callee of a call expression: user-defined
// functions and methods, classes (construction), and native functions.
type callable interface {
	arity() int
	call(i *Interpreter, args []loxObject) loxObject
}

// loxFunction is a user-defined function or method, closed over the environment in which it was declared.
type loxFunction struct {
	name          string
	params        []token.Token
	body          []ast.Stmt
	closure       *Environment
	isInitializer bool
}

var (
	_ loxObject = (*loxFunction)(nil)
	_ callable  = (*loxFunction)(nil)
)

func (f *loxFunction) String() string {
	return fmt.Sprintf("<fn %s>", f.name)
}

func (f *loxFunction) arity() int {
	return len(f.params)
}

func (f *loxFunction) call(i *Interpreter, args []loxObject) loxObject {
	env := NewEnvironment(f.closure)
	for idx, param := range f.params {
		env.Define(param.Lexeme, args[idx])
	}

	result := i.execBlock(f.body, env)

	if f.isInitializer {
		return f.closure.GetAt(0, "this")
	}
	if ret, ok := result.(execResultReturn); ok {
		return ret.Value
	}
	return loxNil{}
}

// bind returns a copy of f whose closure is a child environment defining "this" as instance. Used to turn an
// unbound method lookup into a callable bound to its receiver.
func (f *loxFunction) bind(instance *loxInstance) *loxFunction {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	bound := *f
	bound.closure = env
	return &bound
}

// loxNativeFunction is a function implemented in Go and exposed to Lox as a global, such as clock. It's stored as a
// pointer, like loxFunction/loxClass/loxInstance, so that it has comparable identity: a struct value containing a
// func field isn't comparable, and == on two loxObjects (spec.md §4.4) must never panic.
type loxNativeFunction struct {
	name string
	fn   func(i *Interpreter, args []loxObject) loxObject
	n    int
}

var (
	_ loxObject = (*loxNativeFunction)(nil)
	_ callable  = (*loxNativeFunction)(nil)
)

func (f *loxNativeFunction) String() string {
	return "<native fn>"
}

func (f *loxNativeFunction) arity() int {
	return f.n
}

func (f *loxNativeFunction) call(i *Interpreter, args []loxObject) loxObject {
	return f.fn(i, args)
}

// loxClass is a Lox class: a name, an optional superclass, and its own methods (not including inherited ones).
type loxClass struct {
	name       string
	superclass *loxClass
	methods    map[string]*loxFunction
}

var (
	_ loxObject = (*loxClass)(nil)
	_ callable  = (*loxClass)(nil)
)

func (c *loxClass) String() string {
	return c.name
}

// findMethod looks up a method by name, first on c itself and then recursing into the superclass chain.
func (c *loxClass) findMethod(name string) (*loxFunction, bool) {
	if m, ok := c.methods[name]; ok {
		return m, true
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil, false
}

func (c *loxClass) arity() int {
	if init, ok := c.findMethod(token.InitIdent); ok {
		return init.arity()
	}
	return 0
}

func (c *loxClass) call(i *Interpreter, args []loxObject) loxObject {
	instance := &loxInstance{class: c, fields: make(map[string]loxObject)}
	if init, ok := c.findMethod(token.InitIdent); ok {
		init.bind(instance).call(i, args)
	}
	return instance
}

// loxInstance is an instance of a loxClass. Fields are created on first assignment.
type loxInstance struct {
	class  *loxClass
	fields map[string]loxObject
}

var _ loxObject = (*loxInstance)(nil)

func (inst *loxInstance) String() string {
	return fmt.Sprintf("%s instance", inst.class.name)
}

// get looks up a property on inst: fields first, then bound methods, per §4.4.
func (inst *loxInstance) get(name token.Token) (loxObject, bool) {
	if v, ok := inst.fields[name.Lexeme]; ok {
		return v, true
	}
	if m, ok := inst.class.findMethod(name.Lexeme); ok {
		return m.bind(inst), true
	}
	return nil, false
}

func (inst *loxInstance) set(name token.Token, value loxObject) {
	inst.fields[name.Lexeme] = value
}
