package interpreter

import (
	"fmt"

	"github.com/loxlang/golox/lox"
	"github.com/loxlang/golox/token"
)

// Environment is a mapping from variable name to value, with an optional link to an enclosing environment. Looking
// up or assigning a name which isn't present in this environment walks outward through enclosing environments.
type Environment struct {
	parent *Environment
	values map[string]loxObject
}

// NewEnvironment constructs an Environment enclosed by parent, which may be nil for the global environment.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, values: make(map[string]loxObject)}
}

// Define binds name to value in this environment, overwriting any existing binding.
func (e *Environment) Define(name string, value loxObject) {
	e.values[name] = value
}

// Get returns the value bound to name, walking outward through enclosing environments if necessary.
func (e *Environment) Get(name token.Token) loxObject {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name.Lexeme]; ok {
			return v
		}
	}
	panic(lox.NewError(name, "Undefined variable '%s'.", name.Lexeme))
}

// Assign rebinds name to value in the nearest enclosing environment in which it's already defined.
func (e *Environment) Assign(name token.Token, value loxObject) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return
		}
	}
	panic(lox.NewError(name, "Undefined variable '%s'.", name.Lexeme))
}

// GetAt returns the value bound to name exactly distance environments outward. A miss indicates a bug in the
// resolver, not a user error, so it panics rather than producing a *lox.Error.
func (e *Environment) GetAt(distance int, name string) loxObject {
	env := e.ancestor(distance)
	v, ok := env.values[name]
	if !ok {
		panic(fmt.Sprintf("interpreter: %q not found at resolved distance %d", name, distance))
	}
	return v
}

// AssignAt rebinds name to value exactly distance environments outward.
func (e *Environment) AssignAt(distance int, name string, value loxObject) {
	e.ancestor(distance).values[name] = value
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for range distance {
		env = env.parent
		if env == nil {
			panic(fmt.Sprintf("interpreter: ancestor %d out of range", distance))
		}
	}
	return env
}
