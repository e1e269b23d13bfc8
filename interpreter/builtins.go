package interpreter

import (
	"time"

	"github.com/loxlang/golox/lox"
)

// defineBuiltins defines the native functions available as globals in every Lox program.
func (i *Interpreter) defineBuiltins() {
	i.globals.Define(lox.BuiltinClock, &loxNativeFunction{
		name: lox.BuiltinClock,
		n:    0,
		fn: func(*Interpreter, []loxObject) loxObject {
			return loxNumber(float64(time.Now().UnixNano()) / float64(time.Second))
		},
	})
}
