// Package interpreter tree-walks a resolved Lox AST and evaluates it, producing printed output and runtime-error
// diagnostics.
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/lox"
	"github.com/loxlang/golox/resolver"
	"github.com/loxlang/golox/token"
)

// Interpreter tree-walks a Lox program, maintaining the global environment and the currently active lexical
// environment across calls to Interpret. Multiple calls share state, which is what makes REPL sessions work.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	out     io.Writer

	printExprStmtResults bool

	callStack     *callStack
	lastTracedErr *lox.Error
}

// Option configures an Interpreter constructed by New.
type Option func(*Interpreter)

// WithStdout sets the stream that Print statements write to. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithREPLMode sets the interpreter to REPL mode. In REPL mode, the result of an expression statement is printed,
// matching the jlox/lox REPL convention of echoing the value of a bare expression typed at the prompt.
func WithREPLMode() Option {
	return func(i *Interpreter) { i.printExprStmtResults = true }
}

// New constructs an Interpreter with the global clock native function already defined.
func New(opts ...Option) *Interpreter {
	globals := NewEnvironment(nil)
	i := &Interpreter{
		globals:   globals,
		env:       globals,
		locals:    resolver.Locals{},
		out:       os.Stdout,
		callStack: newCallStack(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.defineBuiltins()
	return i
}

// Interpret executes program against locals, the distance table produced by [resolver.Resolve]. State (globals,
// current environment) persists across calls, so a REPL can call Interpret once per line.
// A returned error is always a *[lox.Error].
func (i *Interpreter) Interpret(program *ast.Program, locals resolver.Locals) (err error) {
	for expr, depth := range locals {
		i.locals[expr] = depth
	}

	i.lastTracedErr = nil

	defer func() {
		if r := recover(); r != nil {
			if loxErr, ok := r.(*lox.Error); ok {
				err = loxErr
				return
			}
			panic(r)
		}
	}()

	for _, stmt := range program.Stmts {
		i.execStmt(stmt, i.env)
	}
	return nil
}

// execResult is returned by execStmt to propagate a Return statement's value up to the enclosing function call
// without exposing it to Lox code as an exception.
type execResult interface {
	isExecResult()
}

type execResultNone struct{}

func (execResultNone) isExecResult() {}

type execResultReturn struct {
	Value loxObject
}

func (execResultReturn) isExecResult() {}

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Environment) execResult {
	switch stmt := stmt.(type) {
	case *ast.VarStmt:
		i.execVarStmt(stmt, env)
	case *ast.FunctionStmt:
		i.execFunctionStmt(stmt, env)
	case *ast.ClassStmt:
		i.execClassStmt(stmt, env)
	case *ast.ExpressionStmt:
		value := i.evalExpr(stmt.Expr, env)
		if i.printExprStmtResults {
			fmt.Fprintln(i.out, value.String())
		}
	case *ast.PrintStmt:
		i.execPrintStmt(stmt, env)
	case *ast.BlockStmt:
		return i.execBlock(stmt.Stmts, NewEnvironment(env))
	case *ast.IfStmt:
		return i.execIfStmt(stmt, env)
	case *ast.WhileStmt:
		return i.execWhileStmt(stmt, env)
	case *ast.ReturnStmt:
		return i.execReturnStmt(stmt, env)
	case *ast.IllegalStmt:
		// Nothing to execute: parsing already failed for this statement.
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement type %T", stmt))
	}
	return execResultNone{}
}

func (i *Interpreter) execVarStmt(stmt *ast.VarStmt, env *Environment) {
	var value loxObject = loxNil{}
	if stmt.Initial != nil {
		value = i.evalExpr(stmt.Initial, env)
	}
	env.Define(stmt.Name.Lexeme, value)
}

func (i *Interpreter) execFunctionStmt(stmt *ast.FunctionStmt, env *Environment) {
	fn := &loxFunction{name: stmt.Name.Lexeme, params: stmt.Params, body: stmt.Body, closure: env}
	env.Define(stmt.Name.Lexeme, fn)
}

func (i *Interpreter) execClassStmt(stmt *ast.ClassStmt, env *Environment) {
	var superclass *loxClass
	if stmt.Superclass != nil {
		superObj := i.evalExpr(stmt.Superclass, env)
		var ok bool
		superclass, ok = superObj.(*loxClass)
		if !ok {
			panic(lox.NewError(stmt.Superclass, "Superclass must be a class."))
		}
	}

	env.Define(stmt.Name.Lexeme, loxNil{})

	methodEnv := env
	if superclass != nil {
		methodEnv = NewEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*loxFunction, len(stmt.Methods))
	for _, method := range stmt.Methods {
		methods[method.Name.Lexeme] = &loxFunction{
			name:          stmt.Name.Lexeme + "." + method.Name.Lexeme,
			params:        method.Params,
			body:          method.Body,
			closure:       methodEnv,
			isInitializer: method.Name.Lexeme == token.InitIdent,
		}
	}

	class := &loxClass{name: stmt.Name.Lexeme, superclass: superclass, methods: methods}
	env.Assign(stmt.Name, class)
}

func (i *Interpreter) execPrintStmt(stmt *ast.PrintStmt, env *Environment) {
	value := i.evalExpr(stmt.Expr, env)
	fmt.Fprintln(i.out, value.String())
}

// execBlock executes stmts within env, which callers construct as a new child environment (or, for a function
// call, as the call's fresh activation record).
func (i *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) execResult {
	for _, stmt := range stmts {
		if result := i.execStmt(stmt, env); !isNone(result) {
			return result
		}
	}
	return execResultNone{}
}

func isNone(r execResult) bool {
	_, ok := r.(execResultNone)
	return ok
}

func (i *Interpreter) execIfStmt(stmt *ast.IfStmt, env *Environment) execResult {
	if isTruthy(i.evalExpr(stmt.Condition, env)) {
		return i.execStmt(stmt.Then, env)
	} else if stmt.Else != nil {
		return i.execStmt(stmt.Else, env)
	}
	return execResultNone{}
}

func (i *Interpreter) execWhileStmt(stmt *ast.WhileStmt, env *Environment) execResult {
	for isTruthy(i.evalExpr(stmt.Condition, env)) {
		if result := i.execStmt(stmt.Body, env); !isNone(result) {
			return result
		}
	}
	return execResultNone{}
}

func (i *Interpreter) execReturnStmt(stmt *ast.ReturnStmt, env *Environment) execResult {
	var value loxObject = loxNil{}
	if stmt.Value != nil {
		value = i.evalExpr(stmt.Value, env)
	}
	return execResultReturn{Value: value}
}

func (i *Interpreter) evalExpr(expr ast.Expr, env *Environment) loxObject {
	switch expr := expr.(type) {
	case *ast.LiteralExpr:
		return i.evalLiteralExpr(expr)
	case *ast.GroupingExpr:
		return i.evalExpr(expr.Inner, env)
	case *ast.VariableExpr:
		return i.lookUpVariable(expr.Name, expr, env)
	case *ast.ThisExpr:
		return i.lookUpVariable(expr.Keyword, expr, env)
	case *ast.AssignExpr:
		return i.evalAssignExpr(expr, env)
	case *ast.UnaryExpr:
		return i.evalUnaryExpr(expr, env)
	case *ast.BinaryExpr:
		return i.evalBinaryExpr(expr, env)
	case *ast.LogicalExpr:
		return i.evalLogicalExpr(expr, env)
	case *ast.CallExpr:
		return i.evalCallExpr(expr, env)
	case *ast.GetExpr:
		return i.evalGetExpr(expr, env)
	case *ast.SetExpr:
		return i.evalSetExpr(expr, env)
	case *ast.SuperExpr:
		return i.evalSuperExpr(expr, env)
	case *ast.IllegalExpr:
		return loxNil{}
	default:
		panic(fmt.Sprintf("interpreter: unhandled expression type %T", expr))
	}
}

func (i *Interpreter) evalLiteralExpr(expr *ast.LiteralExpr) loxObject {
	switch tok := expr.Value; tok.Type {
	case token.Number:
		return loxNumber(tok.Literal.(float64))
	case token.String:
		return loxString(tok.Literal.(string))
	case token.True:
		return loxBool(true)
	case token.False:
		return loxBool(false)
	case token.Nil:
		return loxNil{}
	default:
		panic(fmt.Sprintf("interpreter: unhandled literal token type %s", tok.Type))
	}
}

// lookUpVariable resolves a Variable or This reference via the side-table, falling back to the global environment
// for references the resolver left unresolved.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr, env *Environment) loxObject {
	if distance, ok := i.locals[expr]; ok {
		return env.GetAt(distance, name.Lexeme)
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalAssignExpr(expr *ast.AssignExpr, env *Environment) loxObject {
	value := i.evalExpr(expr.Value, env)
	if distance, ok := i.locals[expr]; ok {
		env.AssignAt(distance, expr.Name.Lexeme, value)
	} else {
		i.globals.Assign(expr.Name, value)
	}
	return value
}

func (i *Interpreter) evalUnaryExpr(expr *ast.UnaryExpr, env *Environment) loxObject {
	right := i.evalExpr(expr.Right, env)
	switch expr.Op.Type {
	case token.Bang:
		return loxBool(!isTruthy(right))
	case token.Minus:
		n, ok := right.(loxNumber)
		if !ok {
			panic(lox.NewError(expr.Op, "Operand must be a number."))
		}
		return -n
	default:
		panic(fmt.Sprintf("interpreter: unhandled unary operator %s", expr.Op.Type))
	}
}

func (i *Interpreter) evalBinaryExpr(expr *ast.BinaryExpr, env *Environment) loxObject {
	left := i.evalExpr(expr.Left, env)
	right := i.evalExpr(expr.Right, env)

	switch expr.Op.Type {
	case token.EqualEqual:
		return loxBool(left == right)
	case token.BangEqual:
		return loxBool(left != right)
	case token.Plus:
		switch left := left.(type) {
		case loxNumber:
			if right, ok := right.(loxNumber); ok {
				return left + right
			}
		case loxString:
			if right, ok := right.(loxString); ok {
				return left + right
			}
		}
		panic(lox.NewError(expr.Op, "Operands must be two numbers or two strings."))
	case token.Minus, token.Asterisk, token.Slash, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		left, ok := left.(loxNumber)
		if !ok {
			panic(lox.NewError(expr.Op, "Operand must be a number."))
		}
		right, ok := right.(loxNumber)
		if !ok {
			panic(lox.NewError(expr.Op, "Operand must be a number."))
		}
		switch expr.Op.Type {
		case token.Minus:
			return left - right
		case token.Asterisk:
			return left * right
		case token.Slash:
			return left / right
		case token.Less:
			return loxBool(left < right)
		case token.LessEqual:
			return loxBool(left <= right)
		case token.Greater:
			return loxBool(left > right)
		case token.GreaterEqual:
			return loxBool(left >= right)
		}
	}
	panic(fmt.Sprintf("interpreter: unhandled binary operator %s", expr.Op.Type))
}

func (i *Interpreter) evalLogicalExpr(expr *ast.LogicalExpr, env *Environment) loxObject {
	left := i.evalExpr(expr.Left, env)
	if expr.Op.Type == token.Or {
		if isTruthy(left) {
			return left
		}
		return i.evalExpr(expr.Right, env)
	}
	// token.And
	if !isTruthy(left) {
		return left
	}
	return i.evalExpr(expr.Right, env)
}

func (i *Interpreter) evalCallExpr(expr *ast.CallExpr, env *Environment) loxObject {
	callee := i.evalExpr(expr.Callee, env)

	args := make([]loxObject, len(expr.Args))
	for idx, arg := range expr.Args {
		args[idx] = i.evalExpr(arg, env)
	}

	fn, ok := callee.(callable)
	if !ok {
		panic(lox.NewError(expr.Callee, "Can only call functions and classes."))
	}

	if len(args) != fn.arity() {
		panic(lox.NewError(expr, "Expected %d arguments but got %d.", fn.arity(), len(args)))
	}

	i.callStack.Push(callStackFunctionName(fn), expr.Start())
	defer func() {
		if r := recover(); r != nil {
			if loxErr, ok := r.(*lox.Error); ok && i.lastTracedErr != loxErr {
				i.lastTracedErr = loxErr
				loxErr.Msg += "\n\n" + i.callStack.StackTrace()
			}
			i.callStack.Pop()
			panic(r)
		}
		i.callStack.Pop()
	}()

	return fn.call(i, args)
}

func callStackFunctionName(fn callable) string {
	switch fn := fn.(type) {
	case *loxFunction:
		return fn.name
	case *loxClass:
		return fn.name
	case *loxNativeFunction:
		return fn.name
	default:
		return ""
	}
}

func (i *Interpreter) evalGetExpr(expr *ast.GetExpr, env *Environment) loxObject {
	object := i.evalExpr(expr.Object, env)
	instance, ok := object.(*loxInstance)
	if !ok {
		panic(lox.NewError(expr, "Only instances have properties."))
	}
	value, ok := instance.get(expr.Name)
	if !ok {
		panic(lox.NewError(expr.Name, "Undefined property '%s'.", expr.Name.Lexeme))
	}
	return value
}

func (i *Interpreter) evalSetExpr(expr *ast.SetExpr, env *Environment) loxObject {
	object := i.evalExpr(expr.Object, env)
	instance, ok := object.(*loxInstance)
	if !ok {
		panic(lox.NewError(expr, "Only instances have fields."))
	}
	value := i.evalExpr(expr.Value, env)
	instance.set(expr.Name, value)
	return value
}

func (i *Interpreter) evalSuperExpr(expr *ast.SuperExpr, env *Environment) loxObject {
	distance := i.locals[expr] // resolver guarantees super always resolves to a local
	superclass := env.GetAt(distance, "super").(*loxClass)
	instance := env.GetAt(distance-1, "this").(*loxInstance)

	method, ok := superclass.findMethod(expr.Method.Lexeme)
	if !ok {
		panic(lox.NewError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme))
	}
	return method.bind(instance)
}

func isTruthy(v loxObject) bool {
	if truther, ok := v.(loxTruther); ok {
		return truther.IsTruthy()
	}
	return true
}
