// Package resolver implements the static resolution pass which runs between parsing and evaluation.
//
// It walks the AST once, associating every variable reference with the number of scopes between its use and the
// scope in which it's declared, and reports static errors (references to undeclared "this"/"super", invalid
// returns, and so on) that can be caught without running the program.
package resolver

import (
	"fmt"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/lox"
	"github.com/loxlang/golox/token"
)

// Locals maps variable-reference expressions (VariableExpr, AssignExpr, ThisExpr, SuperExpr) to the number of
// scopes between the reference and the scope in which the variable is declared. An expression missing from the map
// refers to a global.
type Locals map[ast.Expr]int

type funcType int

const (
	funcTypeNone funcType = iota
	funcTypeFunction
	funcTypeInitializer
	funcTypeMethod
)

type classType int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubclass
)

// scope maps a name to whether its declaration has finished being resolved (declared but not yet defined means its
// initialiser is currently being resolved).
type scope map[string]bool

// Resolve resolves every variable reference in program, returning the distance table described by [Locals].
// Static errors are returned as a [lox.Errors].
func Resolve(program *ast.Program) (Locals, error) {
	r := &resolver{locals: Locals{}}
	r.resolveStmts(program.Stmts)
	return r.locals, r.errs.Err()
}

type resolver struct {
	scopes          []scope
	currentFunction funcType
	currentClass    classType
	locals          Locals
	errs            lox.Errors
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.errs.Add(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *resolver) defineName(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any enclosing scope, assume it's global.
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.VarStmt:
		r.resolveVarStmt(stmt)
	case *ast.FunctionStmt:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt, funcTypeFunction)
	case *ast.ClassStmt:
		r.resolveClassStmt(stmt)
	case *ast.ExpressionStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(stmt.Stmts)
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Then)
		if stmt.Else != nil {
			r.resolveStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Body)
	case *ast.ReturnStmt:
		r.resolveReturnStmt(stmt)
	case *ast.IllegalStmt:
		// Nothing to resolve.
	default:
		panic(fmt.Sprintf("resolver: unhandled statement type %T", stmt))
	}
}

func (r *resolver) resolveVarStmt(stmt *ast.VarStmt) {
	r.declare(stmt.Name)
	if stmt.Initial != nil {
		r.resolveExpr(stmt.Initial)
	}
	r.define(stmt.Name)
}

func (r *resolver) resolveClassStmt(stmt *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classTypeClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.errs.Add(stmt.Superclass.Name, "A class can't inherit from itself.")
		} else {
			r.currentClass = classTypeSubclass
			r.resolveExpr(stmt.Superclass)
		}
		r.beginScope()
		defer r.endScope()
		r.defineName("super")
	}

	r.beginScope()
	defer r.endScope()
	r.defineName("this")

	for _, method := range stmt.Methods {
		funcType := funcTypeMethod
		if method.Name.Lexeme == token.InitIdent {
			funcType = funcTypeInitializer
		}
		r.resolveFunction(method, funcType)
	}
}

func (r *resolver) resolveFunction(fn *ast.FunctionStmt, typ funcType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = typ
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	defer r.endScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
}

func (r *resolver) resolveReturnStmt(stmt *ast.ReturnStmt) {
	if r.currentFunction == funcTypeNone {
		r.errs.Add(stmt.Return, "Can't return from top-level code.")
	}
	if stmt.Value != nil {
		if r.currentFunction == funcTypeInitializer {
			r.errs.Add(stmt.Value, "Can't return a value from an initializer.")
		}
		r.resolveExpr(stmt.Value)
	}
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case *ast.VariableExpr:
		r.resolveVariableExpr(expr)
	case *ast.AssignExpr:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr, expr.Name.Lexeme)
	case *ast.BinaryExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.CallExpr:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case *ast.GetExpr:
		r.resolveExpr(expr.Object)
	case *ast.SetExpr:
		r.resolveExpr(expr.Value)
		r.resolveExpr(expr.Object)
	case *ast.SuperExpr:
		r.resolveSuperExpr(expr)
	case *ast.ThisExpr:
		r.resolveThisExpr(expr)
	case *ast.GroupingExpr:
		r.resolveExpr(expr.Inner)
	case *ast.UnaryExpr:
		r.resolveExpr(expr.Right)
	case *ast.LiteralExpr:
		// Nothing to resolve.
	case *ast.IllegalExpr:
		// Nothing to resolve.
	default:
		panic(fmt.Sprintf("resolver: unhandled expression type %T", expr))
	}
}

func (r *resolver) resolveVariableExpr(expr *ast.VariableExpr) {
	if len(r.scopes) > 0 {
		if defined, ok := r.scopes[len(r.scopes)-1][expr.Name.Lexeme]; ok && !defined {
			r.errs.Add(expr.Name, "Can't read local variable in its own initializer.")
			return
		}
	}
	r.resolveLocal(expr, expr.Name.Lexeme)
}

func (r *resolver) resolveThisExpr(expr *ast.ThisExpr) {
	if r.currentClass == classTypeNone {
		r.errs.Add(expr.Keyword, "Can't use 'this' outside of a class.")
		return
	}
	r.resolveLocal(expr, "this")
}

func (r *resolver) resolveSuperExpr(expr *ast.SuperExpr) {
	switch r.currentClass {
	case classTypeNone:
		r.errs.Add(expr.Keyword, "Can't use 'super' outside a class.")
		return
	case classTypeClass:
		r.errs.Add(expr.Keyword, "Can't use 'super' in a class with no superclass.")
		return
	}
	r.resolveLocal(expr, "super")
}
