// Package ast declares the types used to represent abstract syntax trees of Lox programs.
//
// Every node is represented by a pointer type so that two syntactically identical nodes never compare equal: the
// resolver's side-table is keyed on node identity, not node shape.
package ast

import "github.com/loxlang/golox/token"

// Node is the interface which all AST nodes implement.
type Node interface {
	token.Range
	isNode()
}

type node struct{}

func (node) isNode() {}

// Program is the root node of the AST: the list of statements which make up a Lox program.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Start() token.Position {
	if len(p.Stmts) == 0 {
		return token.Position{}
	}
	return p.Stmts[0].Start()
}

func (p *Program) End() token.Position {
	if len(p.Stmts) == 0 {
		return token.Position{}
	}
	return p.Stmts[len(p.Stmts)-1].End()
}

// Stmt is the interface which all statement nodes implement.
//
//sumtype:decl
type Stmt interface {
	Node
	isStmt()
}

type stmt struct{ node }

func (stmt) isStmt() {}

// IllegalStmt is used as a placeholder in the AST wherever parsing a statement failed.
type IllegalStmt struct {
	From, To token.Token
	stmt
}

func (s *IllegalStmt) Start() token.Position { return s.From.Start() }
func (s *IllegalStmt) End() token.Position   { return s.To.End() }

// VarStmt is a variable declaration, such as var a = 123 or var b.
type VarStmt struct {
	Var        token.Token
	Name       token.Token
	Initial    Expr // nil if the declaration has no initialiser
	Semicolon token.Token
	stmt
}

func (s *VarStmt) Start() token.Position { return s.Var.Start() }
func (s *VarStmt) End() token.Position   { return s.Semicolon.End() }

// FunctionStmt is a function declaration, such as fun add(x, y) { return x + y; }.
type FunctionStmt struct {
	Fun    token.Token
	Name   token.Token
	Params []token.Token
	Body   []Stmt
	Rbrace token.Token
	stmt
}

func (s *FunctionStmt) Start() token.Position { return s.Fun.Start() }
func (s *FunctionStmt) End() token.Position   { return s.Rbrace.End() }

// ClassStmt is a class declaration, such as
//
//	class Bagel < Pastry {
//	  init(toppings) { this.toppings = toppings; }
//	}
type ClassStmt struct {
	Class      token.Token
	Name       token.Token
	Superclass *VariableExpr // nil if the class has no superclass
	Methods    []*FunctionStmt
	Rbrace     token.Token
	stmt
}

func (s *ClassStmt) Start() token.Position { return s.Class.Start() }
func (s *ClassStmt) End() token.Position   { return s.Rbrace.End() }

// ExpressionStmt is an expression statement, such as a bare function call.
type ExpressionStmt struct {
	Expr       Expr
	Semicolon token.Token
	stmt
}

func (s *ExpressionStmt) Start() token.Position { return s.Expr.Start() }
func (s *ExpressionStmt) End() token.Position   { return s.Semicolon.End() }

// PrintStmt is a print statement, such as print "abc";.
type PrintStmt struct {
	Print      token.Token
	Expr       Expr
	Semicolon token.Token
	stmt
}

func (s *PrintStmt) Start() token.Position { return s.Print.Start() }
func (s *PrintStmt) End() token.Position   { return s.Semicolon.End() }

// BlockStmt is a brace-delimited sequence of statements which introduces its own lexical scope.
type BlockStmt struct {
	Lbrace token.Token
	Stmts  []Stmt
	Rbrace token.Token
	stmt
}

func (s *BlockStmt) Start() token.Position { return s.Lbrace.Start() }
func (s *BlockStmt) End() token.Position   { return s.Rbrace.End() }

// IfStmt is an if statement, with an optional else branch.
type IfStmt struct {
	If        token.Token
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if there's no else branch
	stmt
}

func (s *IfStmt) Start() token.Position { return s.If.Start() }
func (s *IfStmt) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Then.End()
}

// WhileStmt is a while statement.
type WhileStmt struct {
	While     token.Token
	Condition Expr
	Body      Stmt
	stmt
}

func (s *WhileStmt) Start() token.Position { return s.While.Start() }
func (s *WhileStmt) End() token.Position   { return s.Body.End() }

// ReturnStmt is a return statement, with an optional value.
//
// A for loop is desugared entirely at parse time into a while loop nested in one or two blocks (see the parser); it
// has no dedicated AST node.
type ReturnStmt struct {
	Return     token.Token
	Value      Expr // nil if no value is returned
	Semicolon token.Token
	stmt
}

func (s *ReturnStmt) Start() token.Position { return s.Return.Start() }
func (s *ReturnStmt) End() token.Position   { return s.Semicolon.End() }

// Expr is the interface which all expression nodes implement.
//
//sumtype:decl
type Expr interface {
	Node
	isExpr()
}

type expr struct{ node }

func (expr) isExpr() {}

// IllegalExpr is used as a placeholder in the AST wherever parsing an expression failed.
type IllegalExpr struct {
	From, To token.Token
	expr
}

func (e *IllegalExpr) Start() token.Position { return e.From.Start() }
func (e *IllegalExpr) End() token.Position   { return e.To.End() }

// LiteralExpr is a literal expression: a number, string, boolean or nil.
type LiteralExpr struct {
	Value token.Token
	expr
}

func (e *LiteralExpr) Start() token.Position { return e.Value.Start() }
func (e *LiteralExpr) End() token.Position   { return e.Value.End() }

// GroupingExpr is a parenthesised expression, such as (a + b).
type GroupingExpr struct {
	Lparen     token.Token
	Inner      Expr
	Rparen     token.Token
	expr
}

func (e *GroupingExpr) Start() token.Position { return e.Lparen.Start() }
func (e *GroupingExpr) End() token.Position   { return e.Rparen.End() }

// VariableExpr is a reference to a variable by name.
type VariableExpr struct {
	Name token.Token
	expr
}

func (e *VariableExpr) Start() token.Position { return e.Name.Start() }
func (e *VariableExpr) End() token.Position   { return e.Name.End() }

// ThisExpr is a use of the 'this' keyword inside a method.
type ThisExpr struct {
	Keyword token.Token
	expr
}

func (e *ThisExpr) Start() token.Position { return e.Keyword.Start() }
func (e *ThisExpr) End() token.Position   { return e.Keyword.End() }

// SuperExpr is a super method lookup, such as super.speak.
type SuperExpr struct {
	Keyword token.Token
	Method  token.Token
	expr
}

func (e *SuperExpr) Start() token.Position { return e.Keyword.Start() }
func (e *SuperExpr) End() token.Position   { return e.Method.End() }

// UnaryExpr is a unary operator expression, such as !a or -a.
type UnaryExpr struct {
	Op    token.Token
	Right Expr
	expr
}

func (e *UnaryExpr) Start() token.Position { return e.Op.Start() }
func (e *UnaryExpr) End() token.Position   { return e.Right.End() }

// BinaryExpr is a binary operator expression, such as a + b.
type BinaryExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
	expr
}

func (e *BinaryExpr) Start() token.Position { return e.Left.Start() }
func (e *BinaryExpr) End() token.Position   { return e.Right.End() }

// LogicalExpr is a short-circuiting 'and'/'or' expression.
type LogicalExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
	expr
}

func (e *LogicalExpr) Start() token.Position { return e.Left.Start() }
func (e *LogicalExpr) End() token.Position   { return e.Right.End() }

// CallExpr is a call expression, such as add(1, 2).
type CallExpr struct {
	Callee       Expr
	ClosingParen token.Token
	Args         []Expr
	expr
}

func (e *CallExpr) Start() token.Position { return e.Callee.Start() }
func (e *CallExpr) End() token.Position   { return e.ClosingParen.End() }

// GetExpr is a property access expression, such as a.b.
type GetExpr struct {
	Object Expr
	Name   token.Token
	expr
}

func (e *GetExpr) Start() token.Position { return e.Object.Start() }
func (e *GetExpr) End() token.Position   { return e.Name.End() }

// SetExpr is a property assignment expression, such as a.b = c.
type SetExpr struct {
	Object Expr
	Name   token.Token
	Value  Expr
	expr
}

func (e *SetExpr) Start() token.Position { return e.Object.Start() }
func (e *SetExpr) End() token.Position   { return e.Value.End() }

// AssignExpr is a variable assignment expression, such as a = 2.
type AssignExpr struct {
	Name  token.Token
	Value Expr
	expr
}

func (e *AssignExpr) Start() token.Position { return e.Name.Start() }
func (e *AssignExpr) End() token.Position   { return e.Value.End() }
