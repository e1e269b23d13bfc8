// Package parser implements a recursive-descent parser for Lox source code.
package parser

import (
	"slices"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/lox"
	"github.com/loxlang/golox/scanner"
	"github.com/loxlang/golox/token"
)

const maxArgs = 255

// Parse parses the named source code into a program. If an error is returned, it's a [lox.Errors]; an incomplete AST
// is still returned alongside it, with [ast.IllegalStmt]/[ast.IllegalExpr] nodes standing in for the parts that
// failed to parse.
func Parse(filename string, src []byte) (*ast.Program, error) {
	p := &parser{sc: scanner.New(filename, src)}
	p.next()
	p.next()
	program := &ast.Program{Stmts: p.parseDeclsUntil(token.EOF)}
	errs := append(lox.Errors{}, p.sc.Errs()...)
	errs = append(errs, p.errs...)
	return program, errs.Err()
}

type parser struct {
	sc      *scanner.Scanner
	tok     token.Token // token currently being considered
	nextTok token.Token

	errs       lox.Errors
	lastErrPos token.Position
}

// unwind is used as a panic value so that we can unwind the stack and recover from a parsing error without checking
// for an error after every call to each parsing method.
type unwind struct{}

func (p *parser) next() {
	p.tok = p.nextTok
	p.nextTok = p.sc.Next()
}

func (p *parser) addErrorf(rang token.Range, format string, args ...any) {
	start := rang.Start()
	if len(p.errs) > 0 && start == p.lastErrPos {
		return
	}
	p.lastErrPos = start
	p.errs.Add(rang, format, args...)
}

// match reports whether the current token is one of the given types and advances the parser if so.
func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.tok.Type == t {
			p.next()
			return true
		}
	}
	return false
}

// match2 is like match but also returns the matched token.
func (p *parser) match2(types ...token.Type) (token.Token, bool) {
	tok := p.tok
	return tok, p.match(types...)
}

// expect returns the current token and advances the parser if it has the given type. Otherwise it reports an
// "Expect %m." error and panics with unwind{} to unwind the stack.
func (p *parser) expect(t token.Type) token.Token {
	return p.expectf(t, "Expect %m.", t)
}

func (p *parser) expectf(t token.Type, format string, args ...any) token.Token {
	if p.tok.Type == t {
		tok := p.tok
		p.next()
		return tok
	}
	p.addErrorf(p.tok, format, args...)
	panic(unwind{})
}

// sync synchronises the parser with the next declaration/statement. Used to recover from a parse error.
// Returns the final token consumed before the next declaration/statement.
func (p *parser) sync() token.Token {
	finalTok := p.tok
	for {
		if p.tok.Type == token.Semicolon {
			finalTok = p.tok
			p.next()
			return finalTok
		}
		switch p.tok.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return, token.EOF:
			return finalTok
		}
		finalTok = p.tok
		p.next()
	}
}

func (p *parser) parseDeclsUntil(types ...token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for !slices.Contains(types, p.tok.Type) {
		stmts = append(stmts, p.safelyParseDecl())
	}
	return stmts
}

func (p *parser) safelyParseDecl() (stmt ast.Stmt) {
	from := p.tok
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				to := p.sync()
				stmt = &ast.IllegalStmt{From: from, To: to}
			} else {
				panic(r)
			}
		}
	}()
	return p.parseDecl()
}

func (p *parser) parseDecl() ast.Stmt {
	switch {
	case p.tok.Type == token.Class:
		return p.parseClassDecl()
	case p.tok.Type == token.Fun && p.nextTok.Type == token.Ident:
		return p.parseFunDecl()
	case p.tok.Type == token.Var:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

func (p *parser) parseClassDecl() ast.Stmt {
	classTok := p.expect(token.Class)
	name := p.expectf(token.Ident, "Expect class name.")

	var superclass *ast.VariableExpr
	if p.match(token.Less) {
		superclassName := p.expectf(token.Ident, "Expect superclass name.")
		superclass = &ast.VariableExpr{Name: superclassName}
	}

	p.expect(token.LeftBrace)
	var methods []*ast.FunctionStmt
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		methods = append(methods, p.parseFunction())
	}
	rbrace := p.expect(token.RightBrace)

	return &ast.ClassStmt{
		Class:      classTok,
		Name:       name,
		Superclass: superclass,
		Methods:    methods,
		Rbrace:     rbrace,
	}
}

func (p *parser) parseFunDecl() ast.Stmt {
	p.expect(token.Fun)
	return p.parseFunction()
}

// parseFunction parses a function/method declaration after the leading "fun" keyword (if any) has been consumed.
func (p *parser) parseFunction() *ast.FunctionStmt {
	funTok := p.tok
	name := p.expectf(token.Ident, "Expect function name.")
	p.expect(token.LeftParen)
	var params []token.Token
	if p.tok.Type != token.RightParen {
		for {
			if len(params) >= maxArgs {
				p.addErrorf(p.tok, "Can't have more than %d parameters.", maxArgs)
			}
			params = append(params, p.expectf(token.Ident, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RightParen)
	lbrace := p.expect(token.LeftBrace)
	body, rbrace := p.parseBlockBody(lbrace)
	return &ast.FunctionStmt{Fun: funTok, Name: name, Params: params, Body: body, Rbrace: rbrace}
}

func (p *parser) parseVarDecl() ast.Stmt {
	varTok := p.expect(token.Var)
	name := p.expectf(token.Ident, "Expect variable name.")
	var initial ast.Expr
	if p.match(token.Equal) {
		initial = p.parseExpr()
	}
	semicolon := p.expectf(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Var: varTok, Name: name, Initial: initial, Semicolon: semicolon}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Type {
	case token.Print:
		return p.parsePrintStmt()
	case token.LeftBrace:
		lbrace := p.tok
		p.next()
		stmts, rbrace := p.parseBlockBody(lbrace)
		return &ast.BlockStmt{Lbrace: lbrace, Stmts: stmts, Rbrace: rbrace}
	case token.If:
		return p.parseIfStmt()
	case token.While:
		return p.parseWhileStmt()
	case token.For:
		return p.parseForStmt()
	case token.Return:
		return p.parseReturnStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseBlockBody(lbrace token.Token) ([]ast.Stmt, token.Token) {
	stmts := p.parseDeclsUntil(token.RightBrace, token.EOF)
	rbrace := p.expectf(token.RightBrace, "Expect '}' after block.")
	return stmts, rbrace
}

func (p *parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	semicolon := p.expectf(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExpressionStmt{Expr: expr, Semicolon: semicolon}
}

func (p *parser) parsePrintStmt() ast.Stmt {
	printTok := p.expect(token.Print)
	expr := p.parseExpr()
	semicolon := p.expectf(token.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Print: printTok, Expr: expr, Semicolon: semicolon}
}

func (p *parser) parseIfStmt() ast.Stmt {
	ifTok := p.expect(token.If)
	p.expectf(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.parseExpr()
	p.expectf(token.RightParen, "Expect ')' after if condition.")
	then := p.parseStmt()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.parseStmt()
	}
	return &ast.IfStmt{If: ifTok, Condition: cond, Then: then, Else: elseStmt}
}

func (p *parser) parseWhileStmt() ast.Stmt {
	whileTok := p.expect(token.While)
	p.expectf(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.parseExpr()
	p.expectf(token.RightParen, "Expect ')' after condition.")
	body := p.parseStmt()
	return &ast.WhileStmt{While: whileTok, Condition: cond, Body: body}
}

// parseForStmt parses a for statement and immediately desugars it into a while loop, optionally nested in one or
// two blocks, so that no separate AST node for "for" ever exists.
func (p *parser) parseForStmt() ast.Stmt {
	forTok := p.expect(token.For)
	p.expectf(token.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.tok.Type == token.Var:
		initializer = p.parseVarDecl()
	default:
		initializer = p.parseExprStmt()
	}

	var cond ast.Expr
	if p.tok.Type != token.Semicolon {
		cond = p.parseExpr()
	}
	p.expectf(token.Semicolon, "Expect ';' after loop condition.")

	var update ast.Expr
	if p.tok.Type != token.RightParen {
		update = p.parseExpr()
	}
	p.expectf(token.RightParen, "Expect ')' after for clauses.")

	body := p.parseStmt()

	if update != nil {
		body = &ast.BlockStmt{
			Lbrace: forTok,
			Stmts:  []ast.Stmt{body, &ast.ExpressionStmt{Expr: update, Semicolon: forTok}},
			Rbrace: forTok,
		}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Value: token.Token{Type: token.True, Lexeme: "true", StartPos: forTok.Start(), EndPos: forTok.Start()}}
	}
	body = &ast.WhileStmt{While: forTok, Condition: cond, Body: body}

	if initializer != nil {
		body = &ast.BlockStmt{Lbrace: forTok, Stmts: []ast.Stmt{initializer, body}, Rbrace: forTok}
	}

	return body
}

func (p *parser) parseReturnStmt() ast.Stmt {
	returnTok := p.expect(token.Return)
	var value ast.Expr
	if p.tok.Type != token.Semicolon {
		value = p.parseExpr()
	}
	semicolon := p.expectf(token.Semicolon, "Expect ';' after return value.")
	return &ast.ReturnStmt{Return: returnTok, Value: value, Semicolon: semicolon}
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignmentExpr()
}

func (p *parser) parseAssignmentExpr() ast.Expr {
	expr := p.parseLogicOrExpr()
	if equals, ok := p.match2(token.Equal); ok {
		value := p.parseAssignmentExpr()
		switch left := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: left.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Object: left.Object, Name: left.Name, Value: value}
		default:
			p.addErrorf(equals, "Invalid assignment target.")
			return expr
		}
	}
	return expr
}

func (p *parser) parseLogicOrExpr() ast.Expr {
	expr := p.parseLogicAndExpr()
	for {
		op, ok := p.match2(token.Or)
		if !ok {
			return expr
		}
		right := p.parseLogicAndExpr()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseLogicAndExpr() ast.Expr {
	expr := p.parseEqualityExpr()
	for {
		op, ok := p.match2(token.And)
		if !ok {
			return expr
		}
		right := p.parseEqualityExpr()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseEqualityExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseComparisonExpr, token.EqualEqual, token.BangEqual)
}

func (p *parser) parseComparisonExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseTermExpr, token.Less, token.LessEqual, token.Greater, token.GreaterEqual)
}

func (p *parser) parseTermExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseFactorExpr, token.Plus, token.Minus)
}

func (p *parser) parseFactorExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseUnaryExpr, token.Asterisk, token.Slash)
}

// parseBinaryExpr parses a left-associative binary expression using the given operators. next parses an expression
// of the next highest precedence.
func (p *parser) parseBinaryExpr(next func() ast.Expr, operators ...token.Type) ast.Expr {
	expr := next()
	for {
		op, ok := p.match2(operators...)
		if !ok {
			return expr
		}
		right := next()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	if op, ok := p.match2(token.Bang, token.Minus); ok {
		right := p.parseUnaryExpr()
		return &ast.UnaryExpr{Op: op, Right: right}
	}
	return p.parseCallExpr()
}

func (p *parser) parseCallExpr() ast.Expr {
	expr := p.parsePrimaryExpr()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expectf(token.Ident, "Expect property name after '.'.")
			expr = &ast.GetExpr{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.tok.Type != token.RightParen {
		for {
			if len(args) >= maxArgs {
				p.addErrorf(p.tok, "Can't have more than %d arguments.", maxArgs)
			}
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	rparen := p.expectf(token.RightParen, "Expect ')' after arguments.")
	return &ast.CallExpr{Callee: callee, ClosingParen: rparen, Args: args}
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch tok := p.tok; {
	case p.match(token.Number, token.String, token.True, token.False, token.Nil):
		return &ast.LiteralExpr{Value: tok}
	case p.match(token.This):
		return &ast.ThisExpr{Keyword: tok}
	case p.match(token.Super):
		keyword := tok
		p.expectf(token.Dot, "Expect '.' after 'super'.")
		method := p.expectf(token.Ident, "Expect superclass method name.")
		return &ast.SuperExpr{Keyword: keyword, Method: method}
	case p.match(token.Ident):
		return &ast.VariableExpr{Name: tok}
	case p.match(token.LeftParen):
		inner := p.parseExpr()
		rparen := p.expectf(token.RightParen, "Expect ')' after expression.")
		return &ast.GroupingExpr{Lparen: tok, Inner: inner, Rparen: rparen}
	default:
		p.addErrorf(tok, "Expect expression.")
		panic(unwind{})
	}
}
