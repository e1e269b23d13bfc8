package parser_test

import (
	"testing"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse("test.lox", []byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return program
}

func TestParseExpressionPrecedence(t *testing.T) {
	program := mustParse(t, "1 + 2 * 3;")
	if len(program.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Stmts))
	}
	exprStmt, ok := program.Stmts[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ExpressionStmt", program.Stmts[0])
	}
	binary, ok := exprStmt.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", exprStmt.Expr)
	}
	if binary.Op.Lexeme != "+" {
		t.Fatalf("got top-level operator %q, want +", binary.Op.Lexeme)
	}
	if _, ok := binary.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("right-hand side is %T, want *ast.BinaryExpr (the * 3 multiplication)", binary.Right)
	}
}

func TestParseForLoopDesugarsToWhileInBlock(t *testing.T) {
	program := mustParse(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if len(program.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Stmts))
	}
	outer, ok := program.Stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.BlockStmt", program.Stmts[0])
	}
	if len(outer.Stmts) != 2 {
		t.Fatalf("got %d statements in desugared block, want 2 (init + while)", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ast.VarStmt); !ok {
		t.Errorf("first statement is %T, want *ast.VarStmt", outer.Stmts[0])
	}
	whileStmt, ok := outer.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.WhileStmt", outer.Stmts[1])
	}
	body, ok := whileStmt.Body.(*ast.BlockStmt)
	if !ok {
		t.Fatalf("while body is %T, want *ast.BlockStmt (print stmt + increment)", whileStmt.Body)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("got %d statements in while body, want 2 (print + increment)", len(body.Stmts))
	}
}

func TestParseForLoopWithoutClausesDesugars(t *testing.T) {
	program := mustParse(t, `for (;;) print 1;`)
	whileStmt, ok := program.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.WhileStmt", program.Stmts[0])
	}
	lit, ok := whileStmt.Condition.(*ast.LiteralExpr)
	if !ok || lit.Value.Lexeme != "true" {
		t.Errorf("missing condition should default to literal true, got %#v", whileStmt.Condition)
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	program := mustParse(t, `class B < A { method() { return 1; } }`)
	classStmt, ok := program.Stmts[0].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ClassStmt", program.Stmts[0])
	}
	if classStmt.Superclass == nil {
		t.Fatal("expected non-nil Superclass")
	}
	if classStmt.Superclass.Name.Lexeme != "A" {
		t.Errorf("got superclass name %q, want A", classStmt.Superclass.Name.Lexeme)
	}
	if len(classStmt.Methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(classStmt.Methods))
	}
}

func TestParseInvalidAssignmentTargetIsNonFatal(t *testing.T) {
	program, err := parser.Parse("test.lox", []byte(`1 + 2 = 3; print "still parsed";`))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if len(program.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(program.Stmts))
	}
	if _, ok := program.Stmts[1].(*ast.PrintStmt); !ok {
		t.Errorf("second statement is %T, want *ast.PrintStmt", program.Stmts[1])
	}
}

func TestParseSynchronizesAfterError(t *testing.T) {
	program, err := parser.Parse("test.lox", []byte("var ; print 1;"))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	found := false
	for _, stmt := range program.Stmts {
		if print, ok := stmt.(*ast.PrintStmt); ok {
			found = true
			lit := print.Expr.(*ast.LiteralExpr)
			if lit.Value.Lexeme != "1" {
				t.Errorf("got print expr %q, want 1", lit.Value.Lexeme)
			}
		}
	}
	if !found {
		t.Error("parser did not recover and parse the statement following the error")
	}
}

func TestParseTooManyCallArguments(t *testing.T) {
	var b []byte
	b = append(b, "f("...)
	for i := 0; i < 256; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '1')
	}
	b = append(b, ");"...)
	_, err := parser.Parse("test.lox", b)
	if err == nil {
		t.Fatal("expected an error for more than 255 arguments, got nil")
	}
}
