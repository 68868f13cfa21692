package parser

import (
	"testing"

	"github.com/minc-lang/mincc/pkg/ast"
	"github.com/minc-lang/mincc/pkg/lexer"
)

// parseProgram parses source and fails the test on parse errors.
func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	return prog
}

// firstFun returns the first definition as a DefFun.
func firstFun(t *testing.T, prog *ast.Program) ast.DefFun {
	t.Helper()
	if len(prog.Defs) == 0 {
		t.Fatal("expected at least one definition")
	}
	fun, ok := prog.Defs[0].(ast.DefFun)
	if !ok {
		t.Fatalf("expected DefFun, got %T", prog.Defs[0])
	}
	return fun
}

func TestParseFunctionDefinition(t *testing.T) {
	prog := parseProgram(t, `long add(long a, long b) { return a + b; }`)
	fun := firstFun(t, prog)

	if fun.Name != "add" {
		t.Errorf("expected name add, got %s", fun.Name)
	}
	if len(fun.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fun.Params))
	}
	if fun.Params[0].Name != "a" || fun.Params[1].Name != "b" {
		t.Errorf("unexpected param names: %v", fun.Params)
	}

	body, ok := fun.Body.(ast.Compound)
	if !ok {
		t.Fatalf("expected Compound body, got %T", fun.Body)
	}
	if len(body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(body.Stmts))
	}
	ret, ok := body.Stmts[0].(ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", body.Stmts[0])
	}
	bin, ok := ret.Expr.(ast.Binary)
	if !ok {
		t.Fatalf("expected Binary, got %T", ret.Expr)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("expected +, got %s", bin.Op)
	}
}

func TestParseNoParams(t *testing.T) {
	prog := parseProgram(t, `long zero() { return 0; }`)
	fun := firstFun(t, prog)
	if len(fun.Params) != 0 {
		t.Errorf("expected no params, got %d", len(fun.Params))
	}
}

func TestParseDeclarations(t *testing.T) {
	prog := parseProgram(t, `long f() { long x; long y; x = 1; return x; }`)
	fun := firstFun(t, prog)
	body := fun.Body.(ast.Compound)

	if len(body.Decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(body.Decls))
	}
	if body.Decls[0].Name != "x" || body.Decls[1].Name != "y" {
		t.Errorf("unexpected declaration names: %v", body.Decls)
	}
}

func TestPrecedence(t *testing.T) {
	// a + b * c parses as a + (b * c)
	prog := parseProgram(t, `long f(long a, long b, long c) { return a + b * c; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	add, ok := ret.Expr.(ast.Binary)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected + at top, got %v", ret.Expr)
	}
	mul, ok := add.Right.(ast.Binary)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected * on the right, got %v", add.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	// a - b - c parses as (a - b) - c
	prog := parseProgram(t, `long f(long a, long b, long c) { return a - b - c; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	outer, ok := ret.Expr.(ast.Binary)
	if !ok || outer.Op != ast.OpSub {
		t.Fatalf("expected - at top, got %v", ret.Expr)
	}
	inner, ok := outer.Left.(ast.Binary)
	if !ok || inner.Op != ast.OpSub {
		t.Fatalf("expected - on the left, got %v", outer.Left)
	}
}

func TestAssignmentRightAssociativity(t *testing.T) {
	// a = b = 1 parses as a = (b = 1)
	prog := parseProgram(t, `long f() { long a; long b; a = b = 1; return a; }`)
	fun := firstFun(t, prog)
	stmt := fun.Body.(ast.Compound).Stmts[0].(ast.ExprStmt)

	outer, ok := stmt.Expr.(ast.Binary)
	if !ok || outer.Op != ast.OpAssign {
		t.Fatalf("expected = at top, got %v", stmt.Expr)
	}
	inner, ok := outer.Right.(ast.Binary)
	if !ok || inner.Op != ast.OpAssign {
		t.Fatalf("expected = on the right, got %v", outer.Right)
	}
}

func TestComparisonPrecedence(t *testing.T) {
	// a < b + 1 parses as a < (b + 1)
	prog := parseProgram(t, `long f(long a, long b) { return a < b + 1; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	lt, ok := ret.Expr.(ast.Binary)
	if !ok || lt.Op != ast.OpLt {
		t.Fatalf("expected < at top, got %v", ret.Expr)
	}
	if _, ok := lt.Right.(ast.Binary); !ok {
		t.Fatalf("expected + on the right, got %T", lt.Right)
	}
}

func TestLogicalOperators(t *testing.T) {
	// a || b && c parses as a || (b && c)
	prog := parseProgram(t, `long f(long a, long b, long c) { return a || b && c; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	or, ok := ret.Expr.(ast.Binary)
	if !ok || or.Op != ast.OpOr {
		t.Fatalf("expected || at top, got %v", ret.Expr)
	}
	and, ok := or.Right.(ast.Binary)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("expected && on the right, got %v", or.Right)
	}
}

func TestUnaryOperators(t *testing.T) {
	prog := parseProgram(t, `long f(long x) { return -!x; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	neg, ok := ret.Expr.(ast.Unary)
	if !ok || neg.Op != ast.OpNeg {
		t.Fatalf("expected unary -, got %v", ret.Expr)
	}
	not, ok := neg.Expr.(ast.Unary)
	if !ok || not.Op != ast.OpNot {
		t.Fatalf("expected unary !, got %v", neg.Expr)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, `long f(long x) { if (x) return 1; else return 2; }`)
	fun := firstFun(t, prog)
	ifStmt, ok := fun.Body.(ast.Compound).Stmts[0].(ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", fun.Body.(ast.Compound).Stmts[0])
	}
	if ifStmt.Else == nil {
		t.Error("expected else branch")
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	prog := parseProgram(t, `long f(long x) { if (x) return 1; return 2; }`)
	fun := firstFun(t, prog)
	ifStmt := fun.Body.(ast.Compound).Stmts[0].(ast.If)
	if ifStmt.Else != nil {
		t.Errorf("expected no else branch, got %T", ifStmt.Else)
	}
}

func TestParseWhile(t *testing.T) {
	prog := parseProgram(t, `long f(long n) { while (n) n = n - 1; return n; }`)
	fun := firstFun(t, prog)
	while, ok := fun.Body.(ast.Compound).Stmts[0].(ast.While)
	if !ok {
		t.Fatalf("expected While, got %T", fun.Body.(ast.Compound).Stmts[0])
	}
	if _, ok := while.Body.(ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt body, got %T", while.Body)
	}
}

func TestParseBreakContinue(t *testing.T) {
	prog := parseProgram(t, `long f() { while (1) { break; continue; } return 0; }`)
	fun := firstFun(t, prog)
	while := fun.Body.(ast.Compound).Stmts[0].(ast.While)
	body := while.Body.(ast.Compound)

	if _, ok := body.Stmts[0].(ast.Break); !ok {
		t.Errorf("expected Break, got %T", body.Stmts[0])
	}
	if _, ok := body.Stmts[1].(ast.Continue); !ok {
		t.Errorf("expected Continue, got %T", body.Stmts[1])
	}
}

func TestParseEmptyStatement(t *testing.T) {
	prog := parseProgram(t, `long f() { ; return 0; }`)
	fun := firstFun(t, prog)
	if _, ok := fun.Body.(ast.Compound).Stmts[0].(ast.Empty); !ok {
		t.Errorf("expected Empty, got %T", fun.Body.(ast.Compound).Stmts[0])
	}
}

func TestParseCall(t *testing.T) {
	prog := parseProgram(t, `long f(long x) { return g(x, 1); }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	call, ok := ret.Expr.(ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", ret.Expr)
	}
	callee, ok := call.Callee.(ast.Ident)
	if !ok || callee.Name != "g" {
		t.Fatalf("expected callee g, got %v", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Errorf("expected 2 args, got %d", len(call.Args))
	}
}

func TestParseCallNoArgs(t *testing.T) {
	prog := parseProgram(t, `long f() { return g(); }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)
	call := ret.Expr.(ast.Call)
	if len(call.Args) != 0 {
		t.Errorf("expected 0 args, got %d", len(call.Args))
	}
}

func TestParseParen(t *testing.T) {
	prog := parseProgram(t, `long f(long a, long b) { return (a + b) * 2; }`)
	fun := firstFun(t, prog)
	ret := fun.Body.(ast.Compound).Stmts[0].(ast.Return)

	mul, ok := ret.Expr.(ast.Binary)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected * at top, got %v", ret.Expr)
	}
	if _, ok := mul.Left.(ast.Paren); !ok {
		t.Fatalf("expected Paren on the left, got %T", mul.Left)
	}
}

func TestParseMultipleDefinitions(t *testing.T) {
	prog := parseProgram(t, `
long one() { return 1; }
long two() { return 2; }
`)
	if len(prog.Defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(prog.Defs))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing semicolon", `long f() { return 1 }`},
		{"missing close paren", `long f( { return 1; }`},
		{"missing body", `long f()`},
		{"bad integer", `long f() { return 99999999999999999999; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.src))
			p.ParseProgram()
			if len(p.Errors()) == 0 {
				t.Error("expected parse errors, got none")
			}
		})
	}
}
