// Package parser implements a recursive descent parser for MinC
package parser

import (
	"fmt"
	"strconv"

	"github.com/minc-lang/mincc/pkg/ast"
	"github.com/minc-lang/mincc/pkg/lexer"
)

// Precedence levels for Pratt parsing (lowest to highest)
const (
	precLowest     = 0
	precAssign     = 1 // =
	precOr         = 2 // ||
	precAnd        = 3 // &&
	precEquality   = 4 // ==, !=
	precRelational = 5 // <, <=, >, >=
	precAdditive   = 6 // +, -
	precMulti      = 7 // *, /, %
)

var precedences = map[lexer.TokenType]int{
	lexer.TokenAssign:  precAssign,
	lexer.TokenOr:      precOr,
	lexer.TokenAnd:     precAnd,
	lexer.TokenEq:      precEquality,
	lexer.TokenNe:      precEquality,
	lexer.TokenLt:      precRelational,
	lexer.TokenLe:      precRelational,
	lexer.TokenGt:      precRelational,
	lexer.TokenGe:      precRelational,
	lexer.TokenPlus:    precAdditive,
	lexer.TokenMinus:   precAdditive,
	lexer.TokenStar:    precMulti,
	lexer.TokenSlash:   precMulti,
	lexer.TokenPercent: precMulti,
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokenAssign:  ast.OpAssign,
	lexer.TokenOr:      ast.OpOr,
	lexer.TokenAnd:     ast.OpAnd,
	lexer.TokenEq:      ast.OpEq,
	lexer.TokenNe:      ast.OpNe,
	lexer.TokenLt:      ast.OpLt,
	lexer.TokenLe:      ast.OpLe,
	lexer.TokenGt:      ast.OpGt,
	lexer.TokenGe:      ast.OpGe,
	lexer.TokenPlus:    ast.OpAdd,
	lexer.TokenMinus:   ast.OpSub,
	lexer.TokenStar:    ast.OpMul,
	lexer.TokenSlash:   ast.OpDiv,
	lexer.TokenPercent: ast.OpMod,
}

// Parser parses MinC source code into an AST
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

// ParseProgram parses a complete translation unit
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(lexer.TokenEOF) {
		def := p.parseDefFun()
		if def == nil {
			break
		}
		prog.Defs = append(prog.Defs, def)
	}
	return prog
}

// parseDefFun parses a function definition:
// long name(long a, long b) { ... }
func (p *Parser) parseDefFun() ast.Def {
	if !p.expect(lexer.TokenLong) {
		return nil
	}

	if !p.curTokenIs(lexer.TokenIdent) {
		p.addError(fmt.Sprintf("expected function name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.expect(lexer.TokenLParen) {
		return nil
	}

	params, ok := p.parseParameterList()
	if !ok {
		return nil
	}

	if !p.curTokenIs(lexer.TokenLBrace) {
		p.addError(fmt.Sprintf("expected function body, got %s", p.curToken.Type))
		return nil
	}
	body := p.parseCompound()

	return ast.DefFun{
		Name:       name,
		Params:     params,
		ReturnType: ast.TLong,
		Body:       body,
	}
}

// parseParameterList parses the parameters up to and including the
// closing parenthesis.
func (p *Parser) parseParameterList() ([]ast.Param, bool) {
	var params []ast.Param

	if p.curTokenIs(lexer.TokenRParen) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expect(lexer.TokenLong) {
			return nil, false
		}
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected parameter name, got %s", p.curToken.Type))
			return nil, false
		}
		params = append(params, ast.Param{Type: ast.TLong, Name: p.curToken.Literal})
		p.nextToken()

		if p.curTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expect(lexer.TokenRParen) {
		return nil, false
	}
	return params, true
}

// parseCompound parses a compound statement. Declarations appear at
// the head of the block, before any statement.
func (p *Parser) parseCompound() ast.Stmt {
	p.nextToken() // consume '{'

	var comp ast.Compound
	for p.curTokenIs(lexer.TokenLong) {
		p.nextToken()
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected variable name, got %s", p.curToken.Type))
			return comp
		}
		comp.Decls = append(comp.Decls, ast.Decl{Type: ast.TLong, Name: p.curToken.Literal})
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return comp
		}
	}

	for !p.curTokenIs(lexer.TokenRBrace) && !p.curTokenIs(lexer.TokenEOF) {
		comp.Stmts = append(comp.Stmts, p.parseStatement())
	}
	p.expect(lexer.TokenRBrace)
	return comp
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case lexer.TokenSemicolon:
		p.nextToken()
		return ast.Empty{}
	case lexer.TokenBreak:
		p.nextToken()
		p.expect(lexer.TokenSemicolon)
		return ast.Break{}
	case lexer.TokenContinue:
		p.nextToken()
		p.expect(lexer.TokenSemicolon)
		return ast.Continue{}
	case lexer.TokenReturn:
		p.nextToken()
		expr := p.parseExpression(precLowest)
		p.expect(lexer.TokenSemicolon)
		return ast.Return{Expr: expr}
	case lexer.TokenLBrace:
		return p.parseCompound()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	default:
		expr := p.parseExpression(precLowest)
		p.expect(lexer.TokenSemicolon)
		return ast.ExprStmt{Expr: expr}
	}
}

func (p *Parser) parseIfStatement() ast.Stmt {
	p.nextToken() // consume 'if'
	if !p.expect(lexer.TokenLParen) {
		return ast.Empty{}
	}
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.TokenRParen) {
		return ast.Empty{}
	}
	then := p.parseStatement()

	var elseStmt ast.Stmt
	if p.curTokenIs(lexer.TokenElse) {
		p.nextToken()
		elseStmt = p.parseStatement()
	}
	return ast.If{Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	p.nextToken() // consume 'while'
	if !p.expect(lexer.TokenLParen) {
		return ast.Empty{}
	}
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.TokenRParen) {
		return ast.Empty{}
	}
	body := p.parseStatement()
	return ast.While{Cond: cond, Body: body}
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return precLowest
}

// parseExpression parses an expression with operators of precedence
// higher than minPrec. Assignment is right-associative; all other
// binary operators are left-associative.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec := p.curPrecedence()
		if prec <= minPrec {
			return left
		}
		op := binaryOps[p.curToken.Type]
		p.nextToken()

		var right ast.Expr
		if op == ast.OpAssign {
			right = p.parseExpression(prec - 1)
		} else {
			right = p.parseExpression(prec)
		}
		left = ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.curToken.Type {
	case lexer.TokenMinus:
		p.nextToken()
		return ast.Unary{Op: ast.OpNeg, Expr: p.parseUnary()}
	case lexer.TokenNot:
		p.nextToken()
		return ast.Unary{Op: ast.OpNot, Expr: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any number of
// call suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for p.curTokenIs(lexer.TokenLParen) {
		expr = p.parseCall(expr)
	}
	return expr
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.nextToken() // consume '('

	var args []ast.Expr
	if !p.curTokenIs(lexer.TokenRParen) {
		args = append(args, p.parseExpression(precLowest))
		for p.curTokenIs(lexer.TokenComma) {
			p.nextToken()
			args = append(args, p.parseExpression(precLowest))
		}
	}
	p.expect(lexer.TokenRParen)
	return ast.Call{Callee: callee, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.curToken.Type {
	case lexer.TokenInt:
		value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid integer literal %q", p.curToken.Literal))
		}
		p.nextToken()
		return ast.IntLit{Value: value}
	case lexer.TokenIdent:
		name := p.curToken.Literal
		p.nextToken()
		return ast.Ident{Name: name}
	case lexer.TokenLParen:
		p.nextToken()
		inner := p.parseExpression(precLowest)
		p.expect(lexer.TokenRParen)
		return ast.Paren{Expr: inner}
	default:
		p.addError(fmt.Sprintf("unexpected token %s in expression", p.curToken.Type))
		p.nextToken()
		return ast.IntLit{Value: 0}
	}
}
