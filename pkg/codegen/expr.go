package codegen

import (
	"fmt"

	"github.com/minc-lang/mincc/pkg/asm"
	"github.com/minc-lang/mincc/pkg/ast"
)

// Expression lowering contract: the expression's 64-bit result is
// left in x0. Lowering may clobber x0..x7 and the scratch registers
// x9..x15; x29 and sp are preserved. The depth parameter selects the
// scratch register used to hold a saved left operand, so that the
// right operand of an enclosing operator can be lowered without
// disturbing it.

// scratch returns the scratch register for a nesting depth. The pool
// is x9..x15; deeper nesting saturates at x15. x8 is skipped: it is
// the indirect-result-location register.
func scratch(depth int) asm.Reg {
	if depth > 6 {
		depth = 6
	}
	return asm.X9 + asm.Reg(depth)
}

// condCode maps a comparison operator to the condition code that
// makes it true.
func condCode(op ast.BinaryOp) asm.CondCode {
	switch op {
	case ast.OpLt:
		return asm.CondLT
	case ast.OpGt:
		return asm.CondGT
	case ast.OpLe:
		return asm.CondLE
	case ast.OpGe:
		return asm.CondGE
	case ast.OpEq:
		return asm.CondEQ
	case ast.OpNe:
		return asm.CondNE
	}
	panic(fmt.Sprintf("codegen: not a comparison operator %q", op))
}

// genExpr lowers an expression, leaving its value in x0.
func (g *funcGen) genExpr(expr ast.Expr, depth int) error {
	switch e := expr.(type) {
	case ast.IntLit:
		g.fn.Append(asm.MOVi{Rd: asm.X0, Imm: e.Value})
		return nil

	case ast.Ident:
		offset, err := g.lookup(e.Name)
		if err != nil {
			return err
		}
		g.fn.Append(asm.LDR{Rt: asm.X0, Rn: asm.X29, Ofs: offset})
		return nil

	case ast.Paren:
		return g.genExpr(e.Expr, depth)

	case ast.Unary:
		return g.genUnary(e, depth)

	case ast.Binary:
		return g.genBinary(e, depth)

	case ast.Call:
		return g.genCall(e, depth)

	default:
		return fmt.Errorf("unsupported expression %T", expr)
	}
}

func (g *funcGen) genUnary(e ast.Unary, depth int) error {
	if err := g.genExpr(e.Expr, depth+1); err != nil {
		return err
	}
	switch e.Op {
	case ast.OpNeg:
		g.fn.Append(asm.NEG{Rd: asm.X0, Rm: asm.X0})
	case ast.OpNot:
		g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
		g.fn.Append(asm.CSET{Rd: asm.X0, Cond: asm.CondEQ})
	default:
		return fmt.Errorf("unsupported unary operator %q", e.Op)
	}
	return nil
}

func (g *funcGen) genBinary(e ast.Binary, depth int) error {
	switch e.Op {
	case ast.OpAssign:
		return g.genAssign(e, depth)
	case ast.OpAnd:
		return g.genLogicalAnd(e, depth)
	case ast.OpOr:
		return g.genLogicalOr(e, depth)
	}

	// Immediate-operand peephole: fold a literal right operand into
	// the operation instead of saving the left operand first.
	if lit, ok := e.Right.(ast.IntLit); ok {
		switch e.Op {
		case ast.OpAdd, ast.OpSub:
			if err := g.genExpr(e.Left, depth+1); err != nil {
				return err
			}
			if e.Op == ast.OpAdd {
				g.fn.Append(asm.ADDi{Rd: asm.X0, Rn: asm.X0, Imm: lit.Value})
			} else {
				g.fn.Append(asm.SUBi{Rd: asm.X0, Rn: asm.X0, Imm: lit.Value})
			}
			return nil
		case ast.OpMul, ast.OpDiv:
			if err := g.genExpr(e.Left, depth+1); err != nil {
				return err
			}
			save := scratch(depth)
			g.fn.Append(asm.MOVi{Rd: save, Imm: lit.Value})
			if e.Op == ast.OpMul {
				g.fn.Append(asm.MUL{Rd: asm.X0, Rn: asm.X0, Rm: save})
			} else {
				g.fn.Append(asm.SDIV{Rd: asm.X0, Rn: asm.X0, Rm: save})
			}
			return nil
		}
	}

	// General two-operand protocol: left operand saved in the scratch
	// register for this depth, right operand lowered into x0.
	save := scratch(depth)
	if err := g.genExpr(e.Left, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.MOV{Rd: save, Rm: asm.X0})
	if err := g.genExpr(e.Right, depth+1); err != nil {
		return err
	}

	switch e.Op {
	case ast.OpAdd:
		g.fn.Append(asm.ADD{Rd: asm.X0, Rn: save, Rm: asm.X0})
	case ast.OpSub:
		g.fn.Append(asm.SUB{Rd: asm.X0, Rn: save, Rm: asm.X0})
	case ast.OpMul:
		g.fn.Append(asm.MUL{Rd: asm.X0, Rn: save, Rm: asm.X0})
	case ast.OpDiv:
		g.fn.Append(asm.SDIV{Rd: asm.X0, Rn: save, Rm: asm.X0})
	case ast.OpMod:
		// r = save - (save / x0) * x0
		quot := scratch(depth + 1)
		g.fn.Append(asm.SDIV{Rd: quot, Rn: save, Rm: asm.X0})
		g.fn.Append(asm.MUL{Rd: quot, Rn: quot, Rm: asm.X0})
		g.fn.Append(asm.SUB{Rd: asm.X0, Rn: save, Rm: quot})
	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe, ast.OpEq, ast.OpNe:
		g.fn.Append(asm.CMP{Rn: save, Rm: asm.X0})
		g.fn.Append(asm.CSET{Rd: asm.X0, Cond: condCode(e.Op)})
	default:
		return fmt.Errorf("unsupported binary operator %q", e.Op)
	}
	return nil
}

// genAssign lowers an assignment. The left-hand side must be an
// identifier; the stored value remains in x0 as the expression result.
func (g *funcGen) genAssign(e ast.Binary, depth int) error {
	id, ok := e.Left.(ast.Ident)
	if !ok {
		return fmt.Errorf("assignment to non-identifier expression %T", e.Left)
	}
	offset, err := g.lookup(id.Name)
	if err != nil {
		return err
	}
	if err := g.genExpr(e.Right, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.STR{Rt: asm.X0, Rn: asm.X29, Ofs: offset})
	return nil
}

// genLogicalAnd lowers a && b: the right operand is evaluated only
// when the left operand is non-zero.
func (g *funcGen) genLogicalAnd(e ast.Binary, depth int) error {
	falseLabel := g.em.Fresh("false")
	endLabel := g.em.Fresh("end")

	if err := g.genExpr(e.Left, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
	g.fn.Append(asm.Bcond{Cond: asm.CondEQ, Target: falseLabel})
	if err := g.genExpr(e.Right, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
	g.fn.Append(asm.Bcond{Cond: asm.CondEQ, Target: falseLabel})
	g.fn.Append(asm.MOVi{Rd: asm.X0, Imm: 1})
	g.fn.Append(asm.B{Target: endLabel})
	g.fn.AppendLabel(falseLabel)
	g.fn.Append(asm.MOVi{Rd: asm.X0, Imm: 0})
	g.fn.AppendLabel(endLabel)
	return nil
}

// genLogicalOr lowers a || b: the right operand is evaluated only
// when the left operand is zero.
func (g *funcGen) genLogicalOr(e ast.Binary, depth int) error {
	trueLabel := g.em.Fresh("true")
	endLabel := g.em.Fresh("end")

	if err := g.genExpr(e.Left, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
	g.fn.Append(asm.Bcond{Cond: asm.CondNE, Target: trueLabel})
	if err := g.genExpr(e.Right, depth+1); err != nil {
		return err
	}
	g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
	g.fn.Append(asm.Bcond{Cond: asm.CondNE, Target: trueLabel})
	g.fn.Append(asm.MOVi{Rd: asm.X0, Imm: 0})
	g.fn.Append(asm.B{Target: endLabel})
	g.fn.AppendLabel(trueLabel)
	g.fn.Append(asm.MOVi{Rd: asm.X0, Imm: 1})
	g.fn.AppendLabel(endLabel)
	return nil
}

// genCall lowers a function call. Arguments are evaluated right to
// left and pushed on 16-byte-aligned stack slots, then the first
// eight are popped into x0..x7. Surplus arguments stay in their
// pushed slots for the callee to read above sp.
func (g *funcGen) genCall(e ast.Call, depth int) error {
	callee := e.Callee
	for {
		paren, ok := callee.(ast.Paren)
		if !ok {
			break
		}
		callee = paren.Expr
	}

	// An indirect callee is evaluated before the arguments and held
	// in this depth's scratch register; argument lowering only uses
	// deeper scratches.
	target, direct := callee.(ast.Ident)
	calleeReg := scratch(depth)
	if !direct {
		if err := g.genExpr(callee, depth+1); err != nil {
			return err
		}
		g.fn.Append(asm.MOV{Rd: calleeReg, Rm: asm.X0})
	}

	for i := len(e.Args) - 1; i >= 0; i-- {
		if err := g.genExpr(e.Args[i], depth+1); err != nil {
			return err
		}
		g.fn.Append(asm.STRpre{Rt: asm.X0, Rn: asm.SP, Dec: -16})
	}

	regArgs := len(e.Args)
	if regArgs > maxRegArgs {
		regArgs = maxRegArgs
	}
	for i := 0; i < regArgs; i++ {
		g.fn.Append(asm.LDRpost{Rt: asm.Reg(i), Rn: asm.SP, Inc: 16})
	}

	surplus := int64(len(e.Args) - maxRegArgs)
	if surplus > 0 {
		g.fn.Append(asm.SUBi{Rd: asm.SP, Rn: asm.SP, Imm: 16 * surplus})
	}
	if direct {
		g.fn.Append(asm.BL{Target: asm.Label(target.Name)})
	} else {
		g.fn.Append(asm.BLR{Rn: calleeReg})
	}
	if surplus > 0 {
		g.fn.Append(asm.ADDi{Rd: asm.SP, Rn: asm.SP, Imm: 16 * surplus})
	}
	return nil
}
