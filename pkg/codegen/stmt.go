package codegen

import (
	"fmt"

	"github.com/minc-lang/mincc/pkg/asm"
	"github.com/minc-lang/mincc/pkg/ast"
)

// genStmt lowers a statement. After each statement, control has
// either fallen through or branched to a label within the function.
func (g *funcGen) genStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.Empty:
		return nil

	case ast.ExprStmt:
		// Evaluated for side effects only; the value in x0 is dead.
		return g.genExpr(s.Expr, 0)

	case ast.Return:
		if s.Expr != nil {
			if err := g.genExpr(s.Expr, 0); err != nil {
				return err
			}
		}
		g.fn.Append(asm.B{Target: g.retLabel})
		return nil

	case ast.Break:
		target, err := g.em.CurrentBreak()
		if err != nil {
			return err
		}
		g.fn.Append(asm.B{Target: target})
		return nil

	case ast.Continue:
		target, err := g.em.CurrentContinue()
		if err != nil {
			return err
		}
		g.fn.Append(asm.B{Target: target})
		return nil

	case ast.Compound:
		// Declarations were already collected for the frame layout.
		for _, sub := range s.Stmts {
			if err := g.genStmt(sub); err != nil {
				return err
			}
		}
		return nil

	case ast.If:
		return g.genIf(s)

	case ast.While:
		return g.genWhile(s)

	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (g *funcGen) genIf(s ast.If) error {
	elseLabel := g.em.Fresh("else")
	endLabel := g.em.Fresh("end")

	if err := g.genCondBranch(s.Cond, elseLabel); err != nil {
		return err
	}
	if err := g.genStmt(s.Then); err != nil {
		return err
	}
	g.fn.Append(asm.B{Target: endLabel})
	g.fn.AppendLabel(elseLabel)
	if s.Else != nil {
		if err := g.genStmt(s.Else); err != nil {
			return err
		}
	}
	g.fn.AppendLabel(endLabel)
	return nil
}

func (g *funcGen) genWhile(s ast.While) error {
	loopLabel := g.em.Fresh("loop")
	endLabel := g.em.Fresh("end")

	// continue re-evaluates the condition at the top of the loop
	g.em.PushLoop(endLabel, loopLabel)
	g.fn.AppendLabel(loopLabel)
	if err := g.genCondBranch(s.Cond, endLabel); err != nil {
		return err
	}
	if err := g.genStmt(s.Body); err != nil {
		return err
	}
	g.fn.Append(asm.B{Target: loopLabel})
	g.fn.AppendLabel(endLabel)
	g.em.PopLoop()
	return nil
}

// genCondBranch lowers a condition and branches to falseTarget when
// it is zero. A top-level comparison is lowered straight to a
// compare-and-branch on the inverted condition instead of
// materializing 0 or 1 in x0.
func (g *funcGen) genCondBranch(cond ast.Expr, falseTarget asm.Label) error {
	if b, ok := cond.(ast.Binary); ok && b.Op.IsComparison() {
		save := scratch(0)
		if err := g.genExpr(b.Left, 1); err != nil {
			return err
		}
		g.fn.Append(asm.MOV{Rd: save, Rm: asm.X0})
		if err := g.genExpr(b.Right, 1); err != nil {
			return err
		}
		g.fn.Append(asm.CMP{Rn: save, Rm: asm.X0})
		g.fn.Append(asm.Bcond{Cond: condCode(b.Op).Invert(), Target: falseTarget})
		return nil
	}

	if err := g.genExpr(cond, 0); err != nil {
		return err
	}
	g.fn.Append(asm.CMPi{Rn: asm.X0, Imm: 0})
	g.fn.Append(asm.Bcond{Cond: asm.CondEQ, Target: falseTarget})
	return nil
}
