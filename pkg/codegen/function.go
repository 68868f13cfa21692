package codegen

import (
	"fmt"

	"github.com/minc-lang/mincc/pkg/asm"
	"github.com/minc-lang/mincc/pkg/ast"
)

// funcGen holds the state for lowering one function body.
type funcGen struct {
	em       *Emitter
	env      Env
	fn       *asm.Function
	retLabel asm.Label
}

// lookup resolves a variable to its frame offset.
func (g *funcGen) lookup(name string) (int64, error) {
	offset, ok := g.env[name]
	if !ok {
		return 0, fmt.Errorf("undefined variable %q", name)
	}
	return offset, nil
}

// genFunction lowers one function definition.
//
// Frame model: a single contiguous frame is allocated with
// sub sp, sp, #F, and x29 is pinned to the new sp for the rest of the
// function. All variable slots sit below x29. The epilogue label
// collects every return; the link register is not spilled, so the
// frame holds only variable slots.
func genFunction(em *Emitter, def ast.DefFun) (asm.Function, error) {
	decls := CollectDecls(def.Body)
	env, frameSize := NewEnv(def.Params, decls)

	fn := asm.NewFunction(def.Name)
	retLabel := asm.Label(fmt.Sprintf(".L_epilogue_%s", def.Name))

	// Prologue
	fn.Append(asm.SUBi{Rd: asm.SP, Rn: asm.SP, Imm: frameSize})
	fn.Append(asm.MOV{Rd: asm.X29, Rm: asm.SP})

	// Spill register-passed parameters into their frame slots
	spilled := len(def.Params)
	if spilled > maxRegArgs {
		spilled = maxRegArgs
	}
	for i := 0; i < spilled; i++ {
		fn.Append(asm.STR{Rt: asm.Reg(i), Rn: asm.X29, Ofs: -(slotSize + slotSize*int64(i))})
	}

	g := &funcGen{
		em:       em,
		env:      env,
		fn:       fn,
		retLabel: retLabel,
	}
	if err := g.genStmt(def.Body); err != nil {
		return asm.Function{}, fmt.Errorf("function %s: %w", def.Name, err)
	}

	// Epilogue
	fn.AppendLabel(retLabel)
	fn.Append(asm.ADDi{Rd: asm.SP, Rn: asm.SP, Imm: frameSize})
	fn.Append(asm.RET{})

	return *fn, nil
}
