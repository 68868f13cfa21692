// Package codegen translates a MinC AST into AArch64 assembly.
// Each function is lowered independently: the frame is laid out from
// the parameter list and the declarations collected from the body,
// then expressions and statements are lowered into a flat instruction
// sequence with all control flow expressed through local labels.
package codegen

import (
	"fmt"
	"strings"

	"github.com/minc-lang/mincc/pkg/asm"
	"github.com/minc-lang/mincc/pkg/ast"
)

// TranslateProgram translates a MinC program into an assembly program.
// Labels are unique across the whole translation unit.
func TranslateProgram(prog *ast.Program) (*asm.Program, error) {
	em := NewEmitter()
	result := &asm.Program{
		Functions: make([]asm.Function, 0, len(prog.Defs)),
	}

	for _, def := range prog.Defs {
		fun, ok := def.(ast.DefFun)
		if !ok {
			return nil, fmt.Errorf("unsupported definition %T", def)
		}
		f, err := genFunction(em, fun)
		if err != nil {
			return nil, err
		}
		result.Functions = append(result.Functions, f)
	}

	return result, nil
}

// Translate translates a MinC program and renders it as a single
// GNU-assembler translation unit.
func Translate(prog *ast.Program) (string, error) {
	asmProg, err := TranslateProgram(prog)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	asm.NewPrinter(&buf).PrintProgram(asmProg)
	return buf.String(), nil
}
