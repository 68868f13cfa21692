package codegen

import (
	"github.com/samber/lo"

	"github.com/minc-lang/mincc/pkg/ast"
)

const (
	stackAlignment = 16 // AArch64 requires 16-byte stack alignment
	slotSize       = 8  // one 64-bit value per frame slot
	maxRegArgs     = 8  // integer arguments passed in x0..x7
)

// Env maps variable names to frame-pointer-relative byte offsets.
// Parameters and locals share one namespace; a later declaration with
// the same name overwrites the earlier slot.
type Env map[string]int64

// CollectDecls enumerates the variables declared anywhere inside a
// statement, depth-first and left-to-right. The result order is the
// order in which frame slots are assigned.
func CollectDecls(stmt ast.Stmt) []ast.Decl {
	switch s := stmt.(type) {
	case ast.Compound:
		return append(s.Decls, lo.FlatMap(s.Stmts, func(sub ast.Stmt, _ int) []ast.Decl {
			return CollectDecls(sub)
		})...)
	case ast.If:
		decls := CollectDecls(s.Then)
		if s.Else != nil {
			decls = append(decls, CollectDecls(s.Else)...)
		}
		return decls
	case ast.While:
		return CollectDecls(s.Body)
	default:
		return nil
	}
}

// NewEnv builds the environment for one function and returns it with
// the frame size. Slots are assigned downward from the frame pointer,
// parameters first (in declaration order) and then locals (in
// collection order). The frame size is the total slot span rounded up
// to the stack alignment, with a 16-byte minimum.
//
// Parameters beyond the eighth are never spilled; they live in the
// caller's frame and are rebound to positive offsets above x29 using
// the caller's 16-byte argument slots. The caller lowers sp by 16 bytes
// per stack argument before the call, so the first stack argument sits
// at frameSize + 16*(len(params)-8) above x29.
func NewEnv(params []ast.Param, decls []ast.Decl) (Env, int64) {
	names := append(
		lo.Map(params, func(p ast.Param, _ int) string { return p.Name }),
		lo.Map(decls, func(d ast.Decl, _ int) string { return d.Name })...,
	)

	env := make(Env, len(names))
	offset := int64(0)
	for _, name := range names {
		offset -= slotSize
		env[name] = offset
	}

	frameSize := alignUp(-offset, stackAlignment)
	if frameSize < stackAlignment {
		frameSize = stackAlignment
	}

	surplus := int64(len(params) - maxRegArgs)
	for i := maxRegArgs; i < len(params); i++ {
		env[params[i].Name] = frameSize + 16*surplus + 16*int64(i-maxRegArgs)
	}

	return env, frameSize
}

// alignUp rounds n up to the nearest multiple of align.
func alignUp(n, align int64) int64 {
	return (n + align - 1) / align * align
}
