package codegen

import (
	"errors"
	"fmt"

	"github.com/minc-lang/mincc/pkg/asm"
)

// Input errors surfaced to the driver.
var (
	ErrBreakOutsideLoop    = errors.New("break statement outside a loop")
	ErrContinueOutsideLoop = errors.New("continue statement outside a loop")
)

// Emitter holds the per-translation mutable state: the label counter
// and the loop-label stacks. One Emitter serves a whole translation
// unit, so labels are unique across all functions.
type Emitter struct {
	labelCount int

	// Parallel stacks of the innermost break and continue targets.
	// Both always have the same depth.
	breakStack    []asm.Label
	continueStack []asm.Label
}

// NewEmitter creates an Emitter with the label counter at zero.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Fresh returns a new unique label of the form .L<prefix>_<k>.
func (e *Emitter) Fresh(prefix string) asm.Label {
	l := asm.Label(fmt.Sprintf(".L%s_%d", prefix, e.labelCount))
	e.labelCount++
	return l
}

// PushLoop enters a loop, recording its break and continue targets.
func (e *Emitter) PushLoop(breakLabel, continueLabel asm.Label) {
	e.breakStack = append(e.breakStack, breakLabel)
	e.continueStack = append(e.continueStack, continueLabel)
}

// PopLoop leaves the innermost loop. Underflow is an internal
// invariant violation.
func (e *Emitter) PopLoop() {
	if len(e.breakStack) == 0 || len(e.breakStack) != len(e.continueStack) {
		panic("codegen: loop-label stack underflow")
	}
	e.breakStack = e.breakStack[:len(e.breakStack)-1]
	e.continueStack = e.continueStack[:len(e.continueStack)-1]
}

// CurrentBreak returns the innermost break target.
func (e *Emitter) CurrentBreak() (asm.Label, error) {
	if len(e.breakStack) == 0 {
		return "", ErrBreakOutsideLoop
	}
	return e.breakStack[len(e.breakStack)-1], nil
}

// CurrentContinue returns the innermost continue target.
func (e *Emitter) CurrentContinue() (asm.Label, error) {
	if len(e.continueStack) == 0 {
		return "", ErrContinueOutsideLoop
	}
	return e.continueStack[len(e.continueStack)-1], nil
}
