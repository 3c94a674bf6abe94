package tape

import "github.com/oisee/tapeopt/pkg/schedule"

// Tape bundles an SSA tape with its register-allocated companion and the
// register budget it was compiled against. New and NewWithRegLimit produce
// the canonical (unsimplified) tape from a schedule; Simplify derives a
// shorter sibling from it.
type Tape struct {
	ssa      *SsaTape
	SSA      *SsaTape
	Asm      *AsmTape
	RegLimit uint8
}

// defaultRegLimit mirrors an effectively unbounded register file: wide
// enough that ordinary expressions never spill.
const defaultRegLimit = 255

// New lowers s into a Tape with a generous, effectively unbounded register
// budget (255).
func New(s *schedule.Scheduled) *Tape {
	return NewWithRegLimit(s, defaultRegLimit)
}

// NewWithRegLimit lowers s into a Tape, bounding the asm tape's register
// file to regLimit registers.
func NewWithRegLimit(s *schedule.Scheduled, regLimit uint8) *Tape {
	ssa := BuildSSA(s)
	allBoth := make([]Choice, ssa.ChoiceCount)
	for i := range allBoth {
		allBoth[i] = Both
	}
	simplified, asm := ssa.Simplify(allBoth, regLimit)
	return &Tape{ssa: ssa, SSA: simplified, Asm: asm, RegLimit: regLimit}
}

// Simplify re-runs the choice-driven simplifier and register allocator
// against the canonical (pre-simplification) SSA tape this Tape was built
// from — never against an already-simplified one, so repeated
// simplification passes never compound.
func (t *Tape) Simplify(choices []Choice) *Tape {
	simplified, asm := t.ssa.Simplify(choices, t.RegLimit)
	return &Tape{ssa: t.ssa, SSA: simplified, Asm: asm, RegLimit: t.RegLimit}
}
