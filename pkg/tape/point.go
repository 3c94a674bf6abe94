package tape

// PointEval repeatedly evaluates a Tape's canonical SSA tape at single
// points, recording the dominant side of every min/max it encounters so the
// caller can later call Simplify to derive a shorter tape valid over the
// region those points came from.
type PointEval struct {
	tape    *Tape
	slots   []float32
	choices []Choice
}

// NewPointEval allocates scratch space sized to t's canonical (pre-
// simplification) tape.
func NewPointEval(t *Tape) *PointEval {
	return &PointEval{
		tape:    t,
		slots:   make([]float32, len(t.ssa.Ops)),
		choices: make([]Choice, t.ssa.ChoiceCount),
	}
}

// Eval evaluates the canonical tape at (x, y, z), overwriting the choice
// buffer with this call's dominant sides. The buffer is reset to Unknown
// first so a choice operator that somehow went unvisited is never mistaken
// for a live one from a previous call.
func (p *PointEval) Eval(x, y, z float32) float32 {
	for i := range p.choices {
		p.choices[i] = Unknown
	}
	return p.tape.ssa.Eval(x, y, z, p.slots, p.choices)
}

// Simplify derives a bounded-register tape from the most recent Eval call's
// recorded choices.
func (p *PointEval) Simplify(regLimit uint8) *Tape {
	ssa, asm := p.tape.ssa.Simplify(p.choices, regLimit)
	return &Tape{ssa: p.tape.ssa, SSA: ssa, Asm: asm, RegLimit: regLimit}
}
