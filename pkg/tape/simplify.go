package tape

import "fmt"

// Simplify performs a reverse (root-first) walk over t, eliding dead
// instructions and rewriting resolved min/max operators per choices, while
// driving a register allocator in lockstep to produce the companion asm
// tape. choices must have exactly ChoiceCount entries, matched in reverse
// order against the tape's min/max operators (the last choice operator
// encountered in root-first order pairs with choices[0]).
func (t *SsaTape) Simplify(choices []Choice, regLimit uint8) (*SsaTape, *AsmTape) {
	if len(choices) != t.ChoiceCount {
		panic(fmt.Sprintf("tape: choice slice has %d entries, tape has %d choice operators", len(choices), t.ChoiceCount))
	}

	s := &simplifier{
		src:    t,
		active: make([]uint32, len(t.Ops)),
		alloc:  newRegAllocator(regLimit),
	}
	for i := range s.active {
		s.active[i] = unassigned
	}
	s.active[t.Data[0]] = 0
	s.nextSlot = 1
	// Seed the allocator with the root's new slot 0, so that the root op
	// finds its output already allocated like every other live op does.
	s.alloc.getRegister(0)

	s.choiceIdx = len(choices)
	s.choices = choices

	di := 0
	for _, op := range t.Ops {
		out := t.Data[di]
		di++

		if s.active[out] == unassigned {
			di += s.skipDead(op)
			continue
		}
		newOut := s.active[out]
		di = s.emitLive(op, newOut, di)
	}

	if int(s.nextSlot) != len(s.opsOut) {
		panic("tape: internal error, slot count does not match emitted op count")
	}
	asmOps := 0
	for _, in := range s.alloc.out {
		if in.Op != AsmLoad && in.Op != AsmStore {
			asmOps++
		}
	}
	if len(s.opsOut) != asmOps {
		panic("tape: internal error, SSA op count does not match asm op count")
	}

	return &SsaTape{Ops: s.opsOut, Data: s.dataOut, ChoiceCount: s.choiceCount},
		&AsmTape{Instrs: s.alloc.out}
}

type simplifier struct {
	src    *SsaTape
	active []uint32 // old slot -> new slot, or unassigned

	nextSlot uint32

	choices   []Choice
	choiceIdx int // position just past the next choice to consume, consumed back-to-front

	opsOut      []Opcode
	dataOut     []uint32
	choiceCount int

	alloc *regAllocator
}

// nextChoiceValue consumes the choice vector from its end, since it was produced
// leaves-first while this walk is root-first.
func (s *simplifier) nextChoiceValue() Choice {
	s.choiceIdx--
	return s.choices[s.choiceIdx]
}

// resolve returns the new slot for an old slot, assigning one if this is
// its first sighting while walking in reverse execution order (i.e. this
// is the first time it's used as an operand).
func (s *simplifier) resolve(old uint32) uint32 {
	if s.active[old] == unassigned {
		s.active[old] = s.nextSlot
		s.nextSlot++
	}
	return s.active[old]
}

func (s *simplifier) emitOp(op Opcode, words ...uint32) {
	s.dataOut = append(s.dataOut, words...)
	s.opsOut = append(s.opsOut, op)
}

// skipDead discards the remaining words (and choice entry, if any) of an op
// whose output is never read, and returns how many Data words (beyond the
// already-consumed output word) it consumed.
func (s *simplifier) skipDead(op Opcode) int {
	if op.IsChoice() {
		s.nextChoiceValue()
		return 2
	}
	return wordsPerOp(op) - 1
}

// emitLive processes one live op (output slot newOut already assigned), and
// returns the new Data read cursor.
func (s *simplifier) emitLive(op Opcode, newOut uint32, di int) int {
	switch op {
	case Input, CopyImm:
		operand := s.src.Data[di]
		di++
		s.emitOp(op, newOut, operand)
		if op == Input {
			s.alloc.opInput(newOut, uint8(operand))
		} else {
			s.alloc.opCopyImm(newOut, operand)
		}

	case NegReg, AbsReg, RecipReg, SqrtReg, SquareReg:
		old := s.src.Data[di]
		di++
		arg := s.resolve(old)
		s.emitOp(op, newOut, arg)
		s.alloc.opReg(newOut, arg, op)

	case CopyReg:
		src := s.src.Data[di]
		di++
		if newSrc, ok := s.activeGet(src); ok {
			s.emitOp(CopyReg, newOut, newSrc)
			s.alloc.opReg(newOut, newSrc, CopyReg)
		} else {
			s.active[src] = newOut
		}

	case MinRegImm, MaxRegImm:
		arg := s.src.Data[di]
		imm := s.src.Data[di+1]
		di += 2
		s.emitChoiceImm(op, newOut, arg, imm)

	case MinRegReg, MaxRegReg:
		lhs := s.src.Data[di]
		rhs := s.src.Data[di+1]
		di += 2
		s.emitChoiceReg(op, newOut, lhs, rhs)

	case AddRegReg, MulRegReg, SubRegReg:
		lhsOld := s.src.Data[di]
		rhsOld := s.src.Data[di+1]
		di += 2
		lhs := s.resolve(lhsOld)
		rhs := s.resolve(rhsOld)
		s.emitOp(op, newOut, lhs, rhs)
		s.alloc.opRegReg(newOut, lhs, rhs, op)

	case AddRegImm, MulRegImm, SubRegImm, SubImmReg:
		argOld := s.src.Data[di]
		imm := s.src.Data[di+1]
		di += 2
		arg := s.resolve(argOld)
		s.emitOp(op, newOut, arg, imm)
		s.alloc.opRegImm(newOut, arg, imm, op)

	default:
		panic(fmt.Sprintf("tape: unhandled opcode %s in simplify", op))
	}
	return di
}

func (s *simplifier) activeGet(old uint32) (uint32, bool) {
	v := s.active[old]
	if v == unassigned {
		return 0, false
	}
	return v, true
}

// emitChoiceImm handles MinRegImm/MaxRegImm per the chosen side.
func (s *simplifier) emitChoiceImm(op Opcode, newOut, arg, imm uint32) {
	switch s.nextChoiceValue() {
	case Left:
		if newArg, ok := s.activeGet(arg); ok {
			s.emitOp(CopyReg, newOut, newArg)
			s.alloc.opReg(newOut, newArg, CopyReg)
		} else {
			s.active[arg] = newOut
		}
	case Right:
		s.emitOp(CopyImm, newOut, imm)
		s.alloc.opCopyImm(newOut, imm)
	case Both:
		s.choiceCount++
		a := s.resolve(arg)
		s.emitOp(op, newOut, a, imm)
		s.alloc.opRegImm(newOut, a, imm, op)
	default:
		panic("tape: Choice(Unknown) reached Simplify (encoding fault)")
	}
}

// emitChoiceReg handles MinRegReg/MaxRegReg per the chosen side.
func (s *simplifier) emitChoiceReg(op Opcode, newOut, lhs, rhs uint32) {
	switch s.nextChoiceValue() {
	case Left:
		if newLhs, ok := s.activeGet(lhs); ok {
			s.emitOp(CopyReg, newOut, newLhs)
			s.alloc.opReg(newOut, newLhs, CopyReg)
		} else {
			s.active[lhs] = newOut
		}
	case Right:
		if newRhs, ok := s.activeGet(rhs); ok {
			s.emitOp(CopyReg, newOut, newRhs)
			s.alloc.opReg(newOut, newRhs, CopyReg)
		} else {
			s.active[rhs] = newOut
		}
	case Both:
		s.choiceCount++
		l := s.resolve(lhs)
		r := s.resolve(rhs)
		s.emitOp(op, newOut, l, r)
		s.alloc.opRegReg(newOut, l, r, op)
	default:
		panic("tape: Choice(Unknown) reached Simplify (encoding fault)")
	}
}
