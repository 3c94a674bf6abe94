package tape

import "math"

// Eval executes the SSA tape directly against (x, y, z), using slots as
// scratch space (must have length >= len(t.Ops)); it writes into slots
// instead of allocating, so repeat calls on the same tape are allocation-
// free. Walks Ops/Data in reverse (execution order, since the tape is
// stored root-first). Returns the root's value.
//
// If choices is non-nil (length must equal t.ChoiceCount), it records, for
// every choice operator encountered, which side actually dominated at this
// sample — the input a subsequent Simplify call consumes.
func (t *SsaTape) Eval(x, y, z float32, slots []float32, choices []Choice) float32 {
	if choices != nil && len(choices) != t.ChoiceCount {
		panic("tape: choices slice length must equal ChoiceCount")
	}

	di := len(t.Data)
	choiceIdx := 0
	for i := len(t.Ops) - 1; i >= 0; i-- {
		op := t.Ops[i]
		var out float32

		switch op {
		case Input:
			imm := t.Data[di-1]
			out = axisValue(imm, x, y, z)
			di -= 2
		case CopyImm:
			out = math.Float32frombits(t.Data[di-1])
			di -= 2
		case NegReg, AbsReg, RecipReg, SqrtReg, SquareReg, CopyReg:
			arg := slots[t.Data[di-1]]
			out = evalUnary(op, arg)
			di -= 2
		case AddRegReg, SubRegReg, MulRegReg:
			rhs := slots[t.Data[di-1]]
			lhs := slots[t.Data[di-2]]
			out = evalRegReg(op, lhs, rhs)
			di -= 3
		case MinRegReg, MaxRegReg:
			rhs := slots[t.Data[di-1]]
			lhs := slots[t.Data[di-2]]
			out, choiceIdx = evalChoiceRegReg(op, lhs, rhs, choices, choiceIdx)
			di -= 3
		case AddRegImm, SubRegImm, SubImmReg, MulRegImm:
			imm := math.Float32frombits(t.Data[di-1])
			arg := slots[t.Data[di-2]]
			out = evalRegImm(op, arg, imm)
			di -= 3
		case MinRegImm, MaxRegImm:
			imm := math.Float32frombits(t.Data[di-1])
			arg := slots[t.Data[di-2]]
			out, choiceIdx = evalChoiceRegImm(op, arg, imm, choices, choiceIdx)
			di -= 3
		default:
			panic("tape: unhandled opcode in Eval")
		}

		slots[t.Data[di]] = out
	}
	return slots[t.Data[0]]
}

func axisValue(axis uint32, x, y, z float32) float32 {
	switch axis {
	case 0:
		return x
	case 1:
		return y
	case 2:
		return z
	default:
		panic("tape: input axis must be 0, 1, or 2 (encoding fault)")
	}
}

func evalUnary(op Opcode, arg float32) float32 {
	switch op {
	case NegReg:
		return -arg
	case AbsReg:
		return float32(math.Abs(float64(arg)))
	case RecipReg:
		return 1 / arg
	case SqrtReg:
		return float32(math.Sqrt(float64(arg)))
	case SquareReg:
		return arg * arg
	case CopyReg:
		return arg
	default:
		panic("tape: not a unary register opcode")
	}
}

func evalRegReg(op Opcode, lhs, rhs float32) float32 {
	switch op {
	case AddRegReg:
		return lhs + rhs
	case SubRegReg:
		return lhs - rhs
	case MulRegReg:
		return lhs * rhs
	default:
		panic("tape: not a plain register-register opcode")
	}
}

func evalRegImm(op Opcode, arg, imm float32) float32 {
	switch op {
	case AddRegImm:
		return arg + imm
	case MulRegImm:
		return arg * imm
	case SubRegImm:
		return arg - imm
	case SubImmReg:
		return imm - arg
	default:
		panic("tape: not a plain register-immediate opcode")
	}
}

// evalChoiceRegReg evaluates a Min/MaxRegReg op, additionally recording
// which side dominated into choices (if non-nil).
func evalChoiceRegReg(op Opcode, lhs, rhs float32, choices []Choice, choiceIdx int) (float32, int) {
	var out float32
	var dominant Choice
	switch op {
	case MinRegReg:
		out = float32(math.Min(float64(lhs), float64(rhs)))
	case MaxRegReg:
		out = float32(math.Max(float64(lhs), float64(rhs)))
	default:
		panic("tape: not a choice register-register opcode")
	}
	switch {
	case lhs == rhs:
		dominant = Both
	case (op == MinRegReg && lhs <= rhs) || (op == MaxRegReg && lhs >= rhs):
		dominant = Left
	default:
		dominant = Right
	}
	if choices != nil {
		choices[choiceIdx] = dominant
	}
	return out, choiceIdx + 1
}

// evalChoiceRegImm evaluates a Min/MaxRegImm op, additionally recording
// which side dominated into choices (if non-nil).
func evalChoiceRegImm(op Opcode, arg, imm float32, choices []Choice, choiceIdx int) (float32, int) {
	var out float32
	var dominant Choice
	switch op {
	case MinRegImm:
		out = float32(math.Min(float64(arg), float64(imm)))
	case MaxRegImm:
		out = float32(math.Max(float64(arg), float64(imm)))
	default:
		panic("tape: not a choice register-immediate opcode")
	}
	switch {
	case arg == imm:
		dominant = Both
	case (op == MinRegImm && arg <= imm) || (op == MaxRegImm && arg >= imm):
		dominant = Left
	default:
		dominant = Right
	}
	if choices != nil {
		choices[choiceIdx] = dominant
	}
	return out, choiceIdx + 1
}
