package tape

import (
	"fmt"
	"math"

	"github.com/oisee/tapeopt/pkg/expr"
	"github.com/oisee/tapeopt/pkg/schedule"
)

// location is either a materialized slot or a compile-time-constant
// immediate; exactly one of the two is meaningful, selected by isImm.
type location struct {
	slot  uint32
	imm   float32
	isImm bool
}

// BuildSSA lowers a scheduled expression DAG into an SSA tape in root-first
// order. Walks the schedule forward (input-first), assigning each emitted
// op a fresh dense slot, then reverses the output once so the root ends up
// first — the mirror image of how the simplifier later walks it back to
// front.
func BuildSSA(s *schedule.Scheduled) *SsaTape {
	b := &ssaBuilder{
		sched:     s,
		mapping:   make(map[schedule.NodeID]uint32, len(s.Tape)),
		constants: make(map[schedule.NodeID]float32),
	}
	for _, op := range s.Tape {
		b.step(op)
	}

	// Reverse both Ops and Data (per-op, so each op's internal word order
	// is preserved while the op order itself flips to root-first).
	ops := make([]Opcode, len(b.ops))
	for i, op := range b.ops {
		ops[len(ops)-1-i] = op
	}

	data := make([]uint32, 0, len(b.data))
	for i := len(b.opWordRanges) - 1; i >= 0; i-- {
		r := b.opWordRanges[i]
		data = append(data, b.data[r[0]:r[1]]...)
	}

	return &SsaTape{Ops: ops, Data: data, ChoiceCount: b.choiceCount}
}

type ssaBuilder struct {
	sched *schedule.Scheduled

	mapping   map[schedule.NodeID]uint32
	constants map[schedule.NodeID]float32

	ops          []Opcode
	data         []uint32
	opWordRanges [][2]int // [start,end) into data, one per emitted op, forward order
	choiceCount  int
}

func (b *ssaBuilder) resolve(n schedule.NodeID) location {
	if slot, ok := b.mapping[n]; ok {
		return location{slot: slot}
	}
	if c, ok := b.constants[n]; ok {
		return location{imm: c, isImm: true}
	}
	node := b.sched.Ctx.Node(n)
	if node.Op != expr.OpConst {
		panic(fmt.Sprintf("tape: operand node %d is neither scheduled nor constant (encoding fault)", n))
	}
	c := float32(node.Const)
	b.constants[n] = c
	return location{imm: c, isImm: true}
}

func (b *ssaBuilder) emit(op Opcode, words ...uint32) {
	start := len(b.data)
	b.data = append(b.data, words...)
	b.opWordRanges = append(b.opWordRanges, [2]int{start, len(b.data)})
	b.ops = append(b.ops, op)
}

func (b *ssaBuilder) step(op schedule.ScheduledOp) {
	index := uint32(len(b.mapping))

	switch op.Kind {
	case schedule.KindVar:
		if op.Axis < 0 || op.Axis > 2 {
			panic(fmt.Sprintf("tape: variable axis %d out of range 0-2 (encoding fault)", op.Axis))
		}
		b.emit(Input, index, uint32(op.Axis))
		b.mapping[op.Node] = index

	case schedule.KindUnary:
		arg := b.resolve(op.A)
		if arg.isImm {
			panic("tape: unary op applied to a constant operand — the scheduler must fold this (encoding fault)")
		}
		oc := unaryOpcode(op.Unary)
		b.emit(oc, index, arg.slot)
		b.mapping[op.Node] = index

	case schedule.KindBinary:
		lhs := b.resolve(op.A)
		rhs := b.resolve(op.B)
		oc, a, c := lowerBinary(op.Binary, lhs, rhs)
		b.emit(oc, index, a, c)
		b.mapping[op.Node] = index

	case schedule.KindBinaryChoice:
		b.choiceCount++
		lhs := b.resolve(op.A)
		rhs := b.resolve(op.B)
		oc, a, c := lowerChoice(op.Binary, lhs, rhs)
		b.emit(oc, index, a, c)
		b.mapping[op.Node] = index

	default:
		panic(fmt.Sprintf("tape: unhandled scheduled op kind %d", op.Kind))
	}
}

// unaryOpcode maps an expr.UnaryOp to its SSA opcode.
func unaryOpcode(u expr.UnaryOp) Opcode {
	switch u {
	case expr.UnaryNeg:
		return NegReg
	case expr.UnaryAbs:
		return AbsReg
	case expr.UnaryRecip:
		return RecipReg
	case expr.UnarySqrt:
		return SqrtReg
	case expr.UnarySquare:
		return SquareReg
	default:
		panic(fmt.Sprintf("tape: unknown unary op %d", u))
	}
}

// lowerBinary dispatches Add/Sub/Mul on operand kind, returning the chosen
// opcode and its two trailing data words (arg, imm-or-arg) in the order
// they must appear: output word is pushed by the caller separately.
func lowerBinary(op expr.BinaryOp, lhs, rhs location) (Opcode, uint32, uint32) {
	switch {
	case !lhs.isImm && !rhs.isImm:
		return regRegOpcode(op), lhs.slot, rhs.slot
	case !lhs.isImm && rhs.isImm:
		return regImmOpcode(op, false), lhs.slot, math.Float32bits(rhs.imm)
	case lhs.isImm && !rhs.isImm:
		return regImmOpcode(op, true), rhs.slot, math.Float32bits(lhs.imm)
	default:
		panic("tape: f(imm, imm) reached the SSA builder — the scheduler must constant-fold this (encoding fault)")
	}
}

// lowerChoice dispatches Min/Max the same way as lowerBinary, except both
// operand orders share one RegImm opcode (min/max are commutative).
func lowerChoice(op expr.BinaryOp, lhs, rhs location) (Opcode, uint32, uint32) {
	switch {
	case !lhs.isImm && !rhs.isImm:
		return regRegOpcode(op), lhs.slot, rhs.slot
	case !lhs.isImm && rhs.isImm:
		return regImmOpcode(op, false), lhs.slot, math.Float32bits(rhs.imm)
	case lhs.isImm && !rhs.isImm:
		return regImmOpcode(op, false), rhs.slot, math.Float32bits(lhs.imm)
	default:
		panic("tape: f(imm, imm) reached the SSA builder — the scheduler must constant-fold this (encoding fault)")
	}
}

func regRegOpcode(op expr.BinaryOp) Opcode {
	switch op {
	case expr.BinaryAdd:
		return AddRegReg
	case expr.BinarySub:
		return SubRegReg
	case expr.BinaryMul:
		return MulRegReg
	case expr.BinaryMin:
		return MinRegReg
	case expr.BinaryMax:
		return MaxRegReg
	default:
		panic(fmt.Sprintf("tape: unknown binary op %d", op))
	}
}

// regImmOpcode returns the RegImm opcode for op. immIsLhs distinguishes
// Sub's two non-commutative forms; it is ignored for the commutative
// Add/Mul/Min/Max.
func regImmOpcode(op expr.BinaryOp, immIsLhs bool) Opcode {
	switch op {
	case expr.BinaryAdd:
		return AddRegImm
	case expr.BinaryMul:
		return MulRegImm
	case expr.BinarySub:
		if immIsLhs {
			return SubImmReg
		}
		return SubRegImm
	case expr.BinaryMin:
		return MinRegImm
	case expr.BinaryMax:
		return MaxRegImm
	default:
		panic(fmt.Sprintf("tape: unknown binary op %d", op))
	}
}
