// Package schedule topologically sorts an expr.Context graph rooted at one
// node into a flat, inputs-first instruction list: the Scheduled value that
// pkg/tape's SSA builder consumes. Ported from jitfive's schedule(): a
// parent-count worklist rather than a classic recursive post-order walk, so
// that a node is only scheduled once every parent that could reference it as
// an operand has already been "descheduled".
package schedule

import (
	"fmt"

	"github.com/oisee/tapeopt/pkg/expr"
)

// OpKind mirrors expr.Op but is resolved against the scheduler's own
// variable table (axis index instead of a raw variable name).
type OpKind int

const (
	KindVar OpKind = iota
	KindUnary
	KindBinary
	KindBinaryChoice
)

// ScheduledOp is one topologically-ordered instruction, referencing operands
// by NodeID (inputs always precede uses in the enclosing Scheduled.Tape).
type ScheduledOp struct {
	Node NodeID

	Kind OpKind

	Axis   int // KindVar only: fixed axis from AxisFor, not a discovery-order index
	Unary  expr.UnaryOp
	Binary expr.BinaryOp
	A, B   NodeID // operands; A only for KindUnary
}

// NodeID re-exports expr.NodeID so callers of this package don't need to
// import pkg/expr just to name a node.
type NodeID = expr.NodeID

// Scheduled is a topologically sorted instruction list ready for lowering
// into an SSA tape: all inputs precede their uses, constants are folded out
// entirely (recorded implicitly by being absent — the builder re-derives
// them from the Context when needed... in this port, Const nodes are
// resolved to concrete Location values at build time instead, see
// pkg/tape/builder.go), and variable names are reduced to their fixed axes
// via AxisFor. Vars lists the distinct variable names this expression
// references, in first-encounter order — informational only, since axis
// assignment no longer depends on it.
type Scheduled struct {
	Ctx  *expr.Context
	Tape []ScheduledOp
	Vars []string
	Root NodeID
}

// Schedule flattens ctx's graph, rooted at root, into a Scheduled tape.
func Schedule(ctx *expr.Context, root NodeID) *Scheduled {
	s := &scheduler{ctx: ctx, parents: make(map[NodeID]map[NodeID]struct{})}
	s.collectParents(root)
	return s.flatten(root)
}

type scheduler struct {
	ctx     *expr.Context
	parents map[NodeID]map[NodeID]struct{}
	seen    map[NodeID]bool
}

// collectParents walks the DAG once (depth-first, dedup by seen) to build,
// for every node, the set of parents that reference it as an operand.
func (s *scheduler) collectParents(root NodeID) {
	s.seen = make(map[NodeID]bool)
	todo := []NodeID{root}
	for len(todo) > 0 {
		n := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if s.seen[n] {
			continue
		}
		s.seen[n] = true
		for _, child := range children(s.ctx.Node(n)) {
			if s.parents[child] == nil {
				s.parents[child] = make(map[NodeID]struct{})
			}
			s.parents[child][n] = struct{}{}
			todo = append(todo, child)
		}
	}
}

// AxisFor resolves a variable name to its fixed numeric axis — X=0, Y=1,
// Z=2 — matching tape64.rs's SsaTapeBuilder::step literal "X"/"Y"/"Z" match.
// Any other name is a fatal encoding error: spec.md recognizes exactly
// these three variables, never a name assigned by order of first use.
func AxisFor(name string) int {
	switch name {
	case "X":
		return 0
	case "Y":
		return 1
	case "Z":
		return 2
	default:
		panic(fmt.Sprintf("schedule: unknown variable %q (fatal encoding error)", name))
	}
}

// flatten repeatedly schedules nodes whose parent set has been fully
// drained, producing an output list in input-first order.
func (s *scheduler) flatten(root NodeID) *Scheduled {
	seenVar := map[string]bool{}
	var varList []string
	scheduled := make(map[NodeID]bool)
	var out []ScheduledOp

	todo := []NodeID{root}
	for len(todo) > 0 {
		n := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		if len(s.parents[n]) > 0 || scheduled[n] {
			continue
		}
		scheduled[n] = true

		node := s.ctx.Node(n)
		for _, child := range children(node) {
			todo = append(todo, child)
			delete(s.parents[child], n)
		}

		if node.Op == expr.OpConst {
			// Constants never occupy a Scheduled.Tape slot: pkg/tape's
			// builder resolves them directly from the Context as
			// immediates when an operand turns out to be a Const node.
			continue
		}

		op := ScheduledOp{Node: n, A: node.A, B: node.B}
		switch node.Op {
		case expr.OpVar:
			op.Kind = KindVar
			op.Axis = AxisFor(node.Var)
			if !seenVar[node.Var] {
				seenVar[node.Var] = true
				varList = append(varList, node.Var)
			}
		case expr.OpUnary:
			op.Kind = KindUnary
			op.Unary = node.Unary
		case expr.OpBinary:
			op.Kind = KindBinary
			op.Binary = node.Binary
		case expr.OpBinaryChoice:
			op.Kind = KindBinaryChoice
			op.Binary = node.Binary
		}
		out = append(out, op)
	}

	// todo was a stack (LIFO), so nodes that became ready earliest were
	// appended earliest but nodes deeper in the DAG get interleaved; a
	// final reverse restores "each node's children were scheduled after
	// it" into "every node's inputs precede it", matching jitfive's own
	// `out.reverse()` at the end of `schedule()`.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return &Scheduled{Ctx: s.ctx, Tape: out, Vars: varList, Root: root}
}

func children(n expr.Node) []NodeID {
	switch n.Op {
	case expr.OpVar, expr.OpConst:
		return nil
	case expr.OpUnary:
		return []NodeID{n.A}
	default: // OpBinary, OpBinaryChoice
		return []NodeID{n.A, n.B}
	}
}
