package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextDedupesStructurallyIdenticalNodes(t *testing.T) {
	ctx := NewContext()
	x1 := ctx.X()
	x2 := ctx.X()
	require.Equal(t, x1, x2, "repeated X() calls should share one node")

	a := ctx.Add(x1, ctx.Const(1))
	b := ctx.Add(x1, ctx.Const(1))
	require.Equal(t, a, b, "structurally identical Add nodes should share one node")
}

func TestContextDistinguishesMinAndMax(t *testing.T) {
	ctx := NewContext()
	x := ctx.X()
	y := ctx.Y()
	min := ctx.Min(x, y)
	max := ctx.Max(x, y)
	require.NotEqual(t, min, max)

	require.Equal(t, OpBinaryChoice, ctx.Node(min).Op)
	require.Equal(t, BinaryMin, ctx.Node(min).Binary)
	require.Equal(t, BinaryMax, ctx.Node(max).Binary)
}

func TestContextBinaryIsNotAChoiceOp(t *testing.T) {
	ctx := NewContext()
	sum := ctx.Add(ctx.X(), ctx.Y())
	require.Equal(t, OpBinary, ctx.Node(sum).Op)
}
