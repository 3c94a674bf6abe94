package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMinOfSumAndVar(t *testing.T) {
	ctx, root, err := Parse("(min (+ x 1) y)")
	require.NoError(t, err)
	n := ctx.Node(root)
	require.Equal(t, OpBinaryChoice, n.Op)
	require.Equal(t, BinaryMin, n.Binary)

	lhs := ctx.Node(n.A)
	require.Equal(t, OpBinary, lhs.Op)
	require.Equal(t, BinaryAdd, lhs.Binary)

	rhs := ctx.Node(n.B)
	require.Equal(t, OpVar, rhs.Op)
	require.Equal(t, "Y", rhs.Var)
}

func TestParseNestedSqrt(t *testing.T) {
	ctx, root, err := Parse("(sqrt (+ (* x x) (* y y)))")
	require.NoError(t, err)
	n := ctx.Node(root)
	require.Equal(t, OpUnary, n.Op)
	require.Equal(t, UnarySqrt, n.Unary)
}

func TestParseUnaryMinusIsNeg(t *testing.T) {
	ctx, root, err := Parse("(- x)")
	require.NoError(t, err)
	require.Equal(t, UnaryNeg, ctx.Node(root).Unary)
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	_, _, err := Parse("(frobnicate x)")
	require.Error(t, err)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, _, err := Parse("")
	require.Error(t, err)
}

func TestParseRejectsTrailingInput(t *testing.T) {
	_, _, err := Parse("x y")
	require.Error(t, err)
}
