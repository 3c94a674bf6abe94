package tape

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewProducesUnsimplifiedButConsistentTape(t *testing.T) {
	s := mustSchedule(t, "(min (+ x 1) y)")
	tp := New(s)

	require.Equal(t, uint8(defaultRegLimit), tp.RegLimit)
	require.Equal(t, 1, tp.SSA.ChoiceCount)
	require.Len(t, tp.Asm.Instrs, len(tp.SSA.Ops))
}

func TestSimplifyWithAllBothIsStructurallyIdentical(t *testing.T) {
	s := mustSchedule(t, "(min (+ x 1) y)")
	tp := New(s)

	again := tp.Simplify(allBoth(tp.SSA.ChoiceCount))

	if diff := cmp.Diff(tp.SSA, again.SSA); diff != "" {
		t.Errorf("simplify(all Both) should reproduce the canonical tape structurally (-want +got):\n%s", diff)
	}
}

func TestSimplifyAlwaysDerivesFromCanonicalTape(t *testing.T) {
	s := mustSchedule(t, "(min (+ x 1) y)")
	tp := New(s)

	onceRight := tp.Simplify([]Choice{Right})
	require.Equal(t, 0, onceRight.SSA.ChoiceCount)

	// Simplifying again from the *original* Tape, not from onceRight, with a
	// different choice must still work: a second call must not have
	// consumed or mutated the canonical tape the first call read from.
	onceLeft := tp.Simplify([]Choice{Left})
	require.Equal(t, 0, onceLeft.SSA.ChoiceCount)
	require.NotEqual(t, onceRight.SSA.Ops, onceLeft.SSA.Ops)

	stillTwoSided := tp.Simplify([]Choice{Both})
	require.Equal(t, 1, stillTwoSided.SSA.ChoiceCount)
}

func TestNewWithRegLimitBoundsRegisterFile(t *testing.T) {
	s := mustSchedule(t, "(min x y)")
	tp := NewWithRegLimit(s, 1)
	require.Equal(t, uint8(1), tp.RegLimit)

	for _, in := range tp.Asm.Instrs {
		require.Less(t, in.Out, uint8(1))
	}
}
