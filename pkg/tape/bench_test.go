package tape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunGridChecksEverySample(t *testing.T) {
	s := mustSchedule(t, "(sqrt (+ (* x x) (* y y)))")
	tp := New(s)

	points := make([]Point, 0, 50)
	for i := 0; i < 50; i++ {
		points = append(points, Point{X: float32(i), Y: float32(-i), Z: 0})
	}

	stats := RunGrid(tp, 4, points)
	require.EqualValues(t, 50, stats.Samples)
	require.EqualValues(t, 50, stats.Checked)
}

func TestRunGridZeroWorkersDefaultsToNumCPU(t *testing.T) {
	s := mustSchedule(t, "(min x y)")
	tp := New(s)
	stats := RunGrid(tp, 0, []Point{{X: 1, Y: 2}})
	require.EqualValues(t, 1, stats.Checked)
}
