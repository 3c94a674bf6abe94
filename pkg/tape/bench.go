package tape

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Point is one (x, y, z) sample.
type Point struct{ X, Y, Z float32 }

// GridStats summarizes a parallel grid sweep.
type GridStats struct {
	Samples int64
	Checked int64
}

// RunGrid evaluates points across numWorkers goroutines (0 = runtime.NumCPU),
// each owning its own PointEval and scratch slices derived from tp — no
// state is shared between workers, matching the "no locking in the core"
// contract: tp itself is read-only from every worker's perspective.
func RunGrid(tp *Tape, numWorkers int, points []Point) *GridStats {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(points) {
		numWorkers = len(points)
	}
	if numWorkers == 0 {
		return &GridStats{}
	}

	ch := make(chan Point, len(points))
	for _, p := range points {
		ch <- p
	}
	close(ch)

	var checked atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pe := NewPointEval(tp)
			for p := range ch {
				pe.Eval(p.X, p.Y, p.Z)
				checked.Add(1)
			}
		}()
	}
	wg.Wait()

	return &GridStats{Samples: int64(len(points)), Checked: checked.Load()}
}
