package imageutil

import (
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// minRowsPerTask keeps tiny images on the calling goroutine.
const minRowsPerTask = 16

var parallelism atomic.Int32

// SetParallelism sets how many goroutines the spatial filters may use.
// Values <= 0 restore the default of GOMAXPROCS.
func SetParallelism(n int) {
	parallelism.Store(int32(min(max(n, 0), math.MaxInt32)))
}

// Parallelism returns the number of goroutines the spatial filters use.
func Parallelism() int {
	if n := int(parallelism.Load()); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// parallelRows calls fn over contiguous row ranges covering [0, height).
// Every row is handled by exactly one call, so fn may write its output
// rows without synchronization. It returns once all ranges are done.
func parallelRows(height int, fn func(y0, y1 int)) {
	workers := min(Parallelism(), (height+minRowsPerTask-1)/minRowsPerTask)
	if workers <= 1 {
		fn(0, height)
		return
	}

	chunk := (height + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += chunk {
		y1 := min(y0+chunk, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	// fn cannot fail; Wait is the join.
	_ = g.Wait()
}
