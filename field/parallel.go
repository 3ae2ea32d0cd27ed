package field

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum item count to split a pass across
// workers. Below this, a single goroutine is faster.
const parallelThreshold = 1024

// workChunk is a half-open index range handled by one worker.
type workChunk struct {
	start, end int
}

// chunks splits [0,n) into at most numWorkers contiguous ranges.
func chunks(n, numWorkers int) []workChunk {
	chunkSize := (n + numWorkers - 1) / numWorkers
	out := make([]workChunk, 0, numWorkers)
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		out = append(out, workChunk{start: start, end: end})
	}
	return out
}

// ParallelRange calls fn over disjoint sub-ranges of [0,n) and returns once
// all of them are done. fn must only write to slots inside its range.
func ParallelRange(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	numWorkers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || numWorkers == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for _, c := range chunks(n, numWorkers) {
		wg.Add(1)
		go func(c workChunk) {
			defer wg.Done()
			fn(c.start, c.end)
		}(c)
	}
	wg.Wait()
}

// ParallelForEach visits every vertex of g, split across workers by index.
func ParallelForEach(g *Grid, fn func(c Coord)) {
	ParallelRange(g.NumVertices(), func(start, end int) {
		for i := start; i < end; i++ {
			fn(g.CoordOf(i))
		}
	})
}

// ForEachFace visits every (axis, face) pair of a face grid pair in order.
func ForEachFace(grids *[2]Grid, fn func(axis int, face Coord)) {
	for axis := 0; axis < 2; axis++ {
		grids[axis].ForEach(func(c Coord) { fn(axis, c) })
	}
}

// ParallelForEachFace is the fork-join variant of ForEachFace. Axes run one
// after the other; faces within an axis run concurrently.
func ParallelForEachFace(grids *[2]Grid, fn func(axis int, face Coord)) {
	for axis := 0; axis < 2; axis++ {
		ParallelForEach(&grids[axis], func(c Coord) { fn(axis, c) })
	}
}
