package flow

import (
	"runtime"
	"sync"
)

// forColumns calls fn for every column in [0, n). With cfg.Parallel the
// columns are split into contiguous chunks, one goroutine per CPU. fn must
// only write to slots owned by its column.
func (s *state) forColumns(n int, fn func(i int)) {
	if !s.cfg.Parallel {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	parallelRange(0, n, fn)
}

// parallelRange executes fn for each i in [start,end). The range is split among
// available CPUs and parallelRange returns once every call has finished.
func parallelRange(start, end int, fn func(i int)) {
	total := end - start
	if total <= 0 {
		return
	}
	workers := min(runtime.GOMAXPROCS(0), total)
	chunk := (total + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := start; lo < end; lo += chunk {
		hi := min(lo+chunk, end)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
