package fasthdr

import (
	"runtime"
	"sync"
)

func workerCount(workers int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// parallelFor splits [0, total) into contiguous chunks and runs fn on each
// chunk in its own goroutine, returning when all chunks are done.
func parallelFor(workers, total int, fn func(start, end int)) {
	if total <= 0 {
		return
	}
	workers = workerCount(workers)
	if workers > total {
		workers = total
	}
	if workers <= 1 {
		fn(0, total)
		return
	}
	step := (total + workers - 1) / workers
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * step
		end := start + step
		if end > total {
			end = total
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
