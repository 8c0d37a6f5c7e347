package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves an sklearn-style n_jobs value into a worker count:
// n > 0 is used as is, -1 means every CPU, -2 every CPU but one, and so on.
// The result is never below 1.
func Workers(nJobs int) int {
	switch {
	case nJobs > 0:
		return nJobs
	case nJobs < 0:
		n := runtime.NumCPU() + 1 + nJobs
		if n < 1 {
			return 1
		}
		return n
	default:
		return 1
	}
}

// Parallelize divides items into runtime.NumCPU() contiguous ranges and
// calls fn for each range concurrently.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWorkers divides items into at most workers contiguous
// [start, end) ranges and calls fn for each range in its own goroutine.
// With a single worker fn runs on the calling goroutine.
func ParallelizeWorkers(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers > items {
		workers = items
	}
	if workers <= 1 {
		fn(0, items)
		return
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items does not exceed
// threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
