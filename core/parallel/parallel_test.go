package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkers(t *testing.T) {
	cpus := runtime.NumCPU()
	tests := []struct {
		nJobs int
		want  int
	}{
		{nJobs: 0, want: 1},
		{nJobs: 1, want: 1},
		{nJobs: 3, want: 3},
		{nJobs: -1, want: cpus},
		{nJobs: -cpus - 5, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Workers(tt.nJobs), "n_jobs=%d", tt.nJobs)
	}
}

func TestParallelizeWorkersCoversEveryItemOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 64} {
		items := 23
		hits := make([]int32, items)

		ParallelizeWorkers(items, workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})

		for i, h := range hits {
			assert.Equal(t, int32(1), h, "workers=%d item=%d", workers, i)
		}
	}
}

func TestParallelizeWorkersZeroItems(t *testing.T) {
	called := false
	ParallelizeWorkers(0, 4, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)

	var total int64
	ParallelizeWithThreshold(1000, 10, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	assert.Equal(t, int64(1000), total)
}
