// Package task provides the data-parallel execution substrate used by bulk
// scene operations: bounded fork-join loops over an index range, with a
// grain-size hint controlling task granularity. Calls block until every
// sub-task has completed; there is no guaranteed execution order inside a
// batch, so loop bodies must only touch their own slot and read-only shared
// inputs.
package task

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-width fork-join executor. The zero value is not usable;
// create one with NewPool or Default.
type Pool struct {
	workers int
}

// NewPool creates a Pool running at most workers concurrent tasks.
// A non-positive value selects GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Default returns a Pool sized to GOMAXPROCS.
func Default() *Pool {
	return NewPool(0)
}

// Workers returns the maximum number of concurrent tasks.
func (p *Pool) Workers() int {
	return p.workers
}

// For applies fn to every index in [0, n), splitting the range into chunks
// of at most grain indices. It returns after all invocations complete.
func (p *Pool) For(n, grain int, fn func(i int)) {
	p.ForBlocked(n, grain, func(begin, end int) {
		for i := begin; i < end; i++ {
			fn(i)
		}
	})
}

// ForBlocked applies fn to contiguous sub-ranges covering [0, n), each at
// most grain indices wide, amortizing per-call overhead across a block.
// It returns after all invocations complete.
func (p *Pool) ForBlocked(n, grain int, fn func(begin, end int)) {
	if n <= 0 {
		return
	}
	if grain <= 0 {
		grain = 1
	}
	if p.workers == 1 || n <= grain {
		fn(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for begin := 0; begin < n; begin += grain {
		end := begin + grain
		if end > n {
			end = n
		}
		begin, end := begin, end
		g.Go(func() error {
			fn(begin, end)
			return nil
		})
	}
	// Bodies report nothing, so Wait only acts as the join barrier.
	_ = g.Wait()
}
