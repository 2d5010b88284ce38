package task

import (
	"runtime"
	"sync/atomic"
	"testing"
)

// TestPoolWorkers tests worker count defaulting
func TestPoolWorkers(t *testing.T) {
	if got := NewPool(3).Workers(); got != 3 {
		t.Errorf("expected 3 workers, got %d", got)
	}
	if got := NewPool(0).Workers(); got != runtime.GOMAXPROCS(0) {
		t.Errorf("expected GOMAXPROCS workers, got %d", got)
	}
	if got := NewPool(-5).Workers(); got != runtime.GOMAXPROCS(0) {
		t.Errorf("expected GOMAXPROCS workers for negative count, got %d", got)
	}
}

// TestForVisitsEveryIndex tests that For calls fn exactly once per index
func TestForVisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 4} {
		for _, n := range []int{0, 1, 9, 10, 11, 100} {
			pool := NewPool(workers)
			seen := make([]atomic.Int32, max(n, 1))
			pool.For(n, 10, func(i int) {
				seen[i].Add(1)
			})
			for i := 0; i < n; i++ {
				if got := seen[i].Load(); got != 1 {
					t.Errorf("workers=%d n=%d: index %d visited %d times", workers, n, i, got)
				}
			}
		}
	}
}

// TestForBlockedCoversRange tests that blocks tile the range exactly
func TestForBlockedCoversRange(t *testing.T) {
	pool := NewPool(4)
	const n = 101
	seen := make([]atomic.Int32, n)
	pool.ForBlocked(n, 32, func(begin, end int) {
		if begin >= end {
			t.Errorf("empty block [%d,%d)", begin, end)
		}
		if end-begin > 32 {
			t.Errorf("block [%d,%d) exceeds grain", begin, end)
		}
		for i := begin; i < end; i++ {
			seen[i].Add(1)
		}
	})
	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Errorf("index %d covered %d times", i, got)
		}
	}
}

// TestForIsBarrier tests that For returns only after all work completes
func TestForIsBarrier(t *testing.T) {
	pool := NewPool(8)
	var done atomic.Int32
	pool.For(1000, 1, func(i int) {
		done.Add(1)
	})
	if got := done.Load(); got != 1000 {
		t.Fatalf("For returned before completion: %d of 1000", got)
	}
}
