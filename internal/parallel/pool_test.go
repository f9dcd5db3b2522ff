package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

func TestWorkerPool_Run(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const n = 100
	var seen [n]atomic.Int32
	if err := pool.Run(context.Background(), n, func(i int) { seen[i].Add(1) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Errorf("item %d ran %d times", i, got)
		}
	}
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	if err := pool.Run(context.Background(), 0, func(int) { t.Error("fn must not run") }); err != nil {
		t.Errorf("Run(0) = %v", err)
	}
}

func TestWorkerPool_RunCanceled(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Int32
	err := pool.Run(ctx, 50, func(int) { ran.Add(1) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if ran.Load() != 0 {
		t.Errorf("%d items ran after cancellation", ran.Load())
	}
}

func TestWorkerPool_RunAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
	var ran atomic.Int32
	if err := pool.Run(context.Background(), 10, func(int) { ran.Add(1) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ran.Load() != 10 {
		t.Errorf("ran = %d, want 10 on the caller goroutine", ran.Load())
	}
}

func TestSplitRows(t *testing.T) {
	tests := []struct {
		height, n int
		want      []Band
	}{
		{0, 4, nil},
		{10, 1, []Band{{0, 10}}},
		{10, 3, []Band{{0, 4}, {4, 7}, {7, 10}}},
		{2, 8, []Band{{0, 1}, {1, 2}}},
		{5, 0, []Band{{0, 5}}},
	}
	for _, tt := range tests {
		got := SplitRows(tt.height, tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("SplitRows(%d, %d) = %v, want %v", tt.height, tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitRows(%d, %d)[%d] = %v, want %v", tt.height, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}
