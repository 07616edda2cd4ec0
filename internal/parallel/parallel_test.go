package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	const n = 10000
	var sum atomic.Int64
	For(n, func(i int) {
		sum.Add(int64(i))
	}, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64})
	want := int64(n) * (n - 1) / 2
	if sum.Load() != want {
		t.Errorf("sum = %d, want %d", sum.Load(), want)
	}
}

func TestForSequentialFallback(t *testing.T) {
	seen := make([]bool, 10)
	For(10, func(i int) {
		seen[i] = true
	}, Config{Enabled: false})
	for i, ok := range seen {
		if !ok {
			t.Errorf("index %d not visited", i)
		}
	}
}

func TestForBlocksPartitions(t *testing.T) {
	var count atomic.Int64
	ForBlocks(100, 32, func(start, end int) {
		count.Add(int64(end - start))
	}, DefaultConfig())
	if count.Load() != 100 {
		t.Errorf("covered %d items, want 100", count.Load())
	}
}

func TestForBlocksZeroItems(t *testing.T) {
	called := false
	ForBlocks(0, 32, func(start, end int) {
		called = true
	}, DefaultConfig())
	if called {
		t.Error("callback invoked for empty range")
	}
}
