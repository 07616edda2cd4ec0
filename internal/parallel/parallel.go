// Package parallel provides chunked parallel loops for the compute kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too
// small to amortize goroutine overhead. f must be safe to call concurrently
// for distinct i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBlocks executes f(start, end) over [0, n) split into blocks of the
// given size, one call per block. Used by the matmul row sweep, where f
// checks for cooperative cancellation at block boundaries.
func ForBlocks(n, blockSize int, f func(start, end int), cfg Config) {
	if blockSize <= 0 {
		blockSize = 1
	}
	blocks := (n + blockSize - 1) / blockSize
	if !cfg.Enabled || blocks < 2 {
		for start := 0; start < n; start += blockSize {
			f(start, min(start+blockSize, n))
		}
		return
	}

	var wg sync.WaitGroup
	for b := 0; b < blocks; b++ {
		start := b * blockSize
		end := min(start+blockSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
