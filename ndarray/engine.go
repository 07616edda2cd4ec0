package ndarray

import (
	"runtime"
	"sync"

	"github.com/gomlx/exceptions"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/errstation"
	"github.com/born-ml/ndcore/internal/handle"
	"github.com/born-ml/ndcore/internal/jobs"
	"github.com/born-ml/ndcore/internal/status"
)

// Process-wide engine state: the handle table and error station exist from
// init; the job executor spins up on first use.
var (
	table   = handle.New()
	station = errstation.New()

	executor = sync.OnceValue(func() *jobs.Executor {
		return jobs.NewExecutor(runtime.NumCPU())
	})
)

// Shutdown stops the job executor, dropping unconsumed jobs and their
// retained arrays. Handles stay valid; only the async facility winds down.
func Shutdown() {
	executor().Shutdown()
}

// guard is the shared entry-point wrapper: it runs fn, converts escaped
// panics to INTERNAL, and records any failure in the error station before
// translating it to a status code.
func guard(symbol string, fn func() error) Status {
	var err error
	if exc := exceptions.Try(func() { err = fn() }); exc != nil {
		err = status.Errorf(status.Internal, "%s: %v", symbol, exc)
	}
	if err == nil {
		return OK
	}
	code := status.CodeOf(err)
	station.Set(code, symbol+": "+err.Error())
	return Status(code)
}

// getArray resolves a handle, mapping failures to STALE_HANDLE.
func getArray(h Handle) (*array.Array, error) {
	return table.Get(uint64(h))
}

// register places a result array into the table and writes its handle.
func register(a *array.Array, out *Handle) {
	*out = Handle(table.Register(a))
}

// checkOut validates an out-parameter pointer.
func checkOut[T any](symbol string, p *T) error {
	if p == nil {
		return status.Errorf(status.InvalidArg, "%s: out pointer is nil", symbol)
	}
	return nil
}
