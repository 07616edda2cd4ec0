package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/status"
)

func matArr(t *testing.T, dim int64) *array.Array {
	t.Helper()
	a, err := array.NewDense(array.F64, array.Shape{dim, dim}, false)
	require.NoError(t, err)
	span := a.Storage().Float64s()
	for i := range span {
		span[i] = float64(i % 7)
	}
	return a
}

// waitTerminal polls until the job leaves Pending/Running.
func waitTerminal(t *testing.T, e *Executor, id uint64) State {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		st, _, err := e.Poll(id)
		require.NoError(t, err)
		if st != Pending && st != Running {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return 0
}

func TestSubmitPollTake(t *testing.T) {
	e := NewExecutor(2)
	defer e.Shutdown()

	a := matArr(t, 64)
	b := matArr(t, 64)
	id, err := e.SubmitMatMul(a, b)
	require.NoError(t, err)
	require.NotZero(t, id)

	st := waitTerminal(t, e, id)
	require.Equal(t, Succeeded, st)

	result, err := e.TakeResult(id)
	require.NoError(t, err)
	assert.True(t, result.Shape().Equal(array.Shape{64, 64}))

	// A second take fails: the result was transferred.
	_, err = e.TakeResult(id)
	assert.Equal(t, status.InvalidArg, status.CodeOf(err))

	st, _, err = e.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, Consumed, st)

	result.Release()
}

func TestJobIDsMonotonic(t *testing.T) {
	e := NewExecutor(1)
	defer e.Shutdown()

	a := matArr(t, 8)
	b := matArr(t, 8)
	prev := uint64(0)
	for i := 0; i < 5; i++ {
		id, err := e.SubmitMatMul(a, b)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestInputsRetainedUntilTerminal(t *testing.T) {
	// A single worker pinned on a large job keeps the second job Pending,
	// so its input refcounts can be observed race-free.
	e := NewExecutor(1)
	defer e.Shutdown()

	blocker := matArr(t, 512)
	_, err := e.SubmitMatMul(blocker, blocker)
	require.NoError(t, err)

	a := matArr(t, 32)
	b := matArr(t, 32)
	before := a.Storage().Refs()

	id, err := e.SubmitMatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, before+1, a.Storage().Refs())

	waitTerminal(t, e, id)
	assert.Equal(t, before, a.Storage().Refs())
}

func TestCancelPending(t *testing.T) {
	// A single worker busy with a large job keeps the second job Pending
	// long enough to cancel it from the queue.
	e := NewExecutor(1)
	defer e.Shutdown()

	big := matArr(t, 512)
	blockerID, err := e.SubmitMatMul(big, big)
	require.NoError(t, err)

	small := matArr(t, 8)
	victimID, err := e.SubmitMatMul(small, small)
	require.NoError(t, err)

	require.NoError(t, e.Cancel(victimID))
	st, _, err := e.Poll(victimID)
	require.NoError(t, err)
	// Cancelled immediately unless the worker already picked it up.
	if st != Cancelled {
		st = waitTerminal(t, e, victimID)
	}
	assert.Contains(t, []State{Cancelled, Succeeded}, st)

	_, err = e.TakeResult(victimID)
	if st == Cancelled {
		assert.Equal(t, status.InvalidArg, status.CodeOf(err))
	}

	waitTerminal(t, e, blockerID)
}

func TestCancelRunningObserved(t *testing.T) {
	e := NewExecutor(1)
	defer e.Shutdown()

	big := matArr(t, 768)
	id, err := e.SubmitMatMul(big, big)
	require.NoError(t, err)

	// Let the worker start, then cancel.
	for {
		st, _, pollErr := e.Poll(id)
		require.NoError(t, pollErr)
		if st != Pending {
			break
		}
		time.Sleep(100 * time.Microsecond)
	}
	require.NoError(t, e.Cancel(id))

	st := waitTerminal(t, e, id)
	// Best-effort: the kernel may finish before observing the flag.
	assert.Contains(t, []State{Cancelled, Succeeded}, st)

	if st == Cancelled {
		_, err := e.TakeResult(id)
		assert.Equal(t, status.InvalidArg, status.CodeOf(err))
	}
}

func TestCancelIdempotent(t *testing.T) {
	e := NewExecutor(1)
	defer e.Shutdown()

	a := matArr(t, 16)
	id, err := e.SubmitMatMul(a, a)
	require.NoError(t, err)

	require.NoError(t, e.Cancel(id))
	require.NoError(t, e.Cancel(id))
	require.NoError(t, e.Cancel(id))
}

func TestUnknownJobID(t *testing.T) {
	e := NewExecutor(1)
	defer e.Shutdown()

	_, _, err := e.Poll(9999)
	assert.Equal(t, status.InvalidArg, status.CodeOf(err))
	_, err = e.TakeResult(9999)
	assert.Equal(t, status.InvalidArg, status.CodeOf(err))
	err = e.Cancel(9999)
	assert.Equal(t, status.InvalidArg, status.CodeOf(err))
}

func TestFailedJobExposesCode(t *testing.T) {
	e := NewExecutor(1)
	defer e.Shutdown()

	// Mismatched inner dimensions fail inside the kernel.
	a := matArr(t, 8)
	b, err := array.NewDense(array.F64, array.Shape{9, 9}, false)
	require.NoError(t, err)

	id, err := e.SubmitMatMul(a, b)
	require.NoError(t, err)

	st := waitTerminal(t, e, id)
	require.Equal(t, Failed, st)

	_, code, err := e.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, status.InvalidShape, code)
}

func TestShutdownDropsJobs(t *testing.T) {
	e := NewExecutor(2)
	a := matArr(t, 32)
	id, err := e.SubmitMatMul(a, a)
	require.NoError(t, err)
	waitTerminal(t, e, id)

	e.Shutdown()
	_, _, err = e.Poll(id)
	assert.Equal(t, status.InvalidArg, status.CodeOf(err))
}
