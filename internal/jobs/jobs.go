// Package jobs implements the asynchronous job facility: a fixed worker
// pool pulling compute jobs from a FIFO queue, with polling, best-effort
// cooperative cancellation and result handoff.
package jobs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/kernel"
	"github.com/born-ml/ndcore/internal/status"
)

// State is a job's lifecycle state. The numeric values are part of the ABI.
type State uint32

// Job states.
const (
	Pending State = iota
	Running
	Succeeded
	Failed
	Cancelled
	Consumed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// Kind names the compute a job runs.
type Kind int

// Job kinds. Matmul is the only submit entry in scope.
const (
	KindMatMul Kind = iota
)

// Job is one unit of asynchronous compute. Inputs are retained from submit
// until the job reaches a terminal state; a successful result is retained by
// the executor until taken.
type Job struct {
	id     uint64
	trace  uuid.UUID
	kind   Kind
	state  State // guarded by the executor mutex
	cancel atomic.Bool
	a, b   *array.Array
	result *array.Array
	code   status.Code // failure code when state == Failed
}

// Executor runs jobs on a fixed-size worker pool.
type Executor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Job
	jobs   map[uint64]*Job
	nextID uint64
	closed bool
	g      *errgroup.Group
}

// NewExecutor starts an executor with the given worker count, clamped to
// [1, 64].
func NewExecutor(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	if workers > 64 {
		workers = 64
	}

	e := &Executor{jobs: make(map[uint64]*Job)}
	e.cond = sync.NewCond(&e.mu)
	e.g, _ = errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		e.g.Go(func() error {
			e.worker()
			return nil
		})
	}
	klog.V(1).Infof("job executor started with %d workers", workers)
	return e
}

// SubmitMatMul enqueues a matmul of a and b, retaining both inputs for the
// job's lifetime. Job IDs are monotonic and never reused.
func (e *Executor) SubmitMatMul(a, b *array.Array) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, status.Errorf(status.Internal, "job executor is shut down")
	}

	e.nextID++
	j := &Job{
		id:    e.nextID,
		trace: uuid.New(),
		kind:  KindMatMul,
		state: Pending,
		a:     a,
		b:     b,
	}
	a.Retain()
	b.Retain()
	e.jobs[j.id] = j
	e.queue = append(e.queue, j)
	e.cond.Signal()
	klog.V(2).Infof("job %d (%s) submitted: %s @ %s", j.id, j.trace, a, b)
	return j.id, nil
}

// worker pulls Pending jobs in FIFO order until shutdown.
func (e *Executor) worker() {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if e.closed && len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		j := e.queue[0]
		e.queue = e.queue[1:]
		if j.state != Pending {
			// Cancelled while queued.
			e.mu.Unlock()
			continue
		}
		j.state = Running
		e.mu.Unlock()

		e.run(j)
	}
}

// run executes the job's kernel and publishes the terminal state. Inputs
// are released exactly once, at the transition out of Running.
func (e *Executor) run(j *Job) {
	var result *array.Array
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = status.Errorf(status.Internal, "job %d panicked: %v", j.id, r)
			}
		}()
		result, err = kernel.MatMul(j.a, j.b, j.cancel.Load)
	}()

	e.mu.Lock()
	switch {
	case err == nil:
		// A job that completes before observing the flag stays Succeeded;
		// cancel loses the race.
		j.state = Succeeded
		j.result = result
	case errors.Is(err, kernel.ErrCancelled):
		j.state = Cancelled
	default:
		j.state = Failed
		j.code = status.CodeOf(err)
	}
	j.a.Release()
	j.b.Release()
	j.a, j.b = nil, nil
	state := j.state
	e.mu.Unlock()
	klog.V(2).Infof("job %d (%s) finished: %s", j.id, j.trace, state)
}

// Poll returns the job's state and, for Failed jobs, the kernel's status
// code. Non-blocking.
func (e *Executor) Poll(id uint64) (State, status.Code, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return 0, status.OK, status.Errorf(status.InvalidArg, "unknown job id %d", id)
	}
	if j.state == Failed {
		return j.state, j.code, nil
	}
	return j.state, status.OK, nil
}

// TakeResult transfers the result of a Succeeded job to the caller and
// transitions the job to Consumed. Any other state fails INVALID_ARG.
func (e *Executor) TakeResult(id uint64) (*array.Array, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return nil, status.Errorf(status.InvalidArg, "unknown job id %d", id)
	}
	if j.state != Succeeded {
		return nil, status.Errorf(status.InvalidArg,
			"job %d is %s, result not takeable", id, j.state)
	}
	j.state = Consumed
	result := j.result
	j.result = nil
	return result, nil
}

// Cancel requests cancellation. Pending jobs transition immediately;
// Running jobs observe the flag at block boundaries. Idempotent and safe in
// any state.
func (e *Executor) Cancel(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return status.Errorf(status.InvalidArg, "unknown job id %d", id)
	}
	j.cancel.Store(true)
	if j.state == Pending {
		j.state = Cancelled
		j.a.Release()
		j.b.Release()
		j.a, j.b = nil, nil
		klog.V(2).Infof("job %d cancelled while pending", id)
	}
	return nil
}

// Shutdown stops the workers, waits for them to drain, and drops every job
// along with any retained inputs and unconsumed results.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
	_ = e.g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, j := range e.jobs {
		if j.a != nil {
			j.a.Release()
			j.b.Release()
		}
		if j.result != nil {
			j.result.Release()
		}
		delete(e.jobs, id)
	}
	klog.V(1).Info("job executor shut down")
}
