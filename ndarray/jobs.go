package ndarray

import "github.com/born-ml/ndcore/internal/status"

// JobSubmitMatMul enqueues an asynchronous matmul of a and b and writes the
// job ID. Both inputs are retained for the job's lifetime, so releasing
// their handles while the job runs is safe.
func JobSubmitMatMul(a, b Handle, outJobID *uint64) Status {
	return guard("nd_job_submit_matmul", func() error {
		if err := checkOut("nd_job_submit_matmul", outJobID); err != nil {
			return err
		}
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		bb, err := getArray(b)
		if err != nil {
			return err
		}
		// Validate the shapes up front so submit-time mistakes surface
		// synchronously rather than as a Failed job.
		if ra, rb := aa.Rank(), bb.Rank(); ra < 1 || ra > 2 || rb < 1 || rb > 2 {
			return status.Errorf(status.InvalidShape,
				"matmul: ranks %d and %d unsupported (want 1 or 2)", ra, rb)
		}
		id, err := executor().SubmitMatMul(aa, bb)
		if err != nil {
			return err
		}
		*outJobID = id
		return nil
	})
}

// JobPoll writes the job's state and, for Failed jobs, the kernel's status
// code. Non-blocking.
func JobPoll(jobID uint64, outState *uint32, outResultStatus *Status) Status {
	return guard("nd_job_poll", func() error {
		if err := checkOut("nd_job_poll", outState); err != nil {
			return err
		}
		st, code, err := executor().Poll(jobID)
		if err != nil {
			return err
		}
		*outState = uint32(st)
		if outResultStatus != nil {
			*outResultStatus = Status(code)
		}
		return nil
	})
}

// JobTakeResult transfers a Succeeded job's result to the caller as a new
// handle and marks the job Consumed. Any other state fails INVALID_ARG.
func JobTakeResult(jobID uint64, outHandle *Handle) Status {
	return guard("nd_job_take_result", func() error {
		if err := checkOut("nd_job_take_result", outHandle); err != nil {
			return err
		}
		result, err := executor().TakeResult(jobID)
		if err != nil {
			return err
		}
		register(result, outHandle)
		return nil
	})
}

// JobCancel requests cancellation. Pending jobs cancel immediately; Running
// jobs observe the flag at block boundaries. Idempotent.
func JobCancel(jobID uint64) Status {
	return guard("nd_job_cancel", func() error {
		return executor().Cancel(jobID)
	})
}
