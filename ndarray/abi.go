package ndarray

import "github.com/born-ml/ndcore/internal/status"

// Status is a signed 32-bit status code; OK is zero.
type Status int32

// Status codes.
const (
	OK                Status = Status(status.OK)
	ErrInvalidArg     Status = Status(status.InvalidArg)
	ErrInvalidDtype   Status = Status(status.InvalidDtype)
	ErrInvalidShape   Status = Status(status.InvalidShape)
	ErrInvalidStrides Status = Status(status.InvalidStrides)
	ErrInvalidAlign   Status = Status(status.InvalidAlignment)
	ErrStaleHandle    Status = Status(status.StaleHandle)
	ErrOOM            Status = Status(status.OOM)
	ErrNotContiguous  Status = Status(status.NotContiguous)
	ErrNotImplemented Status = Status(status.NotImplemented)
	ErrInternal       Status = Status(status.Internal)
)

// Handle is an opaque 64-bit array token. Zero is never valid.
type Handle uint64

// Dtype is an ABI dtype code. Code 2 is reserved and rejected.
type Dtype uint32

// Dtype codes.
const (
	DtypeF32 Dtype = 1
	DtypeI32 Dtype = 3
	DtypeF64 Dtype = 4
)

// Flags is the creation flag word.
type Flags uint32

// Flag bits.
const (
	FlagReadonly Flags = 1 << 0
)

// ABI booleans.
const (
	BoolFalse uint32 = 0
	BoolTrue  uint32 = 1
)

// Job states as reported by JobPoll.
const (
	JobPending   uint32 = 0
	JobRunning   uint32 = 1
	JobSucceeded uint32 = 2
	JobFailed    uint32 = 3
	JobCancelled uint32 = 4
	JobConsumed  uint32 = 5
)

// abiVersion is bumped on any breaking change to the entry-point surface.
const abiVersion uint32 = 1

// buildVersion identifies the engine build.
const buildVersion = "ndcore 0.1.0"

// AbiVersion returns the monotonic ABI revision.
func AbiVersion() uint32 {
	return abiVersion
}

// BuildVersionCString returns the static build identification string.
func BuildVersionCString() string {
	return buildVersion
}
