package array

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/born-ml/ndcore/internal/status"
)

// Owner identifies who allocated a Storage's buffer. External buffers are
// always readonly and never freed by the engine.
type Owner int

// Storage owners.
const (
	OwnerEngine Owner = iota
	OwnerExternal
)

// minAlign is the minimum base-pointer alignment. Finer than any dtype width
// so kernels may use wide loads on contiguous spans.
const minAlign = 16

// maxAlloc bounds a single storage allocation; requests beyond it are
// reported as OOM before the runtime is asked for memory.
const maxAlloc = int64(math.MaxInt64) / 4

// Storage is a reference-counted, typed, aligned byte buffer. Its refcount
// counts the Array views (and handle-table slots) that keep it alive; the
// buffer is surrendered to the garbage collector when the count hits zero.
type Storage struct {
	dtype    Dtype
	buf      []byte
	base     int64 // aligned offset into buf
	byteCap  int64 // usable bytes starting at base
	refs     atomic.Int64
	readonly bool
	owner    Owner
}

// NewStorage allocates an engine-owned buffer of byteCap usable bytes,
// zero-initialized, with the base aligned to max(dtype width, 16).
// The refcount starts at 1.
func NewStorage(dtype Dtype, byteCap int64, readonly bool) (*Storage, error) {
	if byteCap < 0 || byteCap > maxAlloc {
		return nil, status.Errorf(status.OOM, "storage of %d bytes not allocatable", byteCap)
	}
	align := dtype.Size()
	if align < minAlign {
		align = minAlign
	}

	// Over-allocate by one alignment unit so an aligned base always exists,
	// and so empty storages still own a non-empty buffer to take the address of.
	buf := make([]byte, byteCap+align)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	base := int64((uintptr(align) - addr%uintptr(align)) % uintptr(align))

	s := &Storage{
		dtype:    dtype,
		buf:      buf,
		base:     base,
		byteCap:  byteCap,
		readonly: readonly,
		owner:    OwnerEngine,
	}
	s.refs.Store(1)
	return s, nil
}

// Dtype returns the storage element type.
func (s *Storage) Dtype() Dtype {
	return s.dtype
}

// ByteCap returns the usable byte capacity.
func (s *Storage) ByteCap() int64 {
	return s.byteCap
}

// Readonly reports whether the storage was created readonly.
func (s *Storage) Readonly() bool {
	return s.readonly
}

// Owner returns the allocator tag.
func (s *Storage) Owner() Owner {
	return s.owner
}

// Retain increments the refcount.
func (s *Storage) Retain() {
	s.refs.Add(1)
}

// Release decrements the refcount and surrenders the buffer at zero.
func (s *Storage) Release() {
	if s.refs.Add(-1) == 0 {
		s.buf = nil
	}
}

// Refs returns the current refcount. Test hook.
func (s *Storage) Refs() int64 {
	return s.refs.Load()
}

// Bytes returns the aligned byte window of the storage.
func (s *Storage) Bytes() []byte {
	return s.buf[s.base : s.base+s.byteCap]
}

// Float32s reinterprets the full storage window as []float32.
// Panics if the dtype does not match.
func (s *Storage) Float32s() []float32 {
	if s.dtype != F32 {
		panic("storage dtype is not f32")
	}
	n := s.byteCap / 4
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&s.buf[s.base])), n)
}

// Float64s reinterprets the full storage window as []float64.
// Panics if the dtype does not match.
func (s *Storage) Float64s() []float64 {
	if s.dtype != F64 {
		panic("storage dtype is not f64")
	}
	n := s.byteCap / 8
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&s.buf[s.base])), n)
}

// Int32s reinterprets the full storage window as []int32.
// Panics if the dtype does not match.
func (s *Storage) Int32s() []int32 {
	if s.dtype != I32 {
		panic("storage dtype is not i32")
	}
	n := s.byteCap / 4
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&s.buf[s.base])), n)
}
