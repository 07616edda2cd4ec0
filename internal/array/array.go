package array

import (
	"fmt"

	"github.com/born-ml/ndcore/internal/status"
)

// Array couples a Storage with a view: shape, signed byte strides and a byte
// offset from the storage base. Arrays are logically immutable after
// creation; kernels read inputs and write only freshly allocated outputs.
type Array struct {
	storage  *Storage
	dtype    Dtype
	shape    Shape
	strides  []int64 // bytes; may be negative (reversed slice) or zero (broadcast)
	offset   int64   // bytes from the storage base
	readonly bool
}

// NewDense allocates a fresh C-contiguous Array of the given shape.
// The new Array owns the initial storage reference.
func NewDense(dtype Dtype, shape Shape, readonly bool) (*Array, error) {
	byteLen := shape.NumElements() * dtype.Size()
	storage, err := NewStorage(dtype, byteLen, readonly)
	if err != nil {
		return nil, err
	}
	return &Array{
		storage:  storage,
		dtype:    dtype,
		shape:    shape.Clone(),
		strides:  ContiguousStrides(shape, dtype.Size()),
		offset:   0,
		readonly: readonly,
	}, nil
}

// NewView builds an Array over existing storage, taking a new storage
// reference. The view's reachable byte range is validated against the
// storage capacity.
func NewView(storage *Storage, shape Shape, strides []int64, offset int64, readonly bool) (*Array, error) {
	a := &Array{
		storage:  storage,
		dtype:    storage.Dtype(),
		shape:    shape.Clone(),
		strides:  append([]int64(nil), strides...),
		offset:   offset,
		readonly: readonly || storage.Readonly(),
	}
	if err := a.checkBounds(); err != nil {
		return nil, err
	}
	storage.Retain()
	return a, nil
}

// checkBounds verifies that every reachable element lies inside the storage.
func (a *Array) checkBounds() error {
	if a.NumElements() == 0 {
		if a.offset < 0 || a.offset > a.storage.ByteCap() {
			return status.Errorf(status.InvalidStrides, "view offset %d outside storage of %d bytes",
				a.offset, a.storage.ByteCap())
		}
		return nil
	}
	lo := a.offset
	hi := a.offset + a.dtype.Size()
	for i, dim := range a.shape {
		span := a.strides[i] * (dim - 1)
		if span > 0 {
			hi += span
		} else {
			lo += span
		}
	}
	if lo < 0 || hi > a.storage.ByteCap() {
		return status.Errorf(status.InvalidStrides,
			"view reaches bytes [%d, %d) outside storage of %d bytes", lo, hi, a.storage.ByteCap())
	}
	return nil
}

// Storage returns the underlying storage.
func (a *Array) Storage() *Storage {
	return a.storage
}

// Dtype returns the element type.
func (a *Array) Dtype() Dtype {
	return a.dtype
}

// Shape returns the view shape. The caller must not mutate it.
func (a *Array) Shape() Shape {
	return a.shape
}

// Strides returns the byte strides. The caller must not mutate them.
func (a *Array) Strides() []int64 {
	return a.strides
}

// Offset returns the byte offset from the storage base.
func (a *Array) Offset() int64 {
	return a.offset
}

// Rank returns the number of axes.
func (a *Array) Rank() int {
	return len(a.shape)
}

// NumElements returns the element count (1 for rank 0).
func (a *Array) NumElements() int64 {
	return a.shape.NumElements()
}

// ByteLen returns the logical byte length of the view's elements.
func (a *Array) ByteLen() int64 {
	return a.NumElements() * a.dtype.Size()
}

// Readonly reports whether the view or its storage is readonly.
func (a *Array) Readonly() bool {
	return a.readonly
}

// IsContiguous reports C-order contiguity: strides equal the row-major
// strides implied by the shape. Axes of extent 1 are exempt; rank-0 and
// empty arrays are contiguous.
func (a *Array) IsContiguous() bool {
	if a.NumElements() == 0 {
		return true
	}
	expected := a.dtype.Size()
	for i := len(a.shape) - 1; i >= 0; i-- {
		if a.shape[i] == 1 {
			continue
		}
		if a.strides[i] != expected {
			return false
		}
		expected *= a.shape[i]
	}
	return true
}

// ElemOffset returns the element index (in dtype units, relative to the
// storage base) of the view's element at the given byte offset delta.
func (a *Array) ElemOffset(byteDelta int64) int64 {
	return (a.offset + byteDelta) / a.dtype.Size()
}

// ElemStrides returns the strides converted to element units, aligned to
// the given broadcast shape.
func (a *Array) ElemStrides(out Shape) []int64 {
	bs := BroadcastStrides(a.shape, a.strides, out)
	width := a.dtype.Size()
	for i := range bs {
		bs[i] /= width
	}
	return bs
}

// Retain adds a storage reference on behalf of a new owner of this Array.
func (a *Array) Retain() {
	a.storage.Retain()
}

// Release drops one storage reference.
func (a *Array) Release() {
	a.storage.Release()
}

// String returns a short description for logs.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v", a.dtype, []int64(a.shape))
}
