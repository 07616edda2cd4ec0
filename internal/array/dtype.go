// Package array implements the typed, strided n-dimensional array core:
// dtypes, shapes, stride algebra, reference-counted storage and views.
package array

import "github.com/born-ml/ndcore/internal/status"

// Dtype is the runtime element type of an array. The numeric values are ABI
// dtype codes; code 2 is reserved and never valid.
type Dtype uint32

// Supported element types.
const (
	F32 Dtype = 1
	I32 Dtype = 3
	F64 Dtype = 4
)

// Valid reports whether dt is a known dtype code.
func (dt Dtype) Valid() bool {
	switch dt {
	case F32, I32, F64:
		return true
	default:
		return false
	}
}

// Size returns the byte width of one element.
func (dt Dtype) Size() int64 {
	switch dt {
	case F32, I32:
		return 4
	case F64:
		return 8
	default:
		panic("unknown dtype")
	}
}

// IsFloat reports whether dt belongs to the float category.
// The category drives promotion and comparison semantics.
func (dt Dtype) IsFloat() bool {
	return dt == F32 || dt == F64
}

// String returns a human-readable name for the dtype.
func (dt Dtype) String() string {
	switch dt {
	case F32:
		return "f32"
	case I32:
		return "i32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// CheckDtype validates a caller-provided dtype code.
func CheckDtype(dt Dtype) error {
	if !dt.Valid() {
		return status.Errorf(status.InvalidDtype, "unknown dtype code %d", uint32(dt))
	}
	return nil
}

// Promote maps two operand dtypes to their common result dtype:
// equal dtypes keep their dtype, anything paired with f64 widens to f64,
// and the remaining cross pair (f32, i32) promotes to f32.
func Promote(a, b Dtype) Dtype {
	if a == b {
		return a
	}
	if a == F64 || b == F64 {
		return F64
	}
	return F32
}
