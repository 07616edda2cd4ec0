package array

import "github.com/born-ml/ndcore/internal/status"

// MaxRank is the highest supported number of axes.
const MaxRank = 8

// Shape represents the dimensions of an array. Rank 0 is a scalar with one
// element; any extent may be 0, giving an empty array.
type Shape []int64

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements (1 for rank 0).
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks rank and extents of a caller-provided shape.
func (s Shape) Validate() error {
	if len(s) > MaxRank {
		return status.Errorf(status.InvalidArg, "rank %d exceeds maximum %d", len(s), MaxRank)
	}
	for i, dim := range s {
		if dim < 0 {
			return status.Errorf(status.InvalidArg, "invalid extent at axis %d: %d", i, dim)
		}
	}
	return nil
}

// ContiguousStrides returns the C-order (row-major) byte strides implied by
// the shape for the given element width.
func ContiguousStrides(s Shape, width int64) []int64 {
	strides := make([]int64, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = width
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements right-aligned broadcasting: extents must be
// equal or one of them 1 (missing axes count as 1). The result extent is
// the non-1 extent, which also handles extent-0 axes the way empty arrays
// require ((0, 1) broadcasts to 0).
func BroadcastShapes(a, b Shape) (Shape, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aDim := int64(1)
		if idx := len(a) - 1 - i; idx >= 0 {
			aDim = a[idx]
		}
		bDim := int64(1)
		if idx := len(b) - 1 - i; idx >= 0 {
			bDim = b[idx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		default:
			return nil, status.Errorf(status.InvalidShape,
				"shapes not compatible for broadcasting: %v vs %v (axis %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, nil
}

// BroadcastStrides aligns an operand's byte strides to a broadcast result
// shape: missing leading axes and extent-1 axes iterate with stride 0.
func BroadcastStrides(inShape Shape, inStrides []int64, outShape Shape) []int64 {
	outDim := len(outShape)
	strides := make([]int64, outDim)
	offset := outDim - len(inShape)

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = inStrides[inIdx]
		}
	}

	return strides
}
