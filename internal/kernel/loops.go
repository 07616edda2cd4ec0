package kernel

import "github.com/born-ml/ndcore/internal/array"

// loadF64 returns an accessor reading a's elements as float64, converting
// from the source dtype where promotion demands it. The offset argument is
// an element index relative to a's storage base, in a's own dtype units.
func loadF64(a *array.Array) func(int64) float64 {
	switch a.Dtype() {
	case array.F64:
		s := a.Storage().Float64s()
		return func(off int64) float64 { return s[off] }
	case array.F32:
		s := a.Storage().Float32s()
		return func(off int64) float64 { return float64(s[off]) }
	case array.I32:
		s := a.Storage().Int32s()
		return func(off int64) float64 { return float64(s[off]) }
	default:
		panic("loadF64: unknown dtype")
	}
}

// loadF32 returns an accessor reading a's elements as float32.
func loadF32(a *array.Array) func(int64) float32 {
	switch a.Dtype() {
	case array.F32:
		s := a.Storage().Float32s()
		return func(off int64) float32 { return s[off] }
	case array.I32:
		s := a.Storage().Int32s()
		return func(off int64) float32 { return float32(s[off]) }
	default:
		panic("loadF32: unknown dtype")
	}
}

// loadI32 returns a direct accessor; i32 results only arise from i32 pairs.
func loadI32(a *array.Array) func(int64) int32 {
	if a.Dtype() != array.I32 {
		panic("loadI32: dtype is not i32")
	}
	s := a.Storage().Int32s()
	return func(off int64) int32 { return s[off] }
}

// isLinear reports whether the element strides walk the broadcast shape in
// dense row-major order, enabling the chunked fast path. Extent-1 axes
// carry no constraint.
func isLinear(shape array.Shape, strides []int64) bool {
	expected := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 1 {
			continue
		}
		if strides[i] != expected {
			return false
		}
		expected *= shape[i]
	}
	return true
}

// zip2 walks shape in row-major order producing element offsets for two
// operands driven by their broadcast-aligned strides.
func zip2(shape array.Shape, sa, sb []int64, ba, bb int64, fn func(oa, ob int64)) {
	if shape.NumElements() == 0 {
		return
	}
	ndim := len(shape)
	if ndim == 0 {
		fn(ba, bb)
		return
	}

	var idx [array.MaxRank]int64
	oa, ob := ba, bb
	inner := ndim - 1
	for {
		ia, ib := oa, ob
		for k := int64(0); k < shape[inner]; k++ {
			fn(ia, ib)
			ia += sa[inner]
			ib += sb[inner]
		}

		axis := inner - 1
		for axis >= 0 {
			idx[axis]++
			oa += sa[axis]
			ob += sb[axis]
			if idx[axis] < shape[axis] {
				break
			}
			oa -= sa[axis] * shape[axis]
			ob -= sb[axis] * shape[axis]
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// zip3 is zip2 for three operands.
func zip3(shape array.Shape, sa, sb, sc []int64, ba, bb, bc int64, fn func(oa, ob, oc int64)) {
	if shape.NumElements() == 0 {
		return
	}
	ndim := len(shape)
	if ndim == 0 {
		fn(ba, bb, bc)
		return
	}

	var idx [array.MaxRank]int64
	oa, ob, oc := ba, bb, bc
	inner := ndim - 1
	for {
		ia, ib, ic := oa, ob, oc
		for k := int64(0); k < shape[inner]; k++ {
			fn(ia, ib, ic)
			ia += sa[inner]
			ib += sb[inner]
			ic += sc[inner]
		}

		axis := inner - 1
		for axis >= 0 {
			idx[axis]++
			oa += sa[axis]
			ob += sb[axis]
			oc += sc[axis]
			if idx[axis] < shape[axis] {
				break
			}
			oa -= sa[axis] * shape[axis]
			ob -= sb[axis] * shape[axis]
			oc -= sc[axis] * shape[axis]
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// offsetAt maps a row-major linear index to an element offset via divmod
// over the shape's element counts.
func offsetAt(i int64, counts, strides []int64, base int64) int64 {
	off := base
	for d := 0; d < len(counts); d++ {
		coord := i / counts[d]
		i %= counts[d]
		off += coord * strides[d]
	}
	return off
}

// elemCounts returns the row-major element counts per axis (the contiguous
// strides in units of elements), used as the divisors in offsetAt.
func elemCounts(shape array.Shape) []int64 {
	counts := make([]int64, len(shape))
	if len(shape) == 0 {
		return counts
	}
	counts[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		counts[i] = counts[i+1] * shape[i+1]
	}
	return counts
}
