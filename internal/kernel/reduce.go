package kernel

import (
	"github.com/pkg/errors"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/status"
)

// sumBlock is the run length summed serially before the pairwise tree takes
// over. The same routine serves sum_all, sum_axis and the raw f64 hook, so
// float results cannot depend on input layout.
const sumBlock = 128

// pairwiseSumN reduces n lazily loaded values with pairwise (tree)
// summation. Integer addition wraps; the result for n == 0 is the additive
// identity.
func pairwiseSumN[T number](n int64, load func(int64) T) T {
	if n == 0 {
		return 0
	}
	if n <= sumBlock {
		var s T
		for i := int64(0); i < n; i++ {
			s += load(i)
		}
		return s
	}
	half := n / 2
	lo := pairwiseSumN(half, load)
	hi := pairwiseSumN(n-half, func(i int64) T { return load(half + i) })
	return lo + hi
}

// PairwiseSumF64 reduces a raw float64 span with the engine's summation
// discipline. Exposed for the legacy SIMD hook.
func PairwiseSumF64(vals []float64) float64 {
	return pairwiseSumN(int64(len(vals)), func(i int64) float64 { return vals[i] })
}

// SumAll reduces every element to a rank-0 array of the same dtype.
func SumAll(a *array.Array) (*array.Array, error) {
	out, err := array.NewDense(a.Dtype(), nil, false)
	if err != nil {
		return nil, errors.Wrap(err, "sum_all")
	}

	n := a.NumElements()
	counts := elemCounts(a.Shape())
	strides := a.ElemStrides(a.Shape())
	base := a.ElemOffset(0)

	switch a.Dtype() {
	case array.F64:
		span := a.Storage().Float64s()
		out.Storage().Float64s()[0] = pairwiseSumN(n, func(i int64) float64 {
			return span[offsetAt(i, counts, strides, base)]
		})
	case array.F32:
		span := a.Storage().Float32s()
		out.Storage().Float32s()[0] = pairwiseSumN(n, func(i int64) float32 {
			return span[offsetAt(i, counts, strides, base)]
		})
	case array.I32:
		span := a.Storage().Int32s()
		out.Storage().Int32s()[0] = pairwiseSumN(n, func(i int64) int32 {
			return span[offsetAt(i, counts, strides, base)]
		})
	default:
		panic("sum_all: unreachable dtype")
	}
	return out, nil
}

// SumAxis reduces one axis, removing it from the result. The axis may be
// negative, counting from the end; |axis| must be below the rank.
func SumAxis(a *array.Array, axis int32) (*array.Array, error) {
	ndim := a.Rank()
	if int(axis) >= ndim || int(-axis) >= ndim {
		return nil, status.Errorf(status.InvalidArg, "sum_axis: axis %d out of range for rank %d", axis, ndim)
	}
	ax := int(axis)
	if ax < 0 {
		ax += ndim
	}

	shape := a.Shape()
	outShape := make(array.Shape, 0, ndim-1)
	for i, dim := range shape {
		if i != ax {
			outShape = append(outShape, dim)
		}
	}

	out, err := array.NewDense(a.Dtype(), outShape, false)
	if err != nil {
		return nil, errors.Wrap(err, "sum_axis")
	}
	if out.NumElements() == 0 {
		return out, nil
	}

	strides := a.ElemStrides(shape)
	axisLen := shape[ax]
	axisStride := strides[ax]
	outStrides := make([]int64, 0, ndim-1)
	for i, s := range strides {
		if i != ax {
			outStrides = append(outStrides, s)
		}
	}
	counts := elemCounts(outShape)
	base := a.ElemOffset(0)
	total := out.NumElements()

	switch a.Dtype() {
	case array.F64:
		span := a.Storage().Float64s()
		dst := out.Storage().Float64s()
		for o := int64(0); o < total; o++ {
			rowBase := offsetAt(o, counts, outStrides, base)
			dst[o] = pairwiseSumN(axisLen, func(j int64) float64 { return span[rowBase+j*axisStride] })
		}
	case array.F32:
		span := a.Storage().Float32s()
		dst := out.Storage().Float32s()
		for o := int64(0); o < total; o++ {
			rowBase := offsetAt(o, counts, outStrides, base)
			dst[o] = pairwiseSumN(axisLen, func(j int64) float32 { return span[rowBase+j*axisStride] })
		}
	case array.I32:
		span := a.Storage().Int32s()
		dst := out.Storage().Int32s()
		for o := int64(0); o < total; o++ {
			rowBase := offsetAt(o, counts, outStrides, base)
			dst[o] = pairwiseSumN(axisLen, func(j int64) int32 { return span[rowBase+j*axisStride] })
		}
	default:
		panic("sum_axis: unreachable dtype")
	}
	return out, nil
}
