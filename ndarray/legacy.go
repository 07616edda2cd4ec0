package ndarray

import (
	"github.com/born-ml/ndcore/internal/kernel"
	"github.com/born-ml/ndcore/internal/status"
)

// Legacy low-level hooks kept for benchmark and regression scaffolding.
// They are not part of the core design.

// AddInto computes a + b into a pre-allocated output handle. The output
// must be contiguous, writable and match the broadcast shape and promoted
// dtype exactly.
func AddInto(a, b, out Handle) Status {
	return guard("nd_add_into", func() error {
		aa, err := getArray(a)
		if err != nil {
			return err
		}
		bb, err := getArray(b)
		if err != nil {
			return err
		}
		oo, err := getArray(out)
		if err != nil {
			return err
		}
		return kernel.BinaryInto(kernel.OpAdd, aa, bb, oo)
	})
}

// ArrayDataPtr returns a pointer to the first byte of the view, or nil for
// a stale handle or an empty array.
func ArrayDataPtr(h Handle) *byte {
	a, err := getArray(h)
	if err != nil || a.ByteLen() == 0 {
		return nil
	}
	return &a.Storage().Bytes()[a.Offset()]
}

// ArrayLen writes the element count. Same as ArrayElemCount; retained under
// its historical name.
func ArrayLen(h Handle, outLen *uint64) Status {
	return ArrayElemCount(h, outLen)
}

// simdWidthF64 is the unroll factor of the raw f64 loops.
const simdWidthF64 = 4

// SimdWidthF64 reports the f64 lane count of the raw kernels.
func SimdWidthF64() uint64 {
	return simdWidthF64
}

// SimdAddF64Raw adds two equal-length raw spans into out.
func SimdAddF64Raw(a, b, out []float64) Status {
	return guard("nd_simd_add_f64_raw", func() error {
		if len(a) != len(b) || len(a) != len(out) {
			return status.Errorf(status.InvalidArg,
				"span lengths differ: %d, %d, %d", len(a), len(b), len(out))
		}
		n := len(a) &^ (simdWidthF64 - 1)
		for i := 0; i < n; i += simdWidthF64 {
			out[i] = a[i] + b[i]
			out[i+1] = a[i+1] + b[i+1]
			out[i+2] = a[i+2] + b[i+2]
			out[i+3] = a[i+3] + b[i+3]
		}
		for i := n; i < len(a); i++ {
			out[i] = a[i] + b[i]
		}
		return nil
	})
}

// SimdSumF64Raw reduces a raw span with the engine's pairwise summation.
func SimdSumF64Raw(data []float64, outSum *float64) Status {
	return guard("nd_simd_sum_f64_raw", func() error {
		if err := checkOut("nd_simd_sum_f64_raw", outSum); err != nil {
			return err
		}
		*outSum = kernel.PairwiseSumF64(data)
		return nil
	})
}
