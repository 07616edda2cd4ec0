package kernel

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/parallel"
	"github.com/born-ml/ndcore/internal/status"
)

// ErrCancelled reports that a matmul observed its cancel flag at a block
// boundary and stopped early.
var ErrCancelled = errors.New("matmul cancelled")

// mmBlock is the tile edge for the blocked loops. Cancellation is checked
// between block sweeps.
const mmBlock = 64

// MatMul multiplies a and b. Both rank 2 (MxK @ KxN), or rank 1 with the
// usual interpretation: 1-D lhs is 1xK, 1-D rhs is Kx1, and 1-D @ 1-D is a
// dot product returning rank 0. Dtype promotion applies; the output is
// freshly allocated and C-contiguous. cancelled may be nil.
func MatMul(a, b *array.Array, cancelled func() bool) (*array.Array, error) {
	ra, rb := a.Rank(), b.Rank()
	if ra < 1 || ra > 2 || rb < 1 || rb > 2 {
		return nil, status.Errorf(status.InvalidShape,
			"matmul: ranks %d and %d unsupported (want 1 or 2)", ra, rb)
	}

	aShape, bShape := a.Shape(), b.Shape()
	saRaw := a.ElemStrides(aShape)
	sbRaw := b.ElemStrides(bShape)

	var m, k, n int64
	var sa0, sa1, sb0, sb1 int64
	if ra == 2 {
		m, k = aShape[0], aShape[1]
		sa0, sa1 = saRaw[0], saRaw[1]
	} else {
		m, k = 1, aShape[0]
		sa0, sa1 = 0, saRaw[0]
	}
	var kb int64
	if rb == 2 {
		kb, n = bShape[0], bShape[1]
		sb0, sb1 = sbRaw[0], sbRaw[1]
	} else {
		kb, n = bShape[0], 1
		sb0, sb1 = sbRaw[0], 0
	}
	if k != kb {
		return nil, status.Errorf(status.InvalidShape,
			"matmul: inner dimensions do not match (%d vs %d)", k, kb)
	}

	var outShape array.Shape
	switch {
	case ra == 2 && rb == 2:
		outShape = array.Shape{m, n}
	case ra == 1 && rb == 2:
		outShape = array.Shape{n}
	case ra == 2 && rb == 1:
		outShape = array.Shape{m}
	default:
		outShape = nil // dot product, rank 0
	}

	outDtype := array.Promote(a.Dtype(), b.Dtype())
	out, err := array.NewDense(outDtype, outShape, false)
	if err != nil {
		return nil, errors.Wrap(err, "matmul")
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	ba := a.ElemOffset(0)
	bb := b.ElemOffset(0)

	var ok bool
	switch outDtype {
	case array.F64:
		ok = matmulT(out.Storage().Float64s(), loadF64(a), loadF64(b), m, k, n, sa0, sa1, sb0, sb1, ba, bb, cancelled)
	case array.F32:
		ok = matmulT(out.Storage().Float32s(), loadF32(a), loadF32(b), m, k, n, sa0, sa1, sb0, sb1, ba, bb, cancelled)
	case array.I32:
		ok = matmulT(out.Storage().Int32s(), loadI32(a), loadI32(b), m, k, n, sa0, sa1, sb0, sb1, ba, bb, cancelled)
	default:
		panic("matmul: unreachable dtype")
	}
	if !ok {
		out.Release()
		return nil, ErrCancelled
	}
	return out, nil
}

// matmulT runs the blocked loops. Row blocks fan out across workers; the
// k loop stays sequential per output cell, so results are deterministic for
// identical inputs regardless of worker count. Returns false if cancellation
// was observed.
func matmulT[T number](dst []T, la, lb func(int64) T, m, k, n, sa0, sa1, sb0, sb1, ba, bb int64, cancelled func() bool) bool {
	var aborted atomic.Bool
	parallel.ForBlocks(int(m), mmBlock, func(iStart, iEnd int) {
		if aborted.Load() || cancelled() {
			aborted.Store(true)
			return
		}
		for kk := int64(0); kk < k; kk += mmBlock {
			kEnd := min(kk+mmBlock, k)
			if cancelled() {
				aborted.Store(true)
				return
			}
			for i := int64(iStart); i < int64(iEnd); i++ {
				rowA := ba + i*sa0
				rowC := i * n
				for kc := kk; kc < kEnd; kc++ {
					av := la(rowA + kc*sa1)
					colB := bb + kc*sb0
					for j := int64(0); j < n; j++ {
						dst[rowC+j] += av * lb(colB+j*sb1)
					}
				}
			}
		}
	}, parallel.DefaultConfig())
	return !aborted.Load()
}
