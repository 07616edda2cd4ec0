package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIntoLegacyHook(t *testing.T) {
	a := mustFromF64(t, []int64{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	defer ArrayRelease(a)
	b := mustFromF64(t, []int64{3}, []float64{10, 20, 30})
	defer ArrayRelease(b)

	var out Handle
	require.Equal(t, OK, ArrayAlloc(DtypeF64, []int64{2, 3}, 0, &out))
	defer ArrayRelease(out)

	require.Equal(t, OK, AddInto(a, b, out))
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, exportF64(t, out))
}

func TestAddIntoRejectsMismatchedOut(t *testing.T) {
	a := mustFromF64(t, []int64{2, 3}, make([]float64, 6))
	defer ArrayRelease(a)
	b := mustFromF64(t, []int64{3}, make([]float64, 3))
	defer ArrayRelease(b)

	var wrongShape Handle
	require.Equal(t, OK, ArrayAlloc(DtypeF64, []int64{3, 2}, 0, &wrongShape))
	defer ArrayRelease(wrongShape)
	assert.Equal(t, ErrInvalidShape, AddInto(a, b, wrongShape))

	var wrongDtype Handle
	require.Equal(t, OK, ArrayAlloc(DtypeF32, []int64{2, 3}, 0, &wrongDtype))
	defer ArrayRelease(wrongDtype)
	assert.Equal(t, ErrInvalidDtype, AddInto(a, b, wrongDtype))

	var readonly Handle
	require.Equal(t, OK, ArrayAlloc(DtypeF64, []int64{2, 3}, FlagReadonly, &readonly))
	defer ArrayRelease(readonly)
	assert.Equal(t, ErrInvalidArg, AddInto(a, b, readonly))
}

func TestArrayDataPtrAndLen(t *testing.T) {
	h := mustFromF64(t, []int64{4}, []float64{1, 2, 3, 4})

	ptr := ArrayDataPtr(h)
	require.NotNil(t, ptr)

	var n uint64
	require.Equal(t, OK, ArrayLen(h, &n))
	assert.Equal(t, uint64(4), n)

	require.Equal(t, OK, ArrayRelease(h))
	assert.Nil(t, ArrayDataPtr(h))
}

func TestSimdRawHooks(t *testing.T) {
	assert.NotZero(t, SimdWidthF64())

	a := []float64{1, 2, 3, 4, 5, 6, 7}
	b := []float64{10, 20, 30, 40, 50, 60, 70}
	out := make([]float64, 7)
	require.Equal(t, OK, SimdAddF64Raw(a, b, out))
	assert.Equal(t, []float64{11, 22, 33, 44, 55, 66, 77}, out)

	assert.Equal(t, ErrInvalidArg, SimdAddF64Raw(a, b[:3], out))

	var sum float64
	require.Equal(t, OK, SimdSumF64Raw(a, &sum))
	assert.Equal(t, 28.0, sum)

	require.Equal(t, OK, SimdSumF64Raw(nil, &sum))
	assert.Zero(t, sum)
}

func TestExportSharesContiguousStorage(t *testing.T) {
	h := mustFromF64(t, []int64{3}, []float64{1, 2, 3})
	defer ArrayRelease(h)

	var exp ExportedBytes
	require.Equal(t, OK, ArrayExportBytes(h, &exp))
	assert.Len(t, exp.Data, 24)
	assert.Same(t, ArrayDataPtr(h), &exp.Data[0])
	exp.Release()
	// A second release must be a no-op.
	exp.Release()
}

func TestExportCopiesNonContiguous(t *testing.T) {
	h := mustFromF64(t, []int64{2, 2}, []float64{1, 2, 3, 4})
	defer ArrayRelease(h)

	var tr Handle
	require.Equal(t, OK, ArrayTranspose(h, nil, &tr))
	defer ArrayRelease(tr)

	assert.Equal(t, []float64{1, 3, 2, 4}, exportF64(t, tr))
}

func TestExportCopiesReadonly(t *testing.T) {
	var h Handle
	require.Equal(t, OK, ArrayFromHostCopy(f64Bytes([]float64{5, 6}), DtypeF64, []int64{2}, nil, FlagReadonly, &h))
	defer ArrayRelease(h)

	assert.Equal(t, []float64{5, 6}, exportF64(t, h))

	// The readonly storage itself is never handed out.
	var exp ExportedBytes
	require.Equal(t, OK, ArrayExportBytes(h, &exp))
	defer exp.Release()
	assert.NotSame(t, ArrayDataPtr(h), &exp.Data[0])
}
