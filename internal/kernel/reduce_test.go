package kernel

import (
	"math/rand"
	"testing"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/status"
)

func TestSumAllScalarResult(t *testing.T) {
	a := f64Arr(t, array.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	out, err := SumAll(a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rank() != 0 || out.Dtype() != array.F64 {
		t.Fatalf("sum_all produced %s", out)
	}
	if got := out.Storage().Float64s()[0]; got != 21 {
		t.Errorf("sum_all = %v, want 21", got)
	}
}

func TestSumAllKeepsDtype(t *testing.T) {
	a := i32Arr(t, array.Shape{4}, []int32{1, 2, 3, 4})
	out, err := SumAll(a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Dtype() != array.I32 {
		t.Fatalf("sum_all dtype = %s, want i32", out.Dtype())
	}
	if got := out.Storage().Int32s()[0]; got != 10 {
		t.Errorf("sum_all = %d, want 10", got)
	}
}

func TestSumAllEmptyIsIdentity(t *testing.T) {
	a := f64Arr(t, array.Shape{0}, nil)
	out, err := SumAll(a)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Storage().Float64s()[0]; got != 0 {
		t.Errorf("sum of empty = %v, want 0", got)
	}
}

func TestSumAllLayoutIndependent(t *testing.T) {
	// The pairwise tree must give bit-identical results for the same
	// iteration order over different layouts.
	rng := rand.New(rand.NewSource(7))
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = rng.NormFloat64() * 1e6
	}
	a := f64Arr(t, array.Shape{10, 100}, vals)

	direct, err := SumAll(a)
	if err != nil {
		t.Fatal(err)
	}

	// A sliced view with the same elements in the same row-major order but
	// a different storage layout.
	wide := f64Arr(t, array.Shape{10, 200}, nil)
	span := wide.Storage().Float64s()
	for r := 0; r < 10; r++ {
		for c := 0; c < 100; c++ {
			span[r*200+c*2] = vals[r*100+c]
		}
	}
	view, err := wide.Slice(nil, []int64{10, 200}, []int64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	strided, err := SumAll(view)
	if err != nil {
		t.Fatal(err)
	}

	if direct.Storage().Float64s()[0] != strided.Storage().Float64s()[0] {
		t.Errorf("sum differs across layouts: %v vs %v",
			direct.Storage().Float64s()[0], strided.Storage().Float64s()[0])
	}
}

func TestSumAxisRemovesAxis(t *testing.T) {
	a := f64Arr(t, array.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})

	sum0, err := SumAxis(a, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !sum0.Shape().Equal(array.Shape{3}) {
		t.Fatalf("sum_axis(0) shape = %v", sum0.Shape())
	}
	got := sum0.Storage().Float64s()
	if got[0] != 5 || got[1] != 7 || got[2] != 9 {
		t.Errorf("sum_axis(0) = %v, want [5 7 9]", got[:3])
	}

	sum1, err := SumAxis(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !sum1.Shape().Equal(array.Shape{2}) {
		t.Fatalf("sum_axis(1) shape = %v", sum1.Shape())
	}
	got = sum1.Storage().Float64s()
	if got[0] != 6 || got[1] != 15 {
		t.Errorf("sum_axis(1) = %v, want [6 15]", got[:2])
	}
}

func TestSumAxisNegative(t *testing.T) {
	a := i32Arr(t, array.Shape{2, 3}, []int32{1, 2, 3, 4, 5, 6})
	out, err := SumAxis(a, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Equal(array.Shape{2}) {
		t.Fatalf("sum_axis(-1) shape = %v", out.Shape())
	}
	got := out.Storage().Int32s()
	if got[0] != 6 || got[1] != 15 {
		t.Errorf("sum_axis(-1) = %v, want [6 15]", got[:2])
	}
}

func TestSumAxisOutOfRange(t *testing.T) {
	a := i32Arr(t, array.Shape{2, 3}, make([]int32, 6))
	for _, axis := range []int32{2, -2, 5} {
		if _, err := SumAxis(a, axis); status.CodeOf(err) != status.InvalidArg {
			t.Errorf("axis %d = %v, want INVALID_ARG", axis, err)
		}
	}
}

func TestSumAxisOverEmptyAxis(t *testing.T) {
	a := f64Arr(t, array.Shape{0, 3}, nil)
	out, err := SumAxis(a, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Equal(array.Shape{3}) {
		t.Fatalf("shape = %v, want [3]", out.Shape())
	}
	for i, v := range out.Storage().Float64s()[:3] {
		if v != 0 {
			t.Errorf("reduction over empty axis at %d = %v, want 0", i, v)
		}
	}
}

func TestSumAxisCommutesForInts(t *testing.T) {
	vals := make([]int32, 24)
	for i := range vals {
		vals[i] = int32(i*7 - 40)
	}
	a := i32Arr(t, array.Shape{2, 3, 4}, vals)

	// Reducing axis 0 then axis 0 of the remainder equals reducing axis 1
	// then axis 0: integers are exact.
	x1, err := SumAxis(a, 0)
	if err != nil {
		t.Fatal(err)
	}
	x2, err := SumAxis(x1, 0)
	if err != nil {
		t.Fatal(err)
	}

	y1, err := SumAxis(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	y2, err := SumAxis(y1, 0)
	if err != nil {
		t.Fatal(err)
	}

	xs, ys := x2.Storage().Int32s(), y2.Storage().Int32s()
	for i := 0; i < 4; i++ {
		if xs[i] != ys[i] {
			t.Errorf("axis-order dependent integer sum at %d: %d vs %d", i, xs[i], ys[i])
		}
	}
}

func TestPairwiseSumF64MatchesSerialForSmall(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	if got := PairwiseSumF64(vals); got != 15 {
		t.Errorf("pairwise sum = %v, want 15", got)
	}
	if got := PairwiseSumF64(nil); got != 0 {
		t.Errorf("pairwise sum of empty = %v, want 0", got)
	}
}
