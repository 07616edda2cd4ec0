package array

import "testing"

func TestShapeNumElements(t *testing.T) {
	cases := []struct {
		shape Shape
		want  int64
	}{
		{nil, 1},
		{Shape{3}, 3},
		{Shape{2, 3}, 6},
		{Shape{2, 0, 3}, 0},
	}
	for _, c := range cases {
		if got := c.shape.NumElements(); got != c.want {
			t.Errorf("NumElements(%v) = %d, want %d", c.shape, got, c.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("negative extent accepted")
	}
	if err := (Shape{1, 1, 1, 1, 1, 1, 1, 1, 1}).Validate(); err == nil {
		t.Error("rank 9 accepted")
	}
}

func TestContiguousStrides(t *testing.T) {
	got := ContiguousStrides(Shape{2, 3, 4}, 8)
	want := []int64{96, 32, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ContiguousStrides = %v, want %v", got, want)
		}
	}
	if len(ContiguousStrides(nil, 8)) != 0 {
		t.Error("rank-0 strides should be empty")
	}
}

func TestBroadcastShapes(t *testing.T) {
	cases := []struct {
		a, b Shape
		want Shape
		ok   bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{2, 3}, Shape{3}, Shape{2, 3}, true},
		{Shape{5}, nil, Shape{5}, true},
		{Shape{0}, Shape{1}, Shape{0}, true},
		{Shape{3, 4}, Shape{3, 5}, nil, false},
	}
	for _, c := range cases {
		got, err := BroadcastShapes(c.a, c.b)
		if c.ok != (err == nil) {
			t.Errorf("BroadcastShapes(%v, %v) error = %v, want ok=%v", c.a, c.b, err, c.ok)
			continue
		}
		if c.ok && !got.Equal(c.want) {
			t.Errorf("BroadcastShapes(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestBroadcastStrides(t *testing.T) {
	// [3] against [2, 3]: the missing leading axis iterates with stride 0.
	got := BroadcastStrides(Shape{3}, []int64{4}, Shape{2, 3})
	if got[0] != 0 || got[1] != 4 {
		t.Errorf("BroadcastStrides = %v, want [0 4]", got)
	}

	// Extent-1 axes also pin to stride 0.
	got = BroadcastStrides(Shape{2, 1}, []int64{8, 8}, Shape{2, 5})
	if got[0] != 8 || got[1] != 0 {
		t.Errorf("BroadcastStrides = %v, want [8 0]", got)
	}
}

func TestPromote(t *testing.T) {
	cases := []struct {
		a, b, want Dtype
	}{
		{F32, F32, F32},
		{I32, I32, I32},
		{F64, F64, F64},
		{F32, I32, F32},
		{I32, F32, F32},
		{F64, I32, F64},
		{I32, F64, F64},
		{F64, F32, F64},
	}
	for _, c := range cases {
		if got := Promote(c.a, c.b); got != c.want {
			t.Errorf("Promote(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}
