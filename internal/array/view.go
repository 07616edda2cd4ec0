package array

import "github.com/born-ml/ndcore/internal/status"

// Reshape returns a new view of the same storage with the requested shape.
// It succeeds only when the view can be expressed with the existing stride
// pattern (the array is C-contiguous, or adjacent axes are mergeable); a
// reshape that would require a copy fails with NOT_CONTIGUOUS so the caller
// can make the copy cost explicit via MakeContiguous.
func (a *Array) Reshape(newShape Shape) (*Array, error) {
	// A -1 "infer this extent" placeholder is not supported.
	for _, dim := range newShape {
		if dim == -1 {
			return nil, status.Errorf(status.InvalidShape,
				"reshape target %v uses a -1 placeholder, which is not supported", []int64(newShape))
		}
	}
	if err := newShape.Validate(); err != nil {
		return nil, err
	}
	if newShape.NumElements() != a.NumElements() {
		return nil, status.Errorf(status.InvalidShape,
			"cannot reshape %v (%d elements) to %v (%d elements)",
			[]int64(a.shape), a.NumElements(), []int64(newShape), newShape.NumElements())
	}

	newStrides, ok := reshapeStrides(a.shape, a.strides, newShape, a.dtype.Size())
	if !ok {
		return nil, status.Errorf(status.NotContiguous,
			"reshape of %v to %v requires a copy; call make_contiguous first",
			[]int64(a.shape), []int64(newShape))
	}
	return NewView(a.storage, newShape, newStrides, a.offset, a.readonly)
}

// reshapeStrides attempts to express newShape over the existing strides
// without copying. Axes of extent 1 carry no layout constraint and are
// ignored; remaining axes are grouped into runs of equal element count and
// each run must be internally contiguous (stride[i] == stride[i+1]*shape[i+1])
// to be fused and re-split.
func reshapeStrides(oldShape Shape, oldStrides []int64, newShape Shape, width int64) ([]int64, bool) {
	if newShape.NumElements() <= 1 {
		return ContiguousStrides(newShape, width), true
	}

	// Squeeze extent-1 axes out of the old view.
	var oShape Shape
	var oStrides []int64
	for i, dim := range oldShape {
		if dim != 1 {
			oShape = append(oShape, dim)
			oStrides = append(oStrides, oldStrides[i])
		}
	}
	if len(oShape) == 0 {
		return ContiguousStrides(newShape, width), true
	}

	newStrides := make([]int64, len(newShape))
	oi, ni := 0, 0
	for ni < len(newShape) && oi < len(oShape) {
		// Grow a group on both sides until element counts match.
		oj, nj := oi+1, ni+1
		op, np := oShape[oi], newShape[ni]
		for op != np {
			if op < np {
				op *= oShape[oj]
				oj++
			} else {
				np *= newShape[nj]
				nj++
			}
		}

		// The old axes inside the group must be mergeable.
		for k := oi; k < oj-1; k++ {
			if oStrides[k] != oStrides[k+1]*oShape[k+1] {
				return nil, false
			}
		}

		// Split the group's span across the new axes, innermost first.
		newStrides[nj-1] = oStrides[oj-1]
		for k := nj - 1; k > ni; k-- {
			newStrides[k-1] = newStrides[k] * newShape[k]
		}

		oi, ni = oj, nj
	}

	// Trailing extent-1 axes in the new shape take the innermost stride.
	for ; ni < len(newShape); ni++ {
		newStrides[ni] = width
	}
	return newStrides, true
}

// Transpose permutes the view's axes. A nil permutation reverses them.
func (a *Array) Transpose(perm []int64) (*Array, error) {
	ndim := len(a.shape)
	if perm == nil {
		perm = make([]int64, ndim)
		for i := range perm {
			perm[i] = int64(ndim - 1 - i)
		}
	}
	if len(perm) != ndim {
		return nil, status.Errorf(status.InvalidArg,
			"transpose permutation has %d entries for rank %d", len(perm), ndim)
	}

	seen := make([]bool, ndim)
	newShape := make(Shape, ndim)
	newStrides := make([]int64, ndim)
	for i, p := range perm {
		if p < 0 || p >= int64(ndim) || seen[p] {
			return nil, status.Errorf(status.InvalidArg, "invalid permutation %v for rank %d", perm, ndim)
		}
		seen[p] = true
		newShape[i] = a.shape[p]
		newStrides[i] = a.strides[p]
	}

	return NewView(a.storage, newShape, newStrides, a.offset, a.readonly)
}

// Slice builds a sub-view from per-axis (start, stop, step) triples. A nil
// slice selects the full range on every axis. Negative starts count from the
// end; negative stops count from the end when stepping forward and are taken
// raw when stepping backward, so the default stop of -1 runs through the
// first element. Storage is shared; only shape, strides and offset change.
func (a *Array) Slice(starts, stops, steps []int64) (*Array, error) {
	ndim := len(a.shape)
	for name, arg := range map[string][]int64{"starts": starts, "stops": stops, "steps": steps} {
		if arg != nil && len(arg) != ndim {
			return nil, status.Errorf(status.InvalidArg,
				"slice %s has %d entries for rank %d", name, len(arg), ndim)
		}
	}

	newShape := make(Shape, ndim)
	newStrides := make([]int64, ndim)
	offset := a.offset

	for i := 0; i < ndim; i++ {
		extent := a.shape[i]

		step := int64(1)
		if steps != nil {
			step = steps[i]
		}
		if step == 0 {
			return nil, status.Errorf(status.InvalidArg, "slice step is 0 at axis %d", i)
		}

		var start, stop int64
		if step > 0 {
			start, stop = int64(0), extent
		} else {
			start, stop = extent-1, int64(-1)
		}
		if starts != nil {
			start = starts[i]
			if start < 0 {
				start += extent
			}
		}
		if stops != nil {
			stop = stops[i]
			if stop < 0 && step > 0 {
				stop += extent
			}
		}

		// Clamp into the addressable range for the step direction.
		if step > 0 {
			start = clamp(start, 0, extent)
			stop = clamp(stop, 0, extent)
		} else {
			start = clamp(start, 0, extent-1)
			stop = clamp(stop, -1, extent-1)
		}

		newShape[i] = sliceExtent(start, stop, step)
		newStrides[i] = a.strides[i] * step
		if newShape[i] > 0 {
			offset += a.strides[i] * start
		}
	}

	return NewView(a.storage, newShape, newStrides, offset, a.readonly)
}

// sliceExtent computes max(0, ceil((stop-start)/step)) with sign-aware
// division.
func sliceExtent(start, stop, step int64) int64 {
	var n int64
	if step > 0 {
		n = (stop - start + step - 1) / step
	} else {
		n = (start - stop - step - 1) / -step
	}
	if n < 0 {
		return 0
	}
	return n
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MakeContiguous returns a C-contiguous array with the same elements in
// row-major order. An already contiguous view is returned as-is with an
// extra storage reference, so the caller uniformly owns what it gets back.
func (a *Array) MakeContiguous() (*Array, error) {
	if a.IsContiguous() {
		a.Retain()
		return a, nil
	}
	return a.CompactCopy()
}

// CompactCopy allocates fresh dense storage and copies the view's elements
// in row-major order.
func (a *Array) CompactCopy() (*Array, error) {
	out, err := NewDense(a.dtype, a.shape, false)
	if err != nil {
		return nil, err
	}

	width := a.dtype.Size()
	src := a.storage.Bytes()
	dst := out.storage.Bytes()
	i := int64(0)
	a.IterBytes(func(byteOff int64) {
		copy(dst[i*width:(i+1)*width], src[byteOff:byteOff+width])
		i++
	})
	return out, nil
}
