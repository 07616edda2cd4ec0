package ndarray

import "github.com/born-ml/ndcore/internal/array"

// ArrayReshape creates a new view with the requested shape. The reshape
// must be expressible over the existing strides; otherwise it fails with
// NOT_CONTIGUOUS and the caller decides whether to pay for
// ArrayMakeContiguous.
func ArrayReshape(h Handle, shape []int64, outHandle *Handle) Status {
	return guard("nd_array_reshape", func() error {
		if err := checkOut("nd_array_reshape", outHandle); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		out, err := a.Reshape(array.Shape(shape))
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// ArrayTranspose creates a view with permuted axes. A nil permutation
// reverses the axis order.
func ArrayTranspose(h Handle, perm []int64, outHandle *Handle) Status {
	return guard("nd_array_transpose", func() error {
		if err := checkOut("nd_array_transpose", outHandle); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		out, err := a.Transpose(perm)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// ArraySlice creates a sub-view from per-axis start/stop/step triples.
// Nil arguments select the defaults on every axis. Storage is shared.
func ArraySlice(h Handle, starts, stops, steps []int64, outHandle *Handle) Status {
	return guard("nd_array_slice", func() error {
		if err := checkOut("nd_array_slice", outHandle); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		out, err := a.Slice(starts, stops, steps)
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}
