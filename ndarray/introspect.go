package ndarray

import "github.com/born-ml/ndcore/internal/status"

// ArrayNdim writes the array's rank.
func ArrayNdim(h Handle, outNdim *uint8) Status {
	return guard("nd_array_ndim", func() error {
		if err := checkOut("nd_array_ndim", outNdim); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		*outNdim = uint8(a.Rank())
		return nil
	})
}

// ArrayShapeCopy copies the shape into out, which must hold at least ndim
// entries.
func ArrayShapeCopy(h Handle, out []int64) Status {
	return guard("nd_array_shape_copy", func() error {
		a, err := getArray(h)
		if err != nil {
			return err
		}
		if len(out) < a.Rank() {
			return status.Errorf(status.InvalidArg,
				"shape buffer holds %d entries, need %d", len(out), a.Rank())
		}
		copy(out, a.Shape())
		return nil
	})
}

// ArrayStridesCopy copies the byte strides into out, which must hold at
// least ndim entries.
func ArrayStridesCopy(h Handle, out []int64) Status {
	return guard("nd_array_strides_copy", func() error {
		a, err := getArray(h)
		if err != nil {
			return err
		}
		if len(out) < a.Rank() {
			return status.Errorf(status.InvalidArg,
				"strides buffer holds %d entries, need %d", len(out), a.Rank())
		}
		copy(out, a.Strides())
		return nil
	})
}

// ArrayDtype writes the array's dtype code.
func ArrayDtype(h Handle, outDtype *Dtype) Status {
	return guard("nd_array_dtype", func() error {
		if err := checkOut("nd_array_dtype", outDtype); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		*outDtype = Dtype(a.Dtype())
		return nil
	})
}

// ArrayElemCount writes the element count.
func ArrayElemCount(h Handle, outLen *uint64) Status {
	return guard("nd_array_elem_count", func() error {
		if err := checkOut("nd_array_elem_count", outLen); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		*outLen = uint64(a.NumElements())
		return nil
	})
}

// ArrayByteLen writes the logical byte length (elem_count * dtype width).
func ArrayByteLen(h Handle, outLen *uint64) Status {
	return guard("nd_array_byte_len", func() error {
		if err := checkOut("nd_array_byte_len", outLen); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		*outLen = uint64(a.ByteLen())
		return nil
	})
}

// ArrayIsContiguous writes 1 if the array is C-contiguous, 0 otherwise.
func ArrayIsContiguous(h Handle, outBool *uint32) Status {
	return guard("nd_array_is_contiguous", func() error {
		if err := checkOut("nd_array_is_contiguous", outBool); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		if a.IsContiguous() {
			*outBool = BoolTrue
		} else {
			*outBool = BoolFalse
		}
		return nil
	})
}
