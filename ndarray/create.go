package ndarray

import (
	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/status"
)

// ArrayAlloc creates a zero-initialized C-contiguous array of the given
// dtype and shape and writes its handle.
func ArrayAlloc(dtype Dtype, shape []int64, flags Flags, outHandle *Handle) Status {
	return guard("nd_array_alloc", func() error {
		if err := checkOut("nd_array_alloc", outHandle); err != nil {
			return err
		}
		if err := array.CheckDtype(array.Dtype(dtype)); err != nil {
			return err
		}
		s := array.Shape(shape)
		if err := s.Validate(); err != nil {
			return err
		}
		a, err := array.NewDense(array.Dtype(dtype), s, flags&FlagReadonly != 0)
		if err != nil {
			return err
		}
		register(a, outHandle)
		return nil
	})
}

// ArrayFromHostCopy creates an array by copying caller memory. strides, if
// non-nil, are byte strides describing the source buffer layout; the engine
// gathers through them into a fresh C-contiguous array. A nil strides means
// the source is dense C-order.
func ArrayFromHostCopy(data []byte, dtype Dtype, shape []int64, strides []int64, flags Flags, outHandle *Handle) Status {
	return guard("nd_array_from_host_copy", func() error {
		if err := checkOut("nd_array_from_host_copy", outHandle); err != nil {
			return err
		}
		if err := array.CheckDtype(array.Dtype(dtype)); err != nil {
			return err
		}
		s := array.Shape(shape)
		if err := s.Validate(); err != nil {
			return err
		}
		dt := array.Dtype(dtype)
		width := dt.Size()
		n := s.NumElements()

		if data == nil && n > 0 {
			return status.Errorf(status.InvalidArg, "source data is nil for %d elements", n)
		}
		if strides != nil && len(strides) != len(shape) {
			return status.Errorf(status.InvalidArg,
				"strides have %d entries for rank %d", len(strides), len(shape))
		}

		a, err := array.NewDense(dt, s, flags&FlagReadonly != 0)
		if err != nil {
			return err
		}
		if n == 0 {
			register(a, outHandle)
			return nil
		}

		dst := a.Storage().Bytes()
		if strides == nil {
			if int64(len(data)) < n*width {
				a.Release()
				return status.Errorf(status.InvalidArg,
					"source buffer holds %d bytes, need %d", len(data), n*width)
			}
			copy(dst, data[:n*width])
			register(a, outHandle)
			return nil
		}

		if err := checkSourceBounds(s, strides, width, int64(len(data))); err != nil {
			a.Release()
			return err
		}
		i := int64(0)
		iterStrided(s, strides, func(srcOff int64) {
			copy(dst[i*width:(i+1)*width], data[srcOff:srcOff+width])
			i++
		})
		register(a, outHandle)
		return nil
	})
}

// checkSourceBounds verifies that a strided walk over shape stays inside a
// source buffer of srcLen bytes.
func checkSourceBounds(shape array.Shape, strides []int64, width, srcLen int64) error {
	lo := int64(0)
	hi := width
	for i, dim := range shape {
		span := strides[i] * (dim - 1)
		if span > 0 {
			hi += span
		} else {
			lo += span
		}
	}
	if lo < 0 || hi > srcLen {
		return status.Errorf(status.InvalidStrides,
			"source strides reach bytes [%d, %d) outside buffer of %d bytes", lo, hi, srcLen)
	}
	return nil
}

// iterStrided walks shape in row-major order over caller strides rooted at
// byte offset 0.
func iterStrided(shape array.Shape, strides []int64, fn func(off int64)) {
	ndim := len(shape)
	if ndim == 0 {
		fn(0)
		return
	}

	var idx [array.MaxRank]int64
	off := int64(0)
	inner := ndim - 1
	for {
		innerOff := off
		for k := int64(0); k < shape[inner]; k++ {
			fn(innerOff)
			innerOff += strides[inner]
		}

		axis := inner - 1
		for axis >= 0 {
			idx[axis]++
			off += strides[axis]
			if idx[axis] < shape[axis] {
				break
			}
			off -= strides[axis] * shape[axis]
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// ArrayRetain increments the handle's reference count.
func ArrayRetain(h Handle) Status {
	return guard("nd_array_retain", func() error {
		return table.Retain(uint64(h))
	})
}

// ArrayRelease decrements the handle's reference count; the last release
// retires the slot and drops the array's storage reference.
func ArrayRelease(h Handle) Status {
	return guard("nd_array_release", func() error {
		return table.Release(uint64(h))
	})
}

// ArrayClone creates an independent dense copy of the array.
func ArrayClone(h Handle, outHandle *Handle) Status {
	return guard("nd_array_clone", func() error {
		if err := checkOut("nd_array_clone", outHandle); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		out, err := a.CompactCopy()
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}

// ArrayMakeContiguous returns a handle to a C-contiguous array with the
// same elements in row-major order. An already contiguous array yields a
// new handle onto the same view with shared storage.
func ArrayMakeContiguous(h Handle, outHandle *Handle) Status {
	return guard("nd_array_make_contiguous", func() error {
		if err := checkOut("nd_array_make_contiguous", outHandle); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}
		out, err := a.MakeContiguous()
		if err != nil {
			return err
		}
		register(out, outHandle)
		return nil
	})
}
