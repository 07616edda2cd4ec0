package array

// IterBytes walks the view in row-major order, calling fn with each
// element's byte offset from the storage base. Empty arrays produce no
// calls; a rank-0 array produces exactly one.
func (a *Array) IterBytes(fn func(byteOff int64)) {
	n := a.NumElements()
	if n == 0 {
		return
	}
	ndim := len(a.shape)
	if ndim == 0 {
		fn(a.offset)
		return
	}

	var idx [MaxRank]int64
	off := a.offset
	inner := ndim - 1
	for {
		// Innermost axis runs as a tight loop.
		innerOff := off
		for k := int64(0); k < a.shape[inner]; k++ {
			fn(innerOff)
			innerOff += a.strides[inner]
		}

		// Advance the odometer over the outer axes.
		axis := inner - 1
		for axis >= 0 {
			idx[axis]++
			off += a.strides[axis]
			if idx[axis] < a.shape[axis] {
				break
			}
			off -= a.strides[axis] * a.shape[axis]
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}
