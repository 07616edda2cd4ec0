// Package ndarray is the ABI facade of the ndcore engine: the Go rendition
// of the stable nd_* C surface. Every entry point keeps the C calling shape,
// returning a Status and writing results through out parameters, so the
// layer stays a thin shim a cgo export can sit on.
//
// Arrays are named by opaque 64-bit handles (generation counter in the high
// half, slot number in the low half; handle 0 is never valid). Entry points
// that fail record the calling goroutine's last error, readable through
// LastErrorCode and LastErrorMessage.
//
// Example:
//
//	var h ndarray.Handle
//	st := ndarray.ArrayAlloc(ndarray.DtypeF64, []int64{2, 3}, 0, &h)
//	if st != ndarray.OK {
//		code := ndarray.LastErrorCode()
//		...
//	}
//	defer ndarray.ArrayRelease(h)
package ndarray
