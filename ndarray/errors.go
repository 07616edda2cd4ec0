package ndarray

// LastErrorCode returns the calling goroutine's last recorded error code,
// or OK if it never failed.
func LastErrorCode() Status {
	code, _ := station.Last()
	return Status(code)
}

// LastErrorMessage copies the calling goroutine's last error message into
// buf, truncating if it does not fit. outLen always receives the full
// untruncated length.
func LastErrorMessage(buf []byte, outLen *uint64) Status {
	full := station.CopyMessage(buf)
	if outLen != nil {
		*outLen = full
	}
	return OK
}
