// Package status defines the engine-wide status codes and the coded error
// type all internal layers report failures with. The numeric values are part
// of the stable ABI and must not change.
package status

import (
	"errors"
	"fmt"
)

// Code is a signed 32-bit status code. OK is zero; everything else is an
// error condition.
type Code int32

// Status codes.
const (
	OK               Code = 0
	InvalidArg       Code = 1
	InvalidDtype     Code = 2
	InvalidShape     Code = 3
	InvalidStrides   Code = 4
	InvalidAlignment Code = 5
	StaleHandle      Code = 6
	OOM              Code = 7
	NotContiguous    Code = 8
	NotImplemented   Code = 9
	Internal         Code = 255
)

// String returns the ND_* label for the code.
func (c Code) String() string {
	switch c {
	case OK:
		return "ND_OK"
	case InvalidArg:
		return "ND_E_INVALID_ARG"
	case InvalidDtype:
		return "ND_E_INVALID_DTYPE"
	case InvalidShape:
		return "ND_E_INVALID_SHAPE"
	case InvalidStrides:
		return "ND_E_INVALID_STRIDES"
	case InvalidAlignment:
		return "ND_E_INVALID_ALIGNMENT"
	case StaleHandle:
		return "ND_E_STALE_HANDLE"
	case OOM:
		return "ND_E_OOM"
	case NotContiguous:
		return "ND_E_NOT_CONTIGUOUS"
	case NotImplemented:
		return "ND_E_NOT_IMPLEMENTED"
	case Internal:
		return "ND_E_INTERNAL"
	default:
		return fmt.Sprintf("ND_STATUS_%d", int32(c))
	}
}

// Error is an error carrying a status code.
type Error struct {
	Code Code
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Msg
}

// Errorf builds a coded error with a formatted message.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the status code from err, unwrapping any wrapping applied
// on the way up. A nil error maps to OK; an error without a code maps to
// Internal (it escaped a layer that should have classified it).
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Internal
}
