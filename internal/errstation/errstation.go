// Package errstation keeps the last error (code and message) per calling
// goroutine, the Go rendition of the ABI's thread-local error slot. Keeping
// it caller-local avoids contention and cross-caller leakage.
package errstation

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/born-ml/ndcore/internal/status"
)

// Station records the last error for each caller.
type Station struct {
	mu   sync.RWMutex
	last map[int64]entry
}

type entry struct {
	code status.Code
	msg  string
}

// New creates an empty station.
func New() *Station {
	return &Station{last: make(map[int64]entry)}
}

// Set records code and message for the calling goroutine.
func (s *Station) Set(code status.Code, msg string) {
	id := goid()
	s.mu.Lock()
	s.last[id] = entry{code: code, msg: msg}
	s.mu.Unlock()
}

// Last returns the calling goroutine's last recorded error, or OK and an
// empty message if it never failed.
func (s *Station) Last() (status.Code, string) {
	id := goid()
	s.mu.RLock()
	e, ok := s.last[id]
	s.mu.RUnlock()
	if !ok {
		return status.OK, ""
	}
	return e.code, e.msg
}

// CopyMessage copies the last message into buf with truncation. The returned
// length is always the full untruncated message length.
func (s *Station) CopyMessage(buf []byte) (fullLen uint64) {
	_, msg := s.Last()
	copy(buf, msg)
	return uint64(len(msg))
}

// goid returns the current goroutine's numeric ID, parsed from the runtime
// stack header ("goroutine N [...").
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
