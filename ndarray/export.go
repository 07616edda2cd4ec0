package ndarray

import (
	"sync"

	"github.com/born-ml/ndcore/internal/array"
)

// ExportedBytes is the Go rendition of the export quad
// [data_ptr, byte_len, deallocator_fn, deallocator_ctx]: a byte span plus
// the deallocator that must be invoked exactly once when the caller is done.
type ExportedBytes struct {
	Data    []byte
	Release func()
}

// ArrayExportBytes exposes the array's elements as a dense byte span. A
// contiguous, engine-owned, writable array hands out its own storage with a
// refcount-dropping deallocator; anything else is copied into a fresh
// contiguous buffer first. The span is valid until Release is called.
func ArrayExportBytes(h Handle, out *ExportedBytes) Status {
	return guard("nd_array_export_bytes", func() error {
		if err := checkOut("nd_array_export_bytes", out); err != nil {
			return err
		}
		a, err := getArray(h)
		if err != nil {
			return err
		}

		shareable := a.IsContiguous() &&
			a.Storage().Owner() == array.OwnerEngine &&
			!a.Readonly()

		var exported *array.Array
		if shareable {
			a.Retain()
			exported = a
		} else {
			exported, err = a.CompactCopy()
			if err != nil {
				return err
			}
		}

		bytes := exported.Storage().Bytes()
		start := exported.Offset()
		var once sync.Once
		*out = ExportedBytes{
			Data: bytes[start : start+exported.ByteLen()],
			Release: func() {
				once.Do(exported.Release)
			},
		}
		return nil
	})
}
