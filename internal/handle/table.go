// Package handle implements the process-wide registry mapping opaque 64-bit
// handles to Arrays. A handle packs a generation counter in the upper 32
// bits and a slot number in the lower 32, so retired slots are detected in
// O(1) without dereferencing freed memory.
package handle

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/born-ml/ndcore/internal/array"
	"github.com/born-ml/ndcore/internal/status"
)

type slot struct {
	gen  uint32
	arr  *array.Array
	refs int64
}

// Table is a growable vector of slots plus a free list. It is shared by
// caller threads and job workers; a single mutex serializes mutations.
type Table struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// Slot numbers start at 1 so that handle 0 is never valid.
func pack(gen, slotNum uint32) uint64 {
	return uint64(gen)<<32 | uint64(slotNum)
}

func unpack(h uint64) (gen, slotNum uint32) {
	return uint32(h >> 32), uint32(h)
}

// Register stores arr in a fresh slot with a handle refcount of 1 and
// returns its handle. The table takes ownership of one of arr's storage
// references.
func (t *Table) Register(arr *array.Array) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		idx = uint32(len(t.slots) - 1)
		if len(t.slots)%1024 == 0 {
			klog.V(2).Infof("handle table grew to %d slots", len(t.slots))
		}
	}

	s := &t.slots[idx]
	s.arr = arr
	s.refs = 1
	return pack(s.gen, idx+1)
}

// lookupLocked resolves h to its slot, enforcing generation match.
func (t *Table) lookupLocked(h uint64) (*slot, error) {
	gen, slotNum := unpack(h)
	if slotNum == 0 || int(slotNum) > len(t.slots) {
		return nil, status.Errorf(status.StaleHandle, "handle %#x does not name a slot", h)
	}
	s := &t.slots[slotNum-1]
	if s.arr == nil || s.gen != gen {
		return nil, status.Errorf(status.StaleHandle, "handle %#x is stale", h)
	}
	return s, nil
}

// Get resolves h to its Array. The Array is immutable, so the pointer stays
// safe to read concurrently with retains and releases of other handles.
func (t *Table) Get(h uint64) (*array.Array, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookupLocked(h)
	if err != nil {
		return nil, err
	}
	return s.arr, nil
}

// Retain increments h's handle refcount.
func (t *Table) Retain(h uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookupLocked(h)
	if err != nil {
		return err
	}
	s.refs++
	return nil
}

// Release decrements h's handle refcount. At zero the slot retires: the
// generation bumps (wrapping), the Array drops its storage reference and
// the slot number returns to the free list.
func (t *Table) Release(h uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookupLocked(h)
	if err != nil {
		return err
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}

	s.arr.Release()
	s.arr = nil
	s.gen++
	_, slotNum := unpack(h)
	t.free = append(t.free, slotNum-1)
	return nil
}

// Len returns the number of occupied slots. Test hook.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.slots {
		if t.slots[i].arr != nil {
			n++
		}
	}
	return n
}
