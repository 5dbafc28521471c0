package linmem

import (
	"sync"

	rmwcdr "github.com/wippyai/rmw-cdr"
)

type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// Tracker wraps an allocator and records every block it hands out until the
// block is freed. FreeAll releases whatever is left, e.g. after a failed
// deserialization whose partial object cannot be finalized.
type Tracker struct {
	alloc       rmwcdr.Allocator
	allocations []Allocation
}

var trackerPool = sync.Pool{
	New: func() any {
		return &Tracker{allocations: make([]Allocation, 0, 8)}
	},
}

const maxPooledAllocationCapacity = 128

func Track(alloc rmwcdr.Allocator) *Tracker {
	t := trackerPool.Get().(*Tracker)
	t.alloc = alloc
	return t
}

func (t *Tracker) Alloc(size, align uint32) (uint32, error) {
	ptr, err := t.alloc.Alloc(size, align)
	if err != nil {
		return 0, err
	}
	t.allocations = append(t.allocations, Allocation{Ptr: ptr, Size: size, Align: align})
	return ptr, nil
}

func (t *Tracker) Free(ptr, size, align uint32) {
	for i := len(t.allocations) - 1; i >= 0; i-- {
		if t.allocations[i].Ptr == ptr {
			t.allocations = append(t.allocations[:i], t.allocations[i+1:]...)
			break
		}
	}
	t.alloc.Free(ptr, size, align)
}

// Outstanding returns the blocks not yet freed.
func (t *Tracker) Outstanding() []Allocation {
	return t.allocations
}

func (t *Tracker) Count() int {
	return len(t.allocations)
}

// FreeAll frees every outstanding block.
func (t *Tracker) FreeAll() {
	for _, a := range t.allocations {
		t.alloc.Free(a.Ptr, a.Size, a.Align)
	}
	t.allocations = t.allocations[:0]
}

// Release returns the tracker to the pool. The tracker is invalid afterwards.
func (t *Tracker) Release() {
	if cap(t.allocations) > maxPooledAllocationCapacity {
		return
	}
	t.allocations = t.allocations[:0]
	t.alloc = nil
	trackerPool.Put(t)
}
