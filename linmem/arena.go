package linmem

import (
	"math/bits"

	"github.com/wippyai/rmw-cdr/errors"
)

// PageSize is the wasm page size.
const PageSize = 65536

// reserved bytes at the bottom of every arena keep address 0 unused.
const reserved = 8

type blockKey struct {
	size  uint32
	align uint32
}

// arena is a bump allocator with exact-fit reuse of freed blocks.
type arena struct {
	free  map[blockKey][]uint32
	next  uint64
	live  int
	bytes uint64
}

func newArena(base uint32) arena {
	if base < reserved {
		base = reserved
	}
	return arena{
		free: make(map[blockKey][]uint32),
		next: uint64(base),
	}
}

// alloc returns a block of size bytes aligned to align. ensure is called
// with the end offset before a new block is carved so the owner can grow.
func (a *arena) alloc(size, align uint32, ensure func(end uint64) error) (uint32, error) {
	if align == 0 {
		align = 1
	}
	if bits.OnesCount32(align) != 1 {
		return 0, errors.New(errors.PhaseMemory, errors.KindInvalidData).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if size == 0 {
		size = 1
	}

	key := blockKey{size: size, align: align}
	if list := a.free[key]; len(list) > 0 {
		ptr := list[len(list)-1]
		a.free[key] = list[:len(list)-1]
		a.live++
		a.bytes += uint64(size)
		return ptr, nil
	}

	start := (a.next + uint64(align) - 1) &^ (uint64(align) - 1)
	end := start + uint64(size)
	if end > 1<<32 {
		return 0, errors.AllocationFailed(errors.PhaseMemory, nil, size, align, nil)
	}
	if err := ensure(end); err != nil {
		return 0, errors.AllocationFailed(errors.PhaseMemory, nil, size, align, err)
	}
	a.next = end
	a.live++
	a.bytes += uint64(size)
	return uint32(start), nil
}

func (a *arena) release(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	if align == 0 {
		align = 1
	}
	if size == 0 {
		size = 1
	}
	key := blockKey{size: size, align: align}
	a.free[key] = append(a.free[key], ptr)
	a.live--
	a.bytes -= uint64(size)
}
