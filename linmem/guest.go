package linmem

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/errors"
)

// GuestMemory adapts a wazero guest memory to rmwcdr.Memory.
type GuestMemory struct {
	mem api.Memory
}

// Wrap returns nil for a nil memory.
func Wrap(mem api.Memory) *GuestMemory {
	if mem == nil {
		return nil
	}
	return &GuestMemory{mem: mem}
}

// Size returns the current guest memory size in bytes.
func (m *GuestMemory) Size() uint32 {
	return m.mem.Size()
}

func (m *GuestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, offset, length)
	}
	return data, nil
}

func (m *GuestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, uint32(len(data)))
	}
	return nil
}

func (m *GuestMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, offset, 1)
	}
	return v, nil
}

func (m *GuestMemory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, offset, 2)
	}
	return v, nil
}

func (m *GuestMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, offset, 4)
	}
	return v, nil
}

func (m *GuestMemory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, offset, 8)
	}
	return v, nil
}

func (m *GuestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, 1)
	}
	return nil
}

func (m *GuestMemory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, 2)
	}
	return nil
}

func (m *GuestMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, 4)
	}
	return nil
}

func (m *GuestMemory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, 8)
	}
	return nil
}

// GuestAllocator allocates through the guest's cabi_realloc export:
// realloc(0, 0, align, size) allocates, realloc(ptr, size, align, 0) frees.
type GuestAllocator struct {
	ctx   context.Context
	fn    api.Function
	stack [4]uint64
	mu    sync.Mutex
}

// WrapAllocator returns nil for a nil function.
func WrapAllocator(ctx context.Context, fn api.Function) *GuestAllocator {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &GuestAllocator{ctx: ctx, fn: fn}
}

func (a *GuestAllocator) Alloc(size, align uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stack[0] = 0
	a.stack[1] = 0
	a.stack[2] = uint64(align)
	a.stack[3] = uint64(size)
	if err := a.fn.CallWithStack(a.ctx, a.stack[:]); err != nil {
		return 0, errors.AllocationFailed(errors.PhaseMemory, nil, size, align, err)
	}
	ptr := uint32(a.stack[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseMemory, nil, size, align, nil)
	}
	return ptr, nil
}

func (a *GuestAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stack[0] = uint64(ptr)
	a.stack[1] = uint64(size)
	a.stack[2] = uint64(align)
	a.stack[3] = 0
	if err := a.fn.CallWithStack(a.ctx, a.stack[:]); err != nil {
		Logger().Warn("cabi_realloc free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// Heap allocates host-managed blocks inside a guest memory, for guests that
// export memory but no allocator. Blocks start at base; the memory grows by
// whole pages on demand.
type Heap struct {
	mem   api.Memory
	arena arena
}

func NewHeap(mem api.Memory, base uint32) *Heap {
	return &Heap{mem: mem, arena: newArena(base)}
}

// Live returns the number of outstanding allocations.
func (h *Heap) Live() int {
	return h.arena.live
}

func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	return h.arena.alloc(size, align, h.ensure)
}

func (h *Heap) Free(ptr, size, align uint32) {
	h.arena.release(ptr, size, align)
}

func (h *Heap) ensure(end uint64) error {
	current := uint64(h.mem.Size())
	if end <= current {
		return nil
	}
	pages := (end - current + PageSize - 1) / PageSize
	if _, ok := h.mem.Grow(uint32(pages)); !ok {
		return errors.New(errors.PhaseMemory, errors.KindOverflow).
			Detail("guest memory cannot grow by %d pages", pages).
			Build()
	}
	Logger().Debug("guest memory grown", zap.Uint64("pages", pages))
	return nil
}

var (
	_ rmwcdr.Memory      = (*GuestMemory)(nil)
	_ rmwcdr.MemorySizer = (*GuestMemory)(nil)
	_ rmwcdr.Allocator   = (*GuestAllocator)(nil)
	_ rmwcdr.Allocator   = (*Heap)(nil)
)
