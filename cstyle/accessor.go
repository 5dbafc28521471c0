package cstyle

import (
	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
)

// Accessor reads and writes rosidl C-layout objects in a 32-bit linear
// memory. Handles are addresses. Storage for strings and sequences created
// during deserialization comes from the allocator.
type Accessor struct {
	mem   rmwcdr.Memory
	alloc rmwcdr.Allocator
}

var _ codec.Accessor[uint32] = (*Accessor)(nil)

func NewAccessor(mem rmwcdr.Memory, alloc rmwcdr.Allocator) *Accessor {
	return &Accessor{mem: mem, alloc: alloc}
}

func (a *Accessor) Memory() rmwcdr.Memory {
	return a.mem
}

func (a *Accessor) Allocator() rmwcdr.Allocator {
	return a.alloc
}

func (a *Accessor) Model() codec.Model {
	return codec.CStyleModel
}

func (a *Accessor) Field(p uint32, offset uint32) uint32 {
	return p + offset
}

func (a *Accessor) Index(p uint32, i int, stride uint32) uint32 {
	return p + uint32(i)*stride
}

func (a *Accessor) Load8(p uint32) (uint8, error) {
	return a.mem.ReadU8(p)
}

func (a *Accessor) Load16(p uint32) (uint16, error) {
	return a.mem.ReadU16(p)
}

func (a *Accessor) Load32(p uint32) (uint32, error) {
	return a.mem.ReadU32(p)
}

func (a *Accessor) Load64(p uint32) (uint64, error) {
	return a.mem.ReadU64(p)
}

func (a *Accessor) Store8(p uint32, v uint8) error {
	return a.mem.WriteU8(p, v)
}

func (a *Accessor) Store16(p uint32, v uint16) error {
	return a.mem.WriteU16(p, v)
}

func (a *Accessor) Store32(p uint32, v uint32) error {
	return a.mem.WriteU32(p, v)
}

func (a *Accessor) Store64(p uint32, v uint64) error {
	return a.mem.WriteU64(p, v)
}

func (a *Accessor) LoadString(p uint32) (string, error) {
	return ReadString(a.mem, p)
}

func (a *Accessor) StoreString(p uint32, s string) error {
	return AssignString(a.mem, a.alloc, p, s)
}

func (a *Accessor) SequenceLen(p uint32, _ *codec.CompiledField) (int, error) {
	s, err := ReadSequence(a.mem, p)
	if err != nil {
		return 0, err
	}
	return int(s.Size), nil
}

func (a *Accessor) SequenceData(p uint32, _ *codec.CompiledField) (uint32, error) {
	s, err := ReadSequence(a.mem, p)
	if err != nil {
		return 0, err
	}
	return s.Data, nil
}

// ResizeSequence finalizes the current elements, frees the storage and
// allocates n zeroed elements.
func (a *Accessor) ResizeSequence(p uint32, f *codec.CompiledField, n int) (uint32, error) {
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return 0, errors.Overflow(errors.PhaseMemory, nil, "sequence length out of range")
	}
	if needsFini(f) {
		s, err := ReadSequence(a.mem, p)
		if err != nil {
			return 0, err
		}
		for j := uint32(0); j < s.Size; j++ {
			if err := finiElement(a.mem, a.alloc, s.Data+j*f.ElemSize, f); err != nil {
				return 0, errors.WithPath(err, indexed("", int(j)))
			}
		}
	}
	if err := FiniSequence(a.mem, a.alloc, p, f.ElemSize, f.ElemAlign); err != nil {
		return 0, err
	}
	if err := InitSequence(a.mem, a.alloc, p, uint32(n), f.ElemSize, f.ElemAlign); err != nil {
		return 0, err
	}
	s, err := readHeader(a.mem, p)
	if err != nil {
		return 0, err
	}
	return s.Data, nil
}

func (a *Accessor) InitMessage(p uint32, m *codec.CompiledMessage) error {
	return InitMessage(a.mem, a.alloc, p, m)
}

// New allocates and default-constructs a message object.
func (a *Accessor) New(m *codec.CompiledMessage) (uint32, error) {
	size := max(m.Size, 1)
	addr, err := a.alloc.Alloc(size, m.Align)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseMemory, nil, size, m.Align, err)
	}
	if err := InitMessage(a.mem, a.alloc, addr, m); err != nil {
		a.alloc.Free(addr, size, m.Align)
		return 0, err
	}
	return addr, nil
}

// Destroy finalizes and frees a message created by New.
func (a *Accessor) Destroy(addr uint32, m *codec.CompiledMessage) error {
	if err := FiniMessage(a.mem, a.alloc, addr, m); err != nil {
		return err
	}
	a.alloc.Free(addr, max(m.Size, 1), m.Align)
	return nil
}
