package cstyle

import (
	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/internal/layout"
)

// Container header layout shared by sequences and strings on a 32-bit
// target: {data *T; size size_t; capacity size_t}.
const (
	HeaderSize  = 12
	HeaderAlign = 4

	offData     = 0
	offSize     = 4
	offCapacity = 8
)

// Sequence is the header of a rosidl C sequence. Size counts elements in
// use; Capacity counts elements allocated at Data.
type Sequence struct {
	Data     uint32
	Size     uint32
	Capacity uint32
}

func readHeader(mem rmwcdr.Memory, addr uint32) (Sequence, error) {
	raw, err := mem.Read(addr, HeaderSize)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{
		Data:     le32(raw[offData:]),
		Size:     le32(raw[offSize:]),
		Capacity: le32(raw[offCapacity:]),
	}, nil
}

func writeHeader(mem rmwcdr.Memory, addr uint32, s Sequence) error {
	var raw [HeaderSize]byte
	put32(raw[offData:], s.Data)
	put32(raw[offSize:], s.Size)
	put32(raw[offCapacity:], s.Capacity)
	return mem.Write(addr, raw[:])
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func put32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ReadSequence reads and checks the sequence header at addr.
func ReadSequence(mem rmwcdr.Memory, addr uint32) (Sequence, error) {
	s, err := readHeader(mem, addr)
	if err != nil {
		return s, err
	}
	return s, s.check()
}

func (s Sequence) check() error {
	if s.Size > s.Capacity {
		return errors.Inconsistent(errors.PhaseMemory, nil, "sequence size exceeds capacity")
	}
	if (s.Data == 0) != (s.Capacity == 0) {
		return errors.Inconsistent(errors.PhaseMemory, nil, "sequence data and capacity disagree")
	}
	return nil
}

// InitSequence allocates zeroed storage for n elements and writes the
// header at addr. n == 0 writes an empty header without allocating.
func InitSequence(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr, n, elemSize, elemAlign uint32) error {
	if n == 0 {
		return writeHeader(mem, addr, Sequence{})
	}
	bytes, ok := layout.SafeMulU32(n, elemSize)
	if !ok {
		return errors.Overflow(errors.PhaseMemory, nil, "sequence storage exceeds 4 GiB")
	}
	data, err := alloc.Alloc(bytes, elemAlign)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseMemory, nil, bytes, elemAlign, err)
	}
	if bytes > 0 {
		if err := mem.Write(data, make([]byte, bytes)); err != nil {
			alloc.Free(data, bytes, elemAlign)
			return err
		}
	}
	return writeHeader(mem, addr, Sequence{Data: data, Size: n, Capacity: n})
}

// FiniSequence frees the storage of the sequence at addr and leaves an empty
// header. Elements are not finalized; callers holding strings or nested
// containers finalize them first.
func FiniSequence(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr, elemSize, elemAlign uint32) error {
	s, err := ReadSequence(mem, addr)
	if err != nil {
		return err
	}
	if s.Data != 0 {
		alloc.Free(s.Data, s.Capacity*elemSize, elemAlign)
	}
	return writeHeader(mem, addr, Sequence{})
}
