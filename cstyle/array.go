package cstyle

import (
	"unsafe"

	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/errors"
)

// Primitive is any fixed-width scalar a C sequence can hold.
type Primitive interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// Array is a typed view of a primitive C sequence whose header lives at a
// fixed address.
type Array[T Primitive] struct {
	mem  rmwcdr.Memory
	addr uint32
}

func ArrayAt[T Primitive](mem rmwcdr.Memory, addr uint32) Array[T] {
	return Array[T]{mem: mem, addr: addr}
}

func elemSize[T Primitive]() uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero))
}

func (a Array[T]) Len() (int, error) {
	s, err := ReadSequence(a.mem, a.addr)
	if err != nil {
		return 0, err
	}
	return int(s.Size), nil
}

func (a Array[T]) element(i int) (uint32, error) {
	s, err := ReadSequence(a.mem, a.addr)
	if err != nil {
		return 0, err
	}
	if i < 0 || uint32(i) >= s.Size {
		return 0, errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
			Detail("index %d out of range [0, %d)", i, s.Size).
			Build()
	}
	return s.Data + uint32(i)*elemSize[T](), nil
}

func (a Array[T]) Get(i int) (T, error) {
	addr, err := a.element(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return load[T](a.mem, addr)
}

func (a Array[T]) Set(i int, v T) error {
	addr, err := a.element(i)
	if err != nil {
		return err
	}
	return store(a.mem, addr, v)
}

// Slice copies the elements out.
func (a Array[T]) Slice() ([]T, error) {
	s, err := ReadSequence(a.mem, a.addr)
	if err != nil {
		return nil, err
	}
	out := make([]T, s.Size)
	size := elemSize[T]()
	for i := range out {
		if out[i], err = load[T](a.mem, s.Data+uint32(i)*size); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Assign replaces the contents with values, reallocating storage.
func (a Array[T]) Assign(alloc rmwcdr.Allocator, values []T) error {
	size := elemSize[T]()
	if err := FiniSequence(a.mem, alloc, a.addr, size, size); err != nil {
		return err
	}
	if err := InitSequence(a.mem, alloc, a.addr, uint32(len(values)), size, size); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	s, err := readHeader(a.mem, a.addr)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := store(a.mem, s.Data+uint32(i)*size, v); err != nil {
			return err
		}
	}
	return nil
}

func load[T Primitive](mem rmwcdr.Memory, addr uint32) (T, error) {
	var v T
	switch unsafe.Sizeof(v) {
	case 1:
		b, err := mem.ReadU8(addr)
		if err != nil {
			return v, err
		}
		if _, isBool := any(v).(bool); isBool && b > 1 {
			b = 1
		}
		*(*uint8)(unsafe.Pointer(&v)) = b
	case 2:
		x, err := mem.ReadU16(addr)
		if err != nil {
			return v, err
		}
		*(*uint16)(unsafe.Pointer(&v)) = x
	case 4:
		x, err := mem.ReadU32(addr)
		if err != nil {
			return v, err
		}
		*(*uint32)(unsafe.Pointer(&v)) = x
	default:
		x, err := mem.ReadU64(addr)
		if err != nil {
			return v, err
		}
		*(*uint64)(unsafe.Pointer(&v)) = x
	}
	return v, nil
}

func store[T Primitive](mem rmwcdr.Memory, addr uint32, v T) error {
	switch unsafe.Sizeof(v) {
	case 1:
		return mem.WriteU8(addr, *(*uint8)(unsafe.Pointer(&v)))
	case 2:
		return mem.WriteU16(addr, *(*uint16)(unsafe.Pointer(&v)))
	case 4:
		return mem.WriteU32(addr, *(*uint32)(unsafe.Pointer(&v)))
	default:
		return mem.WriteU64(addr, *(*uint64)(unsafe.Pointer(&v)))
	}
}

// Strings is a view of a C sequence of strings.
type Strings struct {
	mem  rmwcdr.Memory
	addr uint32
}

func StringsAt(mem rmwcdr.Memory, addr uint32) Strings {
	return Strings{mem: mem, addr: addr}
}

func (s Strings) Slice() ([]string, error) {
	hdr, err := ReadSequence(s.mem, s.addr)
	if err != nil {
		return nil, err
	}
	out := make([]string, hdr.Size)
	for i := range out {
		if out[i], err = ReadString(s.mem, hdr.Data+uint32(i)*HeaderSize); err != nil {
			return nil, errors.WithPath(err, indexed("", i))
		}
	}
	return out, nil
}

// Assign finalizes the current strings and stores values.
func (s Strings) Assign(alloc rmwcdr.Allocator, values []string) error {
	hdr, err := ReadSequence(s.mem, s.addr)
	if err != nil {
		return err
	}
	for i := uint32(0); i < hdr.Size; i++ {
		if err := FiniString(s.mem, alloc, hdr.Data+i*HeaderSize); err != nil {
			return err
		}
	}
	if err := FiniSequence(s.mem, alloc, s.addr, HeaderSize, HeaderAlign); err != nil {
		return err
	}
	if err := InitSequence(s.mem, alloc, s.addr, uint32(len(values)), HeaderSize, HeaderAlign); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	hdr, err = readHeader(s.mem, s.addr)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := AssignString(s.mem, alloc, hdr.Data+uint32(i)*HeaderSize, v); err != nil {
			return err
		}
	}
	return nil
}
