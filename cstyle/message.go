package cstyle

import (
	"strconv"

	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// InitMessage default-constructs the message at addr: every byte is zeroed,
// then strings (including those in fixed arrays and nested messages) are
// initialized empty. Sequences start empty.
func InitMessage(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32, m *codec.CompiledMessage) error {
	if m.Size > 0 {
		if err := mem.Write(addr, make([]byte, m.Size)); err != nil {
			return err
		}
	}
	return initFields(mem, alloc, addr, m)
}

func initFields(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32, m *codec.CompiledMessage) error {
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Shape.IsSequence() {
			continue
		}
		if f.Kind != codec.KindString && f.Kind != codec.KindMessage {
			continue
		}

		n := 1
		if f.Shape.Kind == introspection.ShapeFixedArray {
			n = int(f.Shape.N)
		}
		base := addr + f.Offset
		for j := 0; j < n; j++ {
			p := base + uint32(j)*f.ElemSize
			var err error
			if f.Kind == codec.KindString {
				err = InitString(mem, alloc, p)
			} else {
				err = initFields(mem, alloc, p, f.Message)
			}
			if err != nil {
				if f.Shape.Kind == introspection.ShapeFixedArray {
					return errors.WithPath(err, indexed(f.Name, j))
				}
				return errors.WithPath(err, f.Name)
			}
		}
	}
	return nil
}

// FiniMessage releases every string and sequence reachable from the message
// at addr. The message memory itself is not freed.
func FiniMessage(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32, m *codec.CompiledMessage) error {
	for i := range m.Fields {
		f := &m.Fields[i]
		if err := finiField(mem, alloc, addr+f.Offset, f); err != nil {
			return err
		}
	}
	return nil
}

func finiField(mem rmwcdr.Memory, alloc rmwcdr.Allocator, p uint32, f *codec.CompiledField) error {
	switch f.Shape.Kind {
	case introspection.ShapeScalar:
		return errors.WithPath(finiElement(mem, alloc, p, f), f.Name)

	case introspection.ShapeFixedArray:
		if !needsFini(f) {
			return nil
		}
		for j := 0; j < int(f.Shape.N); j++ {
			if err := finiElement(mem, alloc, p+uint32(j)*f.ElemSize, f); err != nil {
				return errors.WithPath(err, indexed(f.Name, j))
			}
		}
		return nil

	default:
		if needsFini(f) {
			s, err := ReadSequence(mem, p)
			if err != nil {
				return errors.WithPath(err, f.Name)
			}
			for j := uint32(0); j < s.Size; j++ {
				if err := finiElement(mem, alloc, s.Data+j*f.ElemSize, f); err != nil {
					return errors.WithPath(err, indexed(f.Name, int(j)))
				}
			}
		}
		return errors.WithPath(FiniSequence(mem, alloc, p, f.ElemSize, f.ElemAlign), f.Name)
	}
}

func finiElement(mem rmwcdr.Memory, alloc rmwcdr.Allocator, p uint32, f *codec.CompiledField) error {
	switch f.Kind {
	case codec.KindString:
		return FiniString(mem, alloc, p)
	case codec.KindMessage:
		return FiniMessage(mem, alloc, p, f.Message)
	default:
		return nil
	}
}

// needsFini reports whether elements of f own storage.
func needsFini(f *codec.CompiledField) bool {
	switch f.Kind {
	case codec.KindString:
		return true
	case codec.KindMessage:
		return !f.Message.IsPlain()
	default:
		return false
	}
}
