package native

import (
	"unsafe"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
)

// Accessor reads and writes Go structs in place. Handles are pointers into
// live Go values; strings are Go strings and sequences are slices reached
// through the member's container hooks.
type Accessor struct{}

var _ codec.Accessor[unsafe.Pointer] = Accessor{}

func (Accessor) Model() codec.Model {
	return codec.NativeModel
}

func (Accessor) Field(p unsafe.Pointer, offset uint32) unsafe.Pointer {
	return unsafe.Add(p, offset)
}

func (Accessor) Index(p unsafe.Pointer, i int, stride uint32) unsafe.Pointer {
	return unsafe.Add(p, uintptr(i)*uintptr(stride))
}

func (Accessor) Load8(p unsafe.Pointer) (uint8, error) {
	return *(*uint8)(p), nil
}

func (Accessor) Load16(p unsafe.Pointer) (uint16, error) {
	return *(*uint16)(p), nil
}

func (Accessor) Load32(p unsafe.Pointer) (uint32, error) {
	return *(*uint32)(p), nil
}

func (Accessor) Load64(p unsafe.Pointer) (uint64, error) {
	return *(*uint64)(p), nil
}

func (Accessor) Store8(p unsafe.Pointer, v uint8) error {
	*(*uint8)(p) = v
	return nil
}

func (Accessor) Store16(p unsafe.Pointer, v uint16) error {
	*(*uint16)(p) = v
	return nil
}

func (Accessor) Store32(p unsafe.Pointer, v uint32) error {
	*(*uint32)(p) = v
	return nil
}

func (Accessor) Store64(p unsafe.Pointer, v uint64) error {
	*(*uint64)(p) = v
	return nil
}

func (Accessor) LoadString(p unsafe.Pointer) (string, error) {
	return *(*string)(p), nil
}

func (Accessor) StoreString(p unsafe.Pointer, s string) error {
	*(*string)(p) = s
	return nil
}

// sliceHeader mirrors the runtime slice layout for read-only access to
// sequences without container hooks.
type sliceHeader struct {
	data unsafe.Pointer
	len  int
	cap  int
}

func (Accessor) SequenceLen(p unsafe.Pointer, f *codec.CompiledField) (int, error) {
	if c := f.Member.Container; c != nil && c.Size != nil {
		return c.Size(p), nil
	}
	return (*sliceHeader)(p).len, nil
}

func (Accessor) SequenceData(p unsafe.Pointer, f *codec.CompiledField) (unsafe.Pointer, error) {
	if c := f.Member.Container; c != nil && c.Data != nil {
		return c.Data(p), nil
	}
	return (*sliceHeader)(p).data, nil
}

// ResizeSequence needs the member's container hooks: new backing storage
// must be allocated with the element's Go type.
func (Accessor) ResizeSequence(p unsafe.Pointer, f *codec.CompiledField, n int) (unsafe.Pointer, error) {
	c := f.Member.Container
	if c == nil || c.Resize == nil {
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnsupported).
			Detail("sequence %q has no container hooks", f.Name).
			Build()
	}
	return c.Resize(p, n), nil
}

// InitMessage is a no-op: the Go zero value of every field is a valid empty
// string or sequence.
func (Accessor) InitMessage(unsafe.Pointer, *codec.CompiledMessage) error {
	return nil
}
