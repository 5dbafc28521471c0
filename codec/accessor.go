package codec

// Accessor is the field access capability the codec walks objects through.
// P is an object handle: a Go pointer for native structs, an address for
// objects in a linear memory. The codec never interprets P itself.
//
// Multi-byte scalars are moved as raw bit patterns; float fields go through
// Load32/Load64 like integers of the same width.
type Accessor[P any] interface {
	// Model describes the container layout the handles point into.
	Model() Model

	// Field returns the handle of the field at offset inside p.
	Field(p P, offset uint32) P
	// Index returns the handle of element i of an array starting at p.
	Index(p P, i int, stride uint32) P

	Load8(p P) (uint8, error)
	Load16(p P) (uint16, error)
	Load32(p P) (uint32, error)
	Load64(p P) (uint64, error)
	Store8(p P, v uint8) error
	Store16(p P, v uint16) error
	Store32(p P, v uint32) error
	Store64(p P, v uint64) error

	LoadString(p P) (string, error)
	StoreString(p P, s string) error

	// SequenceLen and SequenceData read the sequence container at p.
	SequenceLen(p P, f *CompiledField) (int, error)
	SequenceData(p P, f *CompiledField) (P, error)
	// ResizeSequence replaces the contents of the container at p with n
	// zeroed elements and returns the handle of element 0.
	ResizeSequence(p P, f *CompiledField, n int) (P, error)

	// InitMessage default-constructs a message in freshly created memory.
	InitMessage(p P, m *CompiledMessage) error
}
