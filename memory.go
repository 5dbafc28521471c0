package rmwcdr

// Memory is a 32-bit addressed little-endian linear memory holding C-style
// message objects. Accesses outside the memory fail with an out_of_bounds
// error; nothing is ever partially written.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error

	// Scalar accessors move raw little-endian bit patterns.
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer reports the current byte size of a linear memory, which may
// grow between calls.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out blocks of a linear memory for string and sequence
// storage. Address 0 is never returned for a successful allocation and the
// contents of a fresh block are unspecified. Free takes the size and
// alignment the block was allocated with.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
