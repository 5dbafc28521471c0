package linmem

import (
	"encoding/binary"

	"go.uber.org/zap"

	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/errors"
)

// Config sizes an in-process Buffer. Zero fields take the defaults.
type Config struct {
	// InitialPages is the starting size in 64 KiB pages (default 1).
	InitialPages uint32

	// MaxPages caps growth (default 256, i.e. 16 MiB). Allocations beyond
	// it fail.
	MaxPages uint32

	// Poison fills freed blocks with 0xA5 so code that relies on fresh
	// memory being zero fails loudly.
	Poison bool
}

const (
	defaultInitialPages = 1
	defaultMaxPages     = 256
	poisonByte          = 0xA5
)

func DefaultConfig() Config {
	return Config{
		InitialPages: defaultInitialPages,
		MaxPages:     defaultMaxPages,
	}
}

// Buffer is an in-process little-endian linear memory with its own
// allocator.
type Buffer struct {
	data   []byte
	arena  arena
	max    uint64
	poison bool
}

func NewBuffer(cfg Config) *Buffer {
	if cfg.InitialPages == 0 {
		cfg.InitialPages = defaultInitialPages
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.MaxPages < cfg.InitialPages {
		cfg.MaxPages = cfg.InitialPages
	}
	return &Buffer{
		data:   make([]byte, uint64(cfg.InitialPages)*PageSize),
		arena:  newArena(reserved),
		max:    min(uint64(cfg.MaxPages)*PageSize, 1<<32),
		poison: cfg.Poison,
	}
}

// Size returns the current memory size in bytes.
func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

// Bytes exposes the backing slice. It is replaced when the buffer grows.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Live returns the number of outstanding allocations.
func (b *Buffer) Live() int {
	return b.arena.live
}

// LiveBytes returns the number of bytes held by outstanding allocations.
func (b *Buffer) LiveBytes() uint64 {
	return b.arena.bytes
}

func (b *Buffer) slice(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b.data)) {
		return nil, errors.OutOfBounds(errors.PhaseMemory, offset, length)
	}
	return b.data[offset:end], nil
}

func (b *Buffer) Read(offset uint32, length uint32) ([]byte, error) {
	return b.slice(offset, length)
}

func (b *Buffer) Write(offset uint32, data []byte) error {
	dst, err := b.slice(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (b *Buffer) ReadU8(offset uint32) (uint8, error) {
	s, err := b.slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (b *Buffer) ReadU16(offset uint32) (uint16, error) {
	s, err := b.slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s), nil
}

func (b *Buffer) ReadU32(offset uint32) (uint32, error) {
	s, err := b.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s), nil
}

func (b *Buffer) ReadU64(offset uint32) (uint64, error) {
	s, err := b.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s), nil
}

func (b *Buffer) WriteU8(offset uint32, value uint8) error {
	s, err := b.slice(offset, 1)
	if err != nil {
		return err
	}
	s[0] = value
	return nil
}

func (b *Buffer) WriteU16(offset uint32, value uint16) error {
	s, err := b.slice(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(s, value)
	return nil
}

func (b *Buffer) WriteU32(offset uint32, value uint32) error {
	s, err := b.slice(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s, value)
	return nil
}

func (b *Buffer) WriteU64(offset uint32, value uint64) error {
	s, err := b.slice(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(s, value)
	return nil
}

// Alloc implements rmwcdr.Allocator, growing the buffer page by page up to
// MaxPages.
func (b *Buffer) Alloc(size, align uint32) (uint32, error) {
	return b.arena.alloc(size, align, b.ensure)
}

// Free implements rmwcdr.Allocator.
func (b *Buffer) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	if b.poison {
		if s, err := b.slice(ptr, max(size, 1)); err == nil {
			for i := range s {
				s[i] = poisonByte
			}
		}
	}
	b.arena.release(ptr, size, align)
}

func (b *Buffer) ensure(end uint64) error {
	if end <= uint64(len(b.data)) {
		return nil
	}
	if end > b.max {
		return errors.New(errors.PhaseMemory, errors.KindOverflow).
			Detail("buffer limit %d bytes reached", b.max).
			Build()
	}
	size := uint64(len(b.data))
	for size < end {
		size *= 2
	}
	size = min((size+PageSize-1)/PageSize*PageSize, b.max)

	grown := make([]byte, size)
	copy(grown, b.data)
	Logger().Debug("buffer grown",
		zap.Int("from", len(b.data)),
		zap.Uint64("to", size))
	b.data = grown
	return nil
}

var (
	_ rmwcdr.Memory      = (*Buffer)(nil)
	_ rmwcdr.MemorySizer = (*Buffer)(nil)
	_ rmwcdr.Allocator   = (*Buffer)(nil)
)
