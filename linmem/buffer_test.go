package linmem

import (
	"testing"

	"github.com/wippyai/rmw-cdr/errors"
)

func TestBuffer_ReadWrite(t *testing.T) {
	b := NewBuffer(DefaultConfig())

	if err := b.WriteU16(10, 0xBEEF); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteU32(12, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteU64(16, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	raw, _ := b.Read(12, 4)
	if raw[0] != 0xEF || raw[3] != 0xDE {
		t.Errorf("not little-endian: % x", raw)
	}
	if v, _ := b.ReadU16(10); v != 0xBEEF {
		t.Errorf("ReadU16 = %#x", v)
	}
	if v, _ := b.ReadU64(16); v != 0x0102030405060708 {
		t.Errorf("ReadU64 = %#x", v)
	}
}

func TestBuffer_OutOfBounds(t *testing.T) {
	b := NewBuffer(Config{InitialPages: 1, MaxPages: 1})

	tests := []struct {
		name string
		op   func() error
	}{
		{"read at end", func() error { _, err := b.Read(PageSize, 1); return err }},
		{"read straddling", func() error { _, err := b.ReadU32(PageSize - 2); return err }},
		{"write at end", func() error { return b.WriteU8(PageSize, 1) }},
		{"write wraps", func() error { return b.Write(^uint32(0), []byte{1, 2}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.KindOf(tt.op()); got != errors.KindOutOfBounds {
				t.Errorf("kind = %q, want out_of_bounds", got)
			}
		})
	}
}

func TestBuffer_Alloc(t *testing.T) {
	b := NewBuffer(DefaultConfig())

	p1, err := b.Alloc(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == 0 {
		t.Fatal("Alloc returned address 0")
	}
	p2, err := b.Alloc(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p2%8 != 0 {
		t.Errorf("p2 = %d, not 8-aligned", p2)
	}
	if p2 < p1+3 {
		t.Errorf("blocks overlap: %d, %d", p1, p2)
	}
	if b.Live() != 2 || b.LiveBytes() != 11 {
		t.Errorf("live = %d/%d", b.Live(), b.LiveBytes())
	}

	b.Free(p2, 8, 8)
	p3, _ := b.Alloc(8, 8)
	if p3 != p2 {
		t.Errorf("freed block not reused: %d != %d", p3, p2)
	}

	if _, err := b.Alloc(4, 3); errors.KindOf(err) != errors.KindInvalidData {
		t.Errorf("non power of two alignment: %v", err)
	}
}

func TestBuffer_Grow(t *testing.T) {
	b := NewBuffer(Config{InitialPages: 1, MaxPages: 4})

	p, err := b.Alloc(PageSize*2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if b.Size() < p+PageSize*2 {
		t.Errorf("size %d does not cover block at %d", b.Size(), p)
	}
	if err := b.WriteU32(p+PageSize*2-4, 7); err != nil {
		t.Fatal(err)
	}

	_, err = b.Alloc(PageSize*4, 1)
	if got := errors.KindOf(err); got != errors.KindAllocation {
		t.Fatalf("kind = %q, want allocation", got)
	}
}

func TestBuffer_Poison(t *testing.T) {
	b := NewBuffer(Config{Poison: true})

	p, _ := b.Alloc(4, 4)
	_ = b.WriteU32(p, 0)
	b.Free(p, 4, 4)

	p2, _ := b.Alloc(4, 4)
	if v, _ := b.ReadU32(p2); v != 0xA5A5A5A5 {
		t.Errorf("reused block = %#x, want poison", v)
	}
}

func TestTracker(t *testing.T) {
	b := NewBuffer(DefaultConfig())
	tr := Track(b)
	defer tr.Release()

	p1, _ := tr.Alloc(16, 4)
	p2, _ := tr.Alloc(4, 4)
	_, _ = tr.Alloc(1, 1)
	tr.Free(p1, 16, 4)

	if tr.Count() != 2 {
		t.Fatalf("Count = %d, want 2", tr.Count())
	}
	if tr.Outstanding()[0].Ptr != p2 {
		t.Errorf("Outstanding[0] = %+v", tr.Outstanding()[0])
	}

	tr.FreeAll()
	if tr.Count() != 0 || b.Live() != 0 {
		t.Errorf("after FreeAll: tracker %d, buffer %d", tr.Count(), b.Live())
	}
}
