package cstyle

import (
	"slices"
	"testing"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/internal/layout"
	"github.com/wippyai/rmw-cdr/introspection"
	"github.com/wippyai/rmw-cdr/linmem"
)

func newBuffer() *linmem.Buffer {
	return linmem.NewBuffer(linmem.Config{Poison: true})
}

func TestSequence_InitFini(t *testing.T) {
	buf := newBuffer()
	const hdr = 64

	// Dirty a block so the allocator hands back poisoned memory.
	p, _ := buf.Alloc(12, 4)
	buf.Free(p, 12, 4)

	if err := InitSequence(buf, buf, hdr, 3, 4, 4); err != nil {
		t.Fatal(err)
	}
	s, err := ReadSequence(buf, hdr)
	if err != nil {
		t.Fatal(err)
	}
	if s.Size != 3 || s.Capacity != 3 || s.Data == 0 {
		t.Fatalf("header = %+v", s)
	}
	raw, _ := buf.Read(s.Data, 12)
	for i, b := range raw {
		if b != 0 {
			t.Fatalf("byte %d = %#x, storage not zeroed", i, b)
		}
	}

	if err := FiniSequence(buf, buf, hdr, 4, 4); err != nil {
		t.Fatal(err)
	}
	if s, _ := ReadSequence(buf, hdr); s != (Sequence{}) {
		t.Errorf("after fini = %+v", s)
	}
	if buf.Live() != 0 {
		t.Errorf("live = %d", buf.Live())
	}
}

func TestSequence_Empty(t *testing.T) {
	buf := newBuffer()
	if err := InitSequence(buf, buf, 64, 0, 8, 8); err != nil {
		t.Fatal(err)
	}
	if buf.Live() != 0 {
		t.Error("empty sequence allocated")
	}
	if err := FiniSequence(buf, buf, 64, 8, 8); err != nil {
		t.Fatal(err)
	}
}

func TestSequence_Inconsistent(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence
	}{
		{"size over capacity", Sequence{Data: 128, Size: 3, Capacity: 2}},
		{"data without capacity", Sequence{Data: 128}},
		{"capacity without data", Sequence{Capacity: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newBuffer()
			if err := writeHeader(buf, 64, tt.seq); err != nil {
				t.Fatal(err)
			}
			err := FiniSequence(buf, buf, 64, 1, 1)
			if got := errors.KindOf(err); got != errors.KindInconsistent {
				t.Fatalf("kind = %q, want inconsistent", got)
			}
		})
	}
}

func TestString(t *testing.T) {
	buf := newBuffer()
	const addr = 64

	if err := InitString(buf, buf, addr); err != nil {
		t.Fatal(err)
	}
	s, _ := readHeader(buf, addr)
	if s.Size != 0 || s.Capacity != 1 {
		t.Fatalf("init header = %+v", s)
	}
	if term, _ := buf.ReadU8(s.Data); term != 0 {
		t.Error("empty string not NUL-terminated")
	}

	for _, v := range []string{"hello", "hi", "", "a longer value than before"} {
		if err := AssignString(buf, buf, addr, v); err != nil {
			t.Fatal(err)
		}
		got, err := ReadString(buf, addr)
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("ReadString = %q, want %q", got, v)
		}
		s, _ := readHeader(buf, addr)
		if term, _ := buf.ReadU8(s.Data + s.Size); term != 0 {
			t.Errorf("%q not NUL-terminated", v)
		}
	}
	if buf.Live() != 1 {
		t.Errorf("live = %d, want 1 (old storage freed on growth)", buf.Live())
	}

	if err := FiniString(buf, buf, addr); err != nil {
		t.Fatal(err)
	}
	if buf.Live() != 0 {
		t.Errorf("live after fini = %d", buf.Live())
	}
	if got, _ := ReadString(buf, addr); got != "" {
		t.Errorf("zero header reads %q", got)
	}
}

type failingAllocator struct{}

func (failingAllocator) Alloc(size, align uint32) (uint32, error) {
	return 0, errors.New(errors.PhaseMemory, errors.KindOverflow).Detail("out of memory").Build()
}

func (failingAllocator) Free(ptr, size, align uint32) {}

func TestString_AssignFailure(t *testing.T) {
	buf := newBuffer()
	_ = writeHeader(buf, 64, String{})

	err := AssignString(buf, failingAllocator{}, 64, "x")
	if got := errors.KindOf(err); got != errors.KindAssignment {
		t.Fatalf("kind = %q, want assignment", got)
	}
	if !errors.Is(err, errors.ErrAllocation) {
		t.Error("cause should be an allocation error")
	}
}

func TestArray(t *testing.T) {
	buf := newBuffer()
	const addr = 64
	_ = writeHeader(buf, addr, Sequence{})

	floats := ArrayAt[float64](buf, addr)
	if err := floats.Assign(buf, []float64{1.5, -2, 3.25}); err != nil {
		t.Fatal(err)
	}
	if n, _ := floats.Len(); n != 3 {
		t.Fatalf("Len = %d", n)
	}
	if err := floats.Set(1, 42); err != nil {
		t.Fatal(err)
	}
	got, _ := floats.Slice()
	if !slices.Equal(got, []float64{1.5, 42, 3.25}) {
		t.Errorf("Slice = %v", got)
	}
	if _, err := floats.Get(3); errors.KindOf(err) != errors.KindOutOfBounds {
		t.Errorf("Get(3) = %v", err)
	}

	bools := ArrayAt[bool](buf, 128)
	_ = writeHeader(buf, 128, Sequence{})
	if err := bools.Assign(buf, []bool{true, false}); err != nil {
		t.Fatal(err)
	}
	s, _ := readHeader(buf, 128)
	_ = buf.WriteU8(s.Data+1, 7)
	if v, _ := bools.Get(1); !v {
		t.Error("non-zero byte should read as true")
	}

	if err := floats.Assign(buf, nil); err != nil {
		t.Fatal(err)
	}
	if err := bools.Assign(buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Live() != 0 {
		t.Errorf("live = %d", buf.Live())
	}
}

func TestStrings(t *testing.T) {
	buf := newBuffer()
	_ = writeHeader(buf, 64, Sequence{})
	view := StringsAt(buf, 64)

	if err := view.Assign(buf, []string{"a", "", "ccc"}); err != nil {
		t.Fatal(err)
	}
	got, err := view.Slice()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"a", "", "ccc"}) {
		t.Errorf("Slice = %q", got)
	}
	if err := view.Assign(buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Live() != 0 {
		t.Errorf("live = %d", buf.Live())
	}
}

func nestedPlan(t *testing.T) *codec.CompiledMessage {
	t.Helper()
	inner := &introspection.MessageMembers{
		Namespace: "test_msgs__msg",
		Name:      "Inner",
		Members: []introspection.Member{
			{Name: "label", TypeID: introspection.TypeString},
			{Name: "n", TypeID: introspection.TypeInt16},
		},
	}
	outer := &introspection.MessageMembers{
		Namespace: "test_msgs__msg",
		Name:      "Outer",
		Members: []introspection.Member{
			{Name: "id", TypeID: introspection.TypeUint32},
			{Name: "name", TypeID: introspection.TypeString},
			{Name: "tags", TypeID: introspection.TypeString, IsArray: true},
			{Name: "values", TypeID: introspection.TypeFloat64, IsArray: true, ArraySize: 4, IsUpperBound: true},
			{Name: "pair", TypeID: introspection.TypeMessage, Members: inner, IsArray: true, ArraySize: 2},
			{Name: "children", TypeID: introspection.TypeMessage, Members: inner, IsArray: true},
		},
	}
	if err := layout.Place(outer, codec.CStyleModel); err != nil {
		t.Fatal(err)
	}
	plan, err := codec.NewCompiler(codec.CStyleModel, codec.DefaultLimits()).Compile(outer)
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func TestInitFiniMessage(t *testing.T) {
	buf := newBuffer()
	acc := NewAccessor(buf, buf)
	plan := nestedPlan(t)

	addr, err := acc.New(plan)
	if err != nil {
		t.Fatal(err)
	}
	// root, name and the two labels of the fixed array
	if buf.Live() != 4 {
		t.Fatalf("live after init = %d, want 4", buf.Live())
	}

	field := func(name string) *codec.CompiledField {
		for i := range plan.Fields {
			if plan.Fields[i].Name == name {
				return &plan.Fields[i]
			}
		}
		t.Fatalf("no field %s", name)
		return nil
	}

	children := field("children")
	data, err := acc.ResizeSequence(addr+children.Offset, children, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		el := acc.Index(data, i, children.ElemSize)
		if err := acc.InitMessage(el, children.Message); err != nil {
			t.Fatal(err)
		}
		if err := acc.StoreString(el, "child"); err != nil {
			t.Fatal(err)
		}
	}
	if err := StringsAt(buf, addr+field("tags").Offset).Assign(buf, []string{"x", "y"}); err != nil {
		t.Fatal(err)
	}

	// Shrinking finalizes the strings held by the dropped elements.
	if _, err := acc.ResizeSequence(addr+children.Offset, children, 1); err != nil {
		t.Fatal(err)
	}

	if err := acc.Destroy(addr, plan); err != nil {
		t.Fatal(err)
	}
	if buf.Live() != 0 {
		t.Errorf("leaked %d blocks", buf.Live())
	}
}
