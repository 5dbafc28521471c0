package layout

import (
	"testing"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

func offsets(mm *introspection.MessageMembers) []uint32 {
	out := make([]uint32, len(mm.Members))
	for i := range mm.Members {
		out[i] = mm.Members[i].Offset
	}
	return out
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *introspection.MessageMembers
		model   Model
		offsets []uint32
		size    uint32
	}{
		{
			name: "padding before uint64",
			build: func() *introspection.MessageMembers {
				return &introspection.MessageMembers{Members: []introspection.Member{
					prim("a", introspection.TypeUint8), prim("b", introspection.TypeUint64),
				}}
			},
			model:   CStyle,
			offsets: []uint32{0, 8},
			size:    16,
		},
		{
			name: "c containers",
			build: func() *introspection.MessageMembers {
				return &introspection.MessageMembers{Members: []introspection.Member{
					prim("a", introspection.TypeInt32),
					{Name: "b", TypeID: introspection.TypeString, StringUpperBound: 10},
					{Name: "c", TypeID: introspection.TypeUint8, IsArray: true},
					prim("d", introspection.TypeBool),
				}}
			},
			model:   CStyle,
			offsets: []uint32{0, 4, 16, 28},
			size:    32,
		},
		{
			name: "fixed array of nested",
			build: func() *introspection.MessageMembers {
				inner := &introspection.MessageMembers{Members: []introspection.Member{
					prim("a", introspection.TypeUint8), prim("b", introspection.TypeUint32),
				}}
				return &introspection.MessageMembers{Members: []introspection.Member{
					prim("x", introspection.TypeUint8),
					{Name: "in", TypeID: introspection.TypeMessage, Members: inner, IsArray: true, ArraySize: 3},
				}}
			},
			model:   CStyle,
			offsets: []uint32{0, 4},
			size:    28,
		},
		{
			name: "empty",
			build: func() *introspection.MessageMembers {
				return &introspection.MessageMembers{}
			},
			model:   CStyle,
			offsets: []uint32{},
			size:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mm := tt.build()
			if err := Place(mm, tt.model); err != nil {
				t.Fatalf("Place: %v", err)
			}
			got := offsets(mm)
			if len(got) != len(tt.offsets) {
				t.Fatalf("offsets = %v, want %v", got, tt.offsets)
			}
			for i := range got {
				if got[i] != tt.offsets[i] {
					t.Fatalf("offsets = %v, want %v", got, tt.offsets)
				}
			}
			if mm.SizeOf != tt.size {
				t.Errorf("SizeOf = %d, want %d", mm.SizeOf, tt.size)
			}
		})
	}
}

func TestPlace_Recursive(t *testing.T) {
	tree := &introspection.MessageMembers{Name: "Tree"}
	tree.Members = []introspection.Member{
		prim("v", introspection.TypeInt32),
		{Name: "children", TypeID: introspection.TypeMessage, Members: tree, IsArray: true},
	}
	if err := Place(tree, CStyle); err != nil {
		t.Fatalf("recursion through a sequence should place: %v", err)
	}
	if tree.SizeOf != 16 {
		t.Errorf("SizeOf = %d, want 16", tree.SizeOf)
	}

	self := &introspection.MessageMembers{Name: "Self"}
	self.Members = []introspection.Member{{Name: "me", TypeID: introspection.TypeMessage, Members: self}}
	if err := Place(self, CStyle); errors.KindOf(err) != errors.KindInvalidData {
		t.Errorf("by-value self inclusion should fail, got %v", err)
	}
}
