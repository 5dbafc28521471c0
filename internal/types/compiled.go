package types

import "github.com/wippyai/rmw-cdr/introspection"

// Unlimited marks a string or sequence with no length ceiling.
const Unlimited = ^uint32(0)

// CompiledMessage is the codec plan for one message type under one memory
// model and one set of limits.
type CompiledMessage struct {
	Schema   *introspection.MessageMembers
	TypeName string
	Fields   []CompiledField
	// Size is the in-memory object size (schema SizeOf).
	Size uint32
	// Align is the in-memory alignment of the object.
	Align uint32
	// Stride is Size rounded up to Align: the distance between consecutive
	// elements of an array of this message.
	Stride uint32
	// MaxSize is the worst-case serialized size from stream offset 0.
	// Bounded is false when no finite ceiling exists.
	MaxSize uint64
	Bounded bool
}

// CompiledField is one member with its kind, shape and effective limits
// resolved.
type CompiledField struct {
	Member  *introspection.Member
	Message *CompiledMessage
	Name    string
	Shape   introspection.Shape
	Offset  uint32
	// ElemSize is the in-memory distance between array elements.
	ElemSize  uint32
	ElemAlign uint32
	// StringMax is the serializer ceiling for string length (excluding the
	// terminator); StringBound is the declared bound, 0 when unbounded.
	StringMax   uint32
	StringBound uint32
	// SequenceMax is the serializer ceiling for sequence length;
	// SequenceBound is the declared bound, 0 when unbounded.
	SequenceMax   uint32
	SequenceBound uint32
	Kind          Kind
}

// MinWireSize is the smallest number of bytes one element of this field can
// occupy on the wire, ignoring padding.
func (f *CompiledField) MinWireSize() uint32 {
	switch f.Kind {
	case KindString:
		return 4
	case KindMessage:
		return 1
	default:
		return f.Kind.Size()
	}
}

// IsPlain reports whether the message holds only fixed-size data: no strings
// or sequences at any depth. Plain messages need no construction and have
// an exact serialized size.
func (m *CompiledMessage) IsPlain() bool {
	return m.isPlain(map[*CompiledMessage]bool{})
}

func (m *CompiledMessage) isPlain(seen map[*CompiledMessage]bool) bool {
	if seen[m] {
		return true
	}
	seen[m] = true
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Shape.IsSequence() || f.Kind == KindString {
			return false
		}
		if f.Kind == KindMessage && !f.Message.isPlain(seen) {
			return false
		}
	}
	return true
}
