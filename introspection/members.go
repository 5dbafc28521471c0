package introspection

import (
	"strconv"
	"strings"
	"unsafe"
)

// TypeID is the type tag of a member. Values follow the ROS 2 introspection
// numbering so schemas produced by existing generators can be used as is.
type TypeID uint8

const (
	TypeFloat32    TypeID = 1
	TypeFloat64    TypeID = 2
	TypeLongDouble TypeID = 3
	TypeChar       TypeID = 4
	TypeWChar      TypeID = 5
	TypeBool       TypeID = 6
	TypeByte       TypeID = 7
	TypeUint8      TypeID = 8
	TypeInt8       TypeID = 9
	TypeUint16     TypeID = 10
	TypeInt16      TypeID = 11
	TypeUint32     TypeID = 12
	TypeInt32      TypeID = 13
	TypeUint64     TypeID = 14
	TypeInt64      TypeID = 15
	TypeString     TypeID = 16
	TypeWString    TypeID = 17
	TypeMessage    TypeID = 18
)

var typeNames = [...]string{
	TypeFloat32:    "float32",
	TypeFloat64:    "float64",
	TypeLongDouble: "long double",
	TypeChar:       "char",
	TypeWChar:      "wchar",
	TypeBool:       "bool",
	TypeByte:       "byte",
	TypeUint8:      "uint8",
	TypeInt8:       "int8",
	TypeUint16:     "uint16",
	TypeInt16:      "int16",
	TypeUint32:     "uint32",
	TypeInt32:      "int32",
	TypeUint64:     "uint64",
	TypeInt64:      "int64",
	TypeString:     "string",
	TypeWString:    "wstring",
	TypeMessage:    "message",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Size returns the natural size in bytes of a fixed-width type, or 0 for
// strings, messages and unknown tags.
func (t TypeID) Size() uint32 {
	switch t {
	case TypeBool, TypeByte, TypeChar, TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4
	case TypeUint64, TypeInt64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

// ShapeKind is the array-ness of a member, orthogonal to its TypeID.
type ShapeKind uint8

const (
	ShapeScalar ShapeKind = iota
	ShapeFixedArray
	ShapeBoundedSequence
	ShapeUnboundedSequence
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeScalar:
		return "scalar"
	case ShapeFixedArray:
		return "array"
	case ShapeBoundedSequence:
		return "bounded sequence"
	case ShapeUnboundedSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Shape is a ShapeKind plus its element count (fixed arrays) or maximum
// (bounded sequences).
type Shape struct {
	Kind ShapeKind
	N    uint32
}

// IsSequence reports whether the shape carries a length prefix on the wire.
func (s Shape) IsSequence() bool {
	return s.Kind == ShapeBoundedSequence || s.Kind == ShapeUnboundedSequence
}

// ContainerFuncs are the sequence hooks of representations whose containers
// are opaque to the codec. All pointers address the field itself.
type ContainerFuncs struct {
	// Size returns the current element count.
	Size func(field unsafe.Pointer) int
	// Data returns the address of element 0, or nil when empty.
	Data func(field unsafe.Pointer) unsafe.Pointer
	// Resize replaces the container with n zero-valued elements and returns
	// the new element 0 address.
	Resize func(field unsafe.Pointer, n int) unsafe.Pointer
}

// Member describes one field of a message.
type Member struct {
	Name             string
	TypeID           TypeID
	StringUpperBound uint32
	// Members is the child schema of a TypeMessage member.
	Members      *MessageMembers
	IsArray      bool
	ArraySize    uint32
	IsUpperBound bool
	// Offset is the byte offset of the field inside the in-memory object.
	Offset    uint32
	Container *ContainerFuncs
}

// Shape derives the array-ness tag from IsArray, ArraySize and IsUpperBound.
func (m *Member) Shape() Shape {
	switch {
	case !m.IsArray:
		return Shape{Kind: ShapeScalar}
	case m.IsUpperBound:
		return Shape{Kind: ShapeBoundedSequence, N: m.ArraySize}
	case m.ArraySize == 0:
		return Shape{Kind: ShapeUnboundedSequence}
	default:
		return Shape{Kind: ShapeFixedArray, N: m.ArraySize}
	}
}

// TypeString renders the member type in .msg notation, e.g. "string<=10[]".
func (m *Member) TypeString() string {
	var b strings.Builder
	if m.TypeID == TypeMessage && m.Members != nil {
		b.WriteString(m.Members.Package())
		b.WriteByte('/')
		b.WriteString(m.Members.Name)
	} else {
		b.WriteString(m.TypeID.String())
	}
	if m.TypeID == TypeString && m.StringUpperBound > 0 {
		b.WriteString("<=")
		b.WriteString(strconv.FormatUint(uint64(m.StringUpperBound), 10))
	}
	switch s := m.Shape(); s.Kind {
	case ShapeFixedArray:
		b.WriteString("[" + strconv.FormatUint(uint64(s.N), 10) + "]")
	case ShapeBoundedSequence:
		b.WriteString("[<=" + strconv.FormatUint(uint64(s.N), 10) + "]")
	case ShapeUnboundedSequence:
		b.WriteString("[]")
	}
	return b.String()
}

// MessageMembers describes a message type.
type MessageMembers struct {
	// Namespace is "<package>__msg" or "<package>__srv".
	Namespace string
	Name      string
	Members   []Member
	// SizeOf is the in-memory size of one object.
	SizeOf uint32
}

// Package returns the package part of the namespace.
func (mm *MessageMembers) Package() string {
	pkg, _, _ := strings.Cut(mm.Namespace, "__")
	return pkg
}

// Interface returns "msg" or "srv" (or whatever follows the package).
func (mm *MessageMembers) Interface() string {
	_, iface, found := strings.Cut(mm.Namespace, "__")
	if !found || iface == "" {
		return "msg"
	}
	return iface
}

// FullName returns "<package>/<msg|srv>/<Name>".
func (mm *MessageMembers) FullName() string {
	return mm.Package() + "/" + mm.Interface() + "/" + mm.Name
}

// ServiceMembers pairs the request and response schemas of a service.
type ServiceMembers struct {
	Namespace string
	Name      string
	Request   *MessageMembers
	Response  *MessageMembers
}

// TypeName returns the DDS registered type name of a message,
// "<package>::<msg|srv>::dds_::<Name>_".
func TypeName(mm *MessageMembers) string {
	ns := strings.ReplaceAll(mm.Namespace, "__", "::")
	if ns == "" {
		return "dds_::" + mm.Name + "_"
	}
	return ns + "::dds_::" + mm.Name + "_"
}
