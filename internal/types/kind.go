package types

import "github.com/wippyai/rmw-cdr/introspection"

// Kind is the closed set of field kinds the codec understands. Array-ness is
// carried separately by introspection.Shape.
type Kind uint8

const (
	KindBool Kind = iota
	KindByte
	KindChar
	KindUint8
	KindInt8
	KindUint16
	KindInt16
	KindUint32
	KindInt32
	KindUint64
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindMessage
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindByte:    "byte",
	KindChar:    "char",
	KindUint8:   "uint8",
	KindInt8:    "int8",
	KindUint16:  "uint16",
	KindInt16:   "int16",
	KindUint32:  "uint32",
	KindInt32:   "int32",
	KindUint64:  "uint64",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindMessage: "message",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindFloat64
}

// Size is the wire and in-memory size of a primitive kind. Strings and
// messages return 0.
func (k Kind) Size() uint32 {
	switch k {
	case KindBool, KindByte, KindChar, KindUint8, KindInt8:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32, KindFloat32:
		return 4
	case KindUint64, KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// FromTypeID maps an introspection type tag to a Kind. Tags the codec does
// not handle (long double, wchar, wstring and anything unassigned) report
// false.
func FromTypeID(id introspection.TypeID) (Kind, bool) {
	switch id {
	case introspection.TypeBool:
		return KindBool, true
	case introspection.TypeByte:
		return KindByte, true
	case introspection.TypeChar:
		return KindChar, true
	case introspection.TypeUint8:
		return KindUint8, true
	case introspection.TypeInt8:
		return KindInt8, true
	case introspection.TypeUint16:
		return KindUint16, true
	case introspection.TypeInt16:
		return KindInt16, true
	case introspection.TypeUint32:
		return KindUint32, true
	case introspection.TypeInt32:
		return KindInt32, true
	case introspection.TypeUint64:
		return KindUint64, true
	case introspection.TypeInt64:
		return KindInt64, true
	case introspection.TypeFloat32:
		return KindFloat32, true
	case introspection.TypeFloat64:
		return KindFloat64, true
	case introspection.TypeString:
		return KindString, true
	case introspection.TypeMessage:
		return KindMessage, true
	default:
		return 0, false
	}
}
