package codec

import (
	"github.com/wippyai/rmw-cdr/internal/layout"
	"github.com/wippyai/rmw-cdr/internal/types"
)

type Kind = types.Kind

const (
	KindBool    = types.KindBool
	KindByte    = types.KindByte
	KindChar    = types.KindChar
	KindUint8   = types.KindUint8
	KindInt8    = types.KindInt8
	KindUint16  = types.KindUint16
	KindInt16   = types.KindInt16
	KindUint32  = types.KindUint32
	KindInt32   = types.KindInt32
	KindUint64  = types.KindUint64
	KindInt64   = types.KindInt64
	KindFloat32 = types.KindFloat32
	KindFloat64 = types.KindFloat64
	KindString  = types.KindString
	KindMessage = types.KindMessage
)

type CompiledMessage = types.CompiledMessage
type CompiledField = types.CompiledField

type Model = layout.Model
type Limits = layout.Limits

// Unlimited disables a string or sequence capacity.
const Unlimited = layout.Unlimited

var (
	CStyleModel = layout.CStyle
	NativeModel = layout.Native
)

func DefaultLimits() Limits {
	return layout.DefaultLimits()
}
