package msgspec

import (
	"strings"

	"github.com/wippyai/rmw-cdr/introspection"
)

// Field is one field line of a message definition.
type Field struct {
	Name string
	// Package is set for nested message types; empty for primitives and
	// for same-package references before resolution.
	Package string
	Type    string
	// Default is the literal text after the field name, if any. It is
	// recorded but not interpreted.
	Default      string
	Line         int
	StringBound  uint32
	ArraySize    uint32
	IsArray      bool
	IsUpperBound bool
}

// IsPrimitive reports whether the field's element type is a builtin.
func (f Field) IsPrimitive() bool {
	_, ok := primitives[f.Type]
	return ok && f.Package == ""
}

// FullType returns "pkg/Type" for nested messages and the builtin name
// otherwise.
func (f Field) FullType() string {
	if f.Package == "" {
		return f.Type
	}
	return f.Package + "/" + f.Type
}

// String renders the field as it would appear in a .msg file.
func (f Field) String() string {
	var b strings.Builder
	b.WriteString(f.FullType())
	if f.StringBound > 0 {
		b.WriteString("<=")
		b.WriteString(itoa(f.StringBound))
	}
	if f.IsArray {
		b.WriteByte('[')
		if f.IsUpperBound {
			b.WriteString("<=")
		}
		if f.ArraySize > 0 {
			b.WriteString(itoa(f.ArraySize))
		}
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(f.Name)
	return b.String()
}

// Constant is a NAME=VALUE line. Values are kept as written.
type Constant struct {
	Name  string
	Type  string
	Value string
	Line  int
}

// Spec is a parsed message definition.
type Spec struct {
	Package   string
	Name      string
	File      string
	Fields    []Field
	Constants []Constant
}

// FullName returns "pkg/Name".
func (s *Spec) FullName() string {
	return s.Package + "/" + s.Name
}

// ServiceSpec is a parsed service definition. Request and Response are
// named "<Name>_Request" and "<Name>_Response".
type ServiceSpec struct {
	Package  string
	Name     string
	Request  *Spec
	Response *Spec
}

func (s *ServiceSpec) FullName() string {
	return s.Package + "/" + s.Name
}

var primitives = map[string]introspection.TypeID{
	"bool":    introspection.TypeBool,
	"byte":    introspection.TypeByte,
	"char":    introspection.TypeChar,
	"float32": introspection.TypeFloat32,
	"float64": introspection.TypeFloat64,
	"int8":    introspection.TypeInt8,
	"uint8":   introspection.TypeUint8,
	"int16":   introspection.TypeInt16,
	"uint16":  introspection.TypeUint16,
	"int32":   introspection.TypeInt32,
	"uint32":  introspection.TypeUint32,
	"int64":   introspection.TypeInt64,
	"uint64":  introspection.TypeUint64,
	"string":  introspection.TypeString,
	"wstring": introspection.TypeWString,
	"wchar":   introspection.TypeWChar,
}

// PrimitiveTypeID returns the introspection type of a builtin type name.
func PrimitiveTypeID(name string) (introspection.TypeID, bool) {
	id, ok := primitives[name]
	return id, ok
}
