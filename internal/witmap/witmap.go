// Package witmap describes introspection schemas as WebAssembly component
// model (WIT) records, for listing message types next to component
// interfaces.
package witmap

import (
	"fmt"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Mapper converts schemas to WIT record definitions. Nested messages are
// converted once and shared; Types lists every record in dependency order.
type Mapper struct {
	defs   map[*introspection.MessageMembers]*wit.TypeDef
	owners map[string]*introspection.MessageMembers
	active map[*introspection.MessageMembers]bool
	order  []*wit.TypeDef
}

func New() *Mapper {
	return &Mapper{
		defs:   make(map[*introspection.MessageMembers]*wit.TypeDef),
		owners: make(map[string]*introspection.MessageMembers),
		active: make(map[*introspection.MessageMembers]bool),
	}
}

// Record returns the WIT record for mm. WIT has no recursive types, so a
// message that reaches itself fails.
func (m *Mapper) Record(mm *introspection.MessageMembers) (*wit.TypeDef, error) {
	if mm == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "*introspection.MessageMembers")
	}
	if td, ok := m.defs[mm]; ok {
		return td, nil
	}
	if m.active[mm] {
		return nil, errors.Unsupported(errors.PhaseCompile, "recursive message "+mm.FullName()+" in WIT")
	}
	m.active[mm] = true
	defer delete(m.active, mm)

	rec := &wit.Record{Fields: make([]wit.Field, 0, len(mm.Members))}
	for i := range mm.Members {
		member := &mm.Members[i]
		t, err := m.memberType(member)
		if err != nil {
			return nil, errors.WithPath(err, member.Name)
		}
		rec.Fields = append(rec.Fields, wit.Field{Name: Ident(member.Name), Type: t})
	}

	name := m.recordName(mm)
	td := &wit.TypeDef{Name: &name, Kind: rec}
	m.defs[mm] = td
	m.order = append(m.order, td)
	return td, nil
}

// Types returns all records produced so far, dependencies first.
func (m *Mapper) Types() []*wit.TypeDef {
	return m.order
}

func (m *Mapper) memberType(member *introspection.Member) (wit.Type, error) {
	elem, err := m.elemType(member)
	if err != nil {
		return nil, err
	}
	if member.Shape().Kind == introspection.ShapeScalar {
		return elem, nil
	}
	return &wit.TypeDef{Kind: &wit.List{Type: elem}}, nil
}

func (m *Mapper) elemType(member *introspection.Member) (wit.Type, error) {
	switch member.TypeID {
	case introspection.TypeBool:
		return wit.Bool{}, nil
	case introspection.TypeByte, introspection.TypeChar, introspection.TypeUint8:
		return wit.U8{}, nil
	case introspection.TypeInt8:
		return wit.S8{}, nil
	case introspection.TypeUint16:
		return wit.U16{}, nil
	case introspection.TypeInt16:
		return wit.S16{}, nil
	case introspection.TypeUint32:
		return wit.U32{}, nil
	case introspection.TypeInt32:
		return wit.S32{}, nil
	case introspection.TypeUint64:
		return wit.U64{}, nil
	case introspection.TypeInt64:
		return wit.S64{}, nil
	case introspection.TypeFloat32:
		return wit.F32{}, nil
	case introspection.TypeFloat64:
		return wit.F64{}, nil
	case introspection.TypeString:
		return wit.String{}, nil
	case introspection.TypeMessage:
		if member.Members == nil {
			return nil, errors.FieldMissing(errors.PhaseCompile, nil, "members")
		}
		return m.Record(member.Members)
	default:
		return nil, errors.UnknownType(errors.PhaseCompile, nil, uint8(member.TypeID))
	}
}

// recordName is the kebab-case message name, qualified with the package
// when two packages define the same name.
func (m *Mapper) recordName(mm *introspection.MessageMembers) string {
	name := Kebab(mm.Name)
	if owner, ok := m.owners[name]; !ok || owner == mm {
		m.owners[name] = mm
		return name
	}
	name = Kebab(mm.Package()) + "-" + name
	m.owners[name] = mm
	return name
}

// Kebab converts a ROS message or field name to a WIT identifier:
// PointStamped becomes point-stamped, frame_id becomes frame-id.
func Kebab(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var keywords = map[string]bool{
	"as": true, "bool": true, "borrow": true, "char": true, "constructor": true,
	"enum": true, "export": true, "f32": true, "f64": true, "flags": true,
	"from": true, "func": true, "import": true, "include": true, "interface": true,
	"list": true, "option": true, "own": true, "package": true, "record": true,
	"resource": true, "result": true, "s8": true, "s16": true, "s32": true,
	"s64": true, "static": true, "string": true, "tuple": true, "type": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "use": true,
	"variant": true, "with": true, "world": true,
}

// Ident returns the WIT identifier of a field, escaping keywords with %.
func Ident(name string) string {
	id := Kebab(name)
	if keywords[id] {
		return "%" + id
	}
	return id
}

// TypeName renders a type reference as it appears inside a record.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if l, ok := v.Kind.(*wit.List); ok {
			return "list<" + TypeName(l.Type) + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// Render prints record definitions in WIT syntax.
func Render(defs []*wit.TypeDef) string {
	var b strings.Builder
	for i, td := range defs {
		rec, ok := td.Kind.(*wit.Record)
		if !ok || td.Name == nil {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "record %s {\n", *td.Name)
		for _, f := range rec.Fields {
			fmt.Fprintf(&b, "    %s: %s,\n", f.Name, TypeName(f.Type))
		}
		b.WriteString("}\n")
	}
	return b.String()
}
