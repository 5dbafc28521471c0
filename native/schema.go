package native

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unsafe"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// TagName is the struct tag read by the schema builder.
//
//	ros:"<name>[,bound=N][,max=N][,type=byte|char|pkg/Name]"
//
// name overrides the member name (default: the Go name in snake_case; "-"
// skips the field). bound sets the upper bound of a string or of each string
// in a slice or array. max turns a slice into a bounded sequence. type picks
// byte or char for 8-bit integers, or names the message type of a nested
// struct.
const TagName = "ros"

type fieldTag struct {
	name        string
	typ         string
	stringBound uint32
	maxLen      uint32
	skip        bool
}

func parseTag(sf reflect.StructField, path []string) (fieldTag, error) {
	tag := fieldTag{name: toSnakeCase(sf.Name)}
	raw, ok := sf.Tag.Lookup(TagName)
	if !ok {
		return tag, nil
	}

	parts := strings.Split(raw, ",")
	switch parts[0] {
	case "-":
		tag.skip = true
		return tag, nil
	case "":
	default:
		tag.name = parts[0]
	}

	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "bound", "max":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil || n == 0 {
				return tag, errors.New(errors.PhaseCompile, errors.KindInvalidData).
					Path(path...).
					Detail("tag option %s needs a positive integer, got %q", key, value).
					Build()
			}
			if key == "bound" {
				tag.stringBound = uint32(n)
			} else {
				tag.maxLen = uint32(n)
			}
		case "type":
			tag.typ = value
		default:
			return tag, errors.New(errors.PhaseCompile, errors.KindInvalidData).
				Path(path...).
				Detail("unknown tag option %q", key).
				Build()
		}
	}
	return tag, nil
}

// Builder derives introspection schemas from Go struct types. Each Go type
// is described once; recursion through slices is supported.
type Builder struct {
	schemas   map[reflect.Type]*introspection.MessageMembers
	namespace string
	mu        sync.Mutex
}

// NewBuilder creates a builder whose nested structs default to namespace,
// e.g. "demo_msgs__msg".
func NewBuilder(namespace string) *Builder {
	return &Builder{
		namespace: namespace,
		schemas:   make(map[reflect.Type]*introspection.MessageMembers),
	}
}

// Build returns the schema of struct type t registered under name in the
// builder's namespace.
func (b *Builder) Build(t reflect.Type, name string) (*introspection.MessageMembers, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "reflect.Type")
	}
	return b.build(t, b.namespace, name, nil)
}

// SchemaOf builds the schema of T.
func SchemaOf[T any](namespace, name string) (*introspection.MessageMembers, error) {
	return NewBuilder(namespace).Build(reflect.TypeFor[T](), name)
}

func (b *Builder) build(t reflect.Type, namespace, name string, path []string) (*introspection.MessageMembers, error) {
	if mm, ok := b.schemas[t]; ok {
		return mm, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, t.String(), "struct")
	}

	mm := &introspection.MessageMembers{
		Namespace: namespace,
		Name:      name,
		SizeOf:    uint32(t.Size()),
	}
	b.schemas[t] = mm

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldPath := append(append([]string{}, path...), sf.Name)

		tag, err := parseTag(sf, fieldPath)
		if err != nil {
			delete(b.schemas, t)
			return nil, err
		}
		if tag.skip {
			continue
		}

		m := introspection.Member{
			Name:   tag.name,
			Offset: uint32(sf.Offset),
		}
		if err := b.member(&m, sf.Type, tag, namespace, fieldPath); err != nil {
			delete(b.schemas, t)
			return nil, err
		}
		mm.Members = append(mm.Members, m)
	}
	return mm, nil
}

func (b *Builder) member(m *introspection.Member, t reflect.Type, tag fieldTag, namespace string, path []string) error {
	switch t.Kind() {
	case reflect.Array:
		if t.Len() == 0 {
			return errors.Unsupported(errors.PhaseCompile, "zero-length array at "+strings.Join(path, "."))
		}
		if tag.maxLen > 0 {
			return errors.InvalidData(errors.PhaseCompile, path, "max applies to slices only")
		}
		m.IsArray = true
		m.ArraySize = uint32(t.Len())
		return b.element(m, t.Elem(), tag, namespace, path)

	case reflect.Slice:
		m.IsArray = true
		if tag.maxLen > 0 {
			m.ArraySize = tag.maxLen
			m.IsUpperBound = true
		}
		m.Container = sliceContainer(t)
		return b.element(m, t.Elem(), tag, namespace, path)

	default:
		if tag.maxLen > 0 {
			return errors.InvalidData(errors.PhaseCompile, path, "max applies to slices only")
		}
		return b.element(m, t, tag, namespace, path)
	}
}

func (b *Builder) element(m *introspection.Member, t reflect.Type, tag fieldTag, namespace string, path []string) error {
	if tag.stringBound > 0 && t.Kind() != reflect.String {
		return errors.InvalidData(errors.PhaseCompile, path, "bound applies to strings only")
	}

	switch t.Kind() {
	case reflect.Bool:
		m.TypeID = introspection.TypeBool
	case reflect.Uint8, reflect.Int8:
		m.TypeID = introspection.TypeUint8
		if t.Kind() == reflect.Int8 {
			m.TypeID = introspection.TypeInt8
		}
		switch tag.typ {
		case "":
		case "byte":
			m.TypeID = introspection.TypeByte
		case "char":
			m.TypeID = introspection.TypeChar
		default:
			return errors.TypeMismatch(errors.PhaseCompile, path, t.String(), tag.typ)
		}
		return nil
	case reflect.Uint16:
		m.TypeID = introspection.TypeUint16
	case reflect.Int16:
		m.TypeID = introspection.TypeInt16
	case reflect.Uint32:
		m.TypeID = introspection.TypeUint32
	case reflect.Int32:
		m.TypeID = introspection.TypeInt32
	case reflect.Uint64:
		m.TypeID = introspection.TypeUint64
	case reflect.Int64:
		m.TypeID = introspection.TypeInt64
	case reflect.Float32:
		m.TypeID = introspection.TypeFloat32
	case reflect.Float64:
		m.TypeID = introspection.TypeFloat64
	case reflect.String:
		m.TypeID = introspection.TypeString
		m.StringUpperBound = tag.stringBound
	case reflect.Struct:
		ns, name, err := b.messageName(t, tag, namespace, path)
		if err != nil {
			return err
		}
		child, err := b.build(t, ns, name, path)
		if err != nil {
			return err
		}
		m.TypeID = introspection.TypeMessage
		m.Members = child
		return nil
	default:
		return errors.TypeMismatch(errors.PhaseCompile, path, t.String(), "fixed-width integer, float, bool, string or struct")
	}

	if tag.typ != "" {
		return errors.TypeMismatch(errors.PhaseCompile, path, t.String(), tag.typ)
	}
	return nil
}

// messageName resolves the namespace and name of a nested struct from a
// type=pkg/Name or type=pkg/msg/Name tag, falling back to the enclosing
// namespace and the Go type name.
func (b *Builder) messageName(t reflect.Type, tag fieldTag, namespace string, path []string) (string, string, error) {
	if tag.typ == "" {
		if t.Name() == "" {
			return "", "", errors.InvalidData(errors.PhaseCompile, path, "anonymous struct needs a type= tag")
		}
		return namespace, t.Name(), nil
	}

	parts := strings.Split(tag.typ, "/")
	switch len(parts) {
	case 2:
		return parts[0] + "__msg", parts[1], nil
	case 3:
		return parts[0] + "__" + parts[1], parts[2], nil
	default:
		return "", "", errors.InvalidData(errors.PhaseCompile, path, "type tag must be pkg/Name or pkg/msg/Name, got "+tag.typ)
	}
}

func sliceContainer(st reflect.Type) *introspection.ContainerFuncs {
	return &introspection.ContainerFuncs{
		Size: func(p unsafe.Pointer) int {
			return reflect.NewAt(st, p).Elem().Len()
		},
		Data: func(p unsafe.Pointer) unsafe.Pointer {
			v := reflect.NewAt(st, p).Elem()
			if v.Len() == 0 {
				return nil
			}
			return v.UnsafePointer()
		},
		Resize: func(p unsafe.Pointer, n int) unsafe.Pointer {
			v := reflect.NewAt(st, p).Elem()
			if n == 0 {
				v.SetZero()
				return nil
			}
			v.Set(reflect.MakeSlice(st, n, n))
			return v.UnsafePointer()
		},
	}
}

// toSnakeCase converts a Go identifier to a ROS field name: FrameID becomes
// frame_id, Stamp stays stamp.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					result.WriteByte('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
