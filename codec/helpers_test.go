package codec_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/cstyle"
	"github.com/wippyai/rmw-cdr/internal/layout"
	"github.com/wippyai/rmw-cdr/introspection"
	"github.com/wippyai/rmw-cdr/linmem"
	"github.com/wippyai/rmw-cdr/native"
)

var (
	nativeSer = codec.NewSerializer[unsafe.Pointer](native.Accessor{})
	nativeDe  = codec.NewDeserializer[unsafe.Pointer](native.Accessor{})
)

func schemaOf[T any](t *testing.T) *introspection.MessageMembers {
	t.Helper()
	mm, err := native.SchemaOf[T]("test_msgs__msg", reflect.TypeFor[T]().Name())
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}
	return mm
}

func nativePlan[T any](t *testing.T, limits codec.Limits) *codec.CompiledMessage {
	t.Helper()
	plan, err := codec.NewCompiler(codec.NativeModel, limits).Compile(schemaOf[T](t))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return plan
}

func marshal[T any](t *testing.T, plan *codec.CompiledMessage, v *T) []byte {
	t.Helper()
	buf, err := nativeSer.Marshal(codec.Config{}, plan, unsafe.Pointer(v))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return buf
}

// toCStyle copies a schema, dropping Go offsets and container hooks, and
// lays the copy out as rosidl C structs on a 32-bit target.
func toCStyle(t *testing.T, mm *introspection.MessageMembers) *introspection.MessageMembers {
	t.Helper()
	out := cloneSchema(mm, map[*introspection.MessageMembers]*introspection.MessageMembers{})
	if err := layout.Place(out, codec.CStyleModel); err != nil {
		t.Fatalf("Place: %v", err)
	}
	return out
}

func cloneSchema(mm *introspection.MessageMembers, done map[*introspection.MessageMembers]*introspection.MessageMembers) *introspection.MessageMembers {
	if c, ok := done[mm]; ok {
		return c
	}
	c := &introspection.MessageMembers{Namespace: mm.Namespace, Name: mm.Name}
	done[mm] = c
	c.Members = make([]introspection.Member, len(mm.Members))
	for i, m := range mm.Members {
		m.Offset = 0
		m.Container = nil
		if m.Members != nil {
			m.Members = cloneSchema(m.Members, done)
		}
		c.Members[i] = m
	}
	return c
}

// cEnv holds C-layout objects in a poisoned buffer so reads of
// uninitialized memory show up as garbage.
type cEnv struct {
	buf  *linmem.Buffer
	acc  *cstyle.Accessor
	plan *codec.CompiledMessage
	ser  *codec.Serializer[uint32]
	de   *codec.Deserializer[uint32]
}

func newCEnv(t *testing.T, mm *introspection.MessageMembers, limits codec.Limits) *cEnv {
	t.Helper()
	buf := linmem.NewBuffer(linmem.Config{Poison: true, MaxPages: 1024})
	acc := cstyle.NewAccessor(buf, buf)
	plan, err := codec.NewCompiler(codec.CStyleModel, limits).Compile(toCStyle(t, mm))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// Churn the allocator so later blocks come back poisoned.
	for _, size := range []uint32{1, 4, 8, 12, 16, 24, 32, 64} {
		p, _ := buf.Alloc(size, 4)
		buf.Free(p, size, 4)
	}
	return &cEnv{
		buf:  buf,
		acc:  acc,
		plan: plan,
		ser:  codec.NewSerializer[uint32](acc),
		de:   codec.NewDeserializer[uint32](acc),
	}
}

func (e *cEnv) decode(t *testing.T, data []byte) uint32 {
	t.Helper()
	addr, err := e.acc.New(e.plan)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.de.Unmarshal(codec.Config{}, e.plan, data, addr); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return addr
}

func (e *cEnv) encode(t *testing.T, addr uint32) []byte {
	t.Helper()
	buf, err := e.ser.Marshal(codec.Config{}, e.plan, addr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return buf
}

func (e *cEnv) field(t *testing.T, name string) *codec.CompiledField {
	t.Helper()
	for i := range e.plan.Fields {
		if e.plan.Fields[i].Name == name {
			return &e.plan.Fields[i]
		}
	}
	t.Fatalf("no field %q", name)
	return nil
}
