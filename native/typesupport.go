package native

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
	"github.com/wippyai/rmw-cdr/typesupport"
)

// TypeSupport serializes Go structs of type T.
type TypeSupport[T any] struct {
	ts *typesupport.MessageTypeSupport[unsafe.Pointer]
}

// NewTypeSupport derives the schema of T and compiles it. namespace is
// "<package>__msg", name the message name.
func NewTypeSupport[T any](namespace, name string, opts typesupport.Options) (*TypeSupport[T], error) {
	mm, err := SchemaOf[T](namespace, name)
	if err != nil {
		return nil, err
	}
	return TypeSupportFor[T](mm, opts)
}

// TypeSupportFor compiles a schema built elsewhere. Member offsets and
// SizeOf must describe T's memory layout.
func TypeSupportFor[T any](mm *introspection.MessageMembers, opts typesupport.Options) (*TypeSupport[T], error) {
	ts, err := typesupport.NewMessageTypeSupport[unsafe.Pointer](mm, Accessor{}, opts)
	if err != nil {
		return nil, err
	}
	return &TypeSupport[T]{ts: ts}, nil
}

func (t *TypeSupport[T]) TypeName() string {
	return t.ts.TypeName()
}

func (t *TypeSupport[T]) Schema() *introspection.MessageMembers {
	return t.ts.Schema()
}

func (t *TypeSupport[T]) ComputeTypeSize() uint64 {
	return t.ts.ComputeTypeSize()
}

func (t *TypeSupport[T]) IsBounded() bool {
	return t.ts.IsBounded()
}

// Untyped returns the underlying pointer-based type support, e.g. for
// typesupport.SerializeBatch.
func (t *TypeSupport[T]) Untyped() *typesupport.MessageTypeSupport[unsafe.Pointer] {
	return t.ts
}

func (t *TypeSupport[T]) Serialize(msg *T) ([]byte, error) {
	if msg == nil {
		return nil, errors.NilPointer(errors.PhaseSerialize, nil, reflect.TypeFor[*T]().String())
	}
	return t.ts.Serialize(unsafe.Pointer(msg))
}

// Deserialize decodes data into msg. Slices are replaced, not appended to.
func (t *TypeSupport[T]) Deserialize(data []byte, msg *T) error {
	if msg == nil {
		return errors.NilPointer(errors.PhaseDeserialize, nil, reflect.TypeFor[*T]().String())
	}
	return t.ts.Deserialize(data, unsafe.Pointer(msg))
}

// ServiceTypeSupport serializes the request and response structs of a
// service.
type ServiceTypeSupport[Req, Resp any] struct {
	Request  *TypeSupport[Req]
	Response *TypeSupport[Resp]
	svc      *typesupport.ServiceTypeSupport[unsafe.Pointer]
}

// NewServiceTypeSupport builds "<name>_Request" and "<name>_Response" in
// namespace "<package>__srv".
func NewServiceTypeSupport[Req, Resp any](namespace, name string, opts typesupport.Options) (*ServiceTypeSupport[Req, Resp], error) {
	b := NewBuilder(namespace)
	req, err := b.Build(reflect.TypeFor[Req](), name+"_Request")
	if err != nil {
		return nil, errors.WithPath(err, "request")
	}
	resp, err := b.Build(reflect.TypeFor[Resp](), name+"_Response")
	if err != nil {
		return nil, errors.WithPath(err, "response")
	}

	svc, err := typesupport.NewServiceTypeSupport[unsafe.Pointer](&introspection.ServiceMembers{
		Namespace: namespace,
		Name:      name,
		Request:   req,
		Response:  resp,
	}, Accessor{}, opts)
	if err != nil {
		return nil, err
	}
	return &ServiceTypeSupport[Req, Resp]{
		Request:  &TypeSupport[Req]{ts: svc.Request},
		Response: &TypeSupport[Resp]{ts: svc.Response},
		svc:      svc,
	}, nil
}

func (s *ServiceTypeSupport[Req, Resp]) ServiceName() string {
	return s.svc.ServiceName()
}
