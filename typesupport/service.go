package typesupport

import (
	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// ServiceTypeSupport pairs the request and response type supports of a
// service.
type ServiceTypeSupport[P any] struct {
	Request  *MessageTypeSupport[P]
	Response *MessageTypeSupport[P]
	schema   *introspection.ServiceMembers
}

// NewServiceTypeSupport compiles both halves of sm with one compiler.
func NewServiceTypeSupport[P any](sm *introspection.ServiceMembers, acc codec.Accessor[P], opts Options) (*ServiceTypeSupport[P], error) {
	if sm == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "*introspection.ServiceMembers")
	}
	if sm.Request == nil {
		return nil, errors.FieldMissing(errors.PhaseCompile, []string{sm.Name}, "request")
	}
	if sm.Response == nil {
		return nil, errors.FieldMissing(errors.PhaseCompile, []string{sm.Name}, "response")
	}
	if opts.Compiler == nil {
		opts.Compiler = codec.NewCompiler(acc.Model(), opts.Config.Limits)
	}

	req, err := NewMessageTypeSupport(sm.Request, acc, opts)
	if err != nil {
		return nil, errors.WithPath(err, "request")
	}
	resp, err := NewMessageTypeSupport(sm.Response, acc, opts)
	if err != nil {
		return nil, errors.WithPath(err, "response")
	}
	return &ServiceTypeSupport[P]{Request: req, Response: resp, schema: sm}, nil
}

// ServiceName returns the DDS service type name stem,
// e.g. "example_interfaces::srv::dds_::AddTwoInts_".
func (s *ServiceTypeSupport[P]) ServiceName() string {
	return introspection.TypeName(&introspection.MessageMembers{
		Namespace: s.schema.Namespace,
		Name:      s.schema.Name,
	})
}

func (s *ServiceTypeSupport[P]) Schema() *introspection.ServiceMembers {
	return s.schema
}
