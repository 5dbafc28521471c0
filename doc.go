// Package rmwcdr is an introspection-driven CDR codec for ROS 2 style
// middleware adapters.
//
// Message types are described at runtime by an introspection schema (an
// ordered member list produced by a code generator or parsed from .msg text).
// A single generic codec walks that schema together with a typed object and
// writes or reads DDS Common Data Representation, independently of how the
// object stores its strings and sequences.
//
// # Architecture Overview
//
//	rmwcdr/              Root package with Memory and Allocator interfaces
//	├── introspection/   Schema model: members, shapes, type names
//	├── cdr/             CDR stream writer and reader
//	├── codec/           Generic serializer/deserializer over a field accessor
//	├── native/          Go struct representation (string, slices, arrays)
//	├── cstyle/          C struct representation in a 32-bit linear memory
//	├── linmem/          Linear memory backends (byte buffer, wazero guest memory)
//	├── msgspec/         .msg/.srv parser for dynamic schemas
//	├── typesupport/     Type registration, size, serialize/deserialize entry points
//	└── errors/          Structured error types
//
// # Quick Start
//
//	type Status struct {
//	    Code    int32
//	    Message string `ros:"message,bound=10"`
//	    Data    []uint8
//	}
//
//	ts, err := native.NewTypeSupport[Status]("demo_msgs__msg", "Status", typesupport.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf, err := ts.Serialize(&Status{Code: 42, Message: "hi", Data: []uint8{1, 2, 3}})
//
// # Wire Format
//
// Fields are written in member order with no tagging. Multi-byte scalars
// are aligned to their natural size relative to the stream origin; strings
// and sequences carry a uint32 length prefix.
package rmwcdr
