// Package codec is the introspection-driven CDR serializer and deserializer.
//
// A Compiler turns an introspection schema into a CompiledMessage: one field
// plan per member with its kind, shape, offset, element stride and effective
// length ceilings. Serializer and Deserializer walk that plan together with
// an object handle, touching memory only through an Accessor. The same walk
// therefore serves Go structs (package native) and C-layout objects in a
// linear memory (package cstyle).
//
//	comp := codec.NewCompiler(codec.NativeModel, codec.DefaultLimits())
//	plan, err := comp.Compile(schema)
//	ser := codec.NewSerializer[unsafe.Pointer](native.Accessor{})
//	buf, err := ser.Marshal(codec.DefaultConfig(), plan, unsafe.Pointer(&msg))
//
// # Failure Policy
//
// Every failure aborts the walk with an *errors.Error carrying the member
// path. Serialization never truncates: strings and sequences beyond their
// bound (or the configured capacity when unbounded) are bound violations.
// Deserialization checks declared bounds and rejects lengths the remaining
// input cannot hold before allocating.
package codec
