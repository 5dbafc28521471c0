// Package layout computes worst-case CDR sizes and in-memory layout for
// introspection schemas.
//
// # Wire Sizes
//
// CDR aligns every 2, 4 and 8 byte scalar to its natural size relative to
// the stream origin:
//   - Primitives: size plus padding (8-bit types never pad)
//   - Strings: uint32 length prefix, bytes, NUL terminator
//   - Sequences: uint32 count prefix, then elements
//   - Fixed arrays: elements only
//   - Empty messages: one placeholder byte
//
// Unbounded strings and sequences are sized with the ceilings in Limits.
// Arrays of nested messages are accumulated element by element so the
// padding between elements is exact for the start offset.
//
// # Memory Layout
//
// Objects follow C struct rules. A Model supplies the size and alignment of
// string and sequence containers (12/4 for the 32-bit C layout, Go header
// sizes for the native layout).
//
//	calc := layout.NewCalculator(layout.CStyle, layout.DefaultLimits())
//	size, bounded := calc.MaxSerializedSize(schema, 0)
//	stride := calc.Stride(schema)
//
// This package is internal to the codec.
package layout
