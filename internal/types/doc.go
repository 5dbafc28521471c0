// Package types defines the compiled message plans walked by the codec.
//
// A CompiledMessage holds precomputed layout information (object size,
// alignment, element stride, worst-case wire size) and one CompiledField per
// member with its Kind, Shape and effective length ceilings. Compiling once
// keeps schema interpretation off the serialize/deserialize hot path.
//
// This package is internal to the codec.
package types
