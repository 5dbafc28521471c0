// Package cstyle accesses rosidl C-layout message objects in a 32-bit
// linear memory.
//
// Strings and sequences are 12-byte headers {data, size, capacity} aligned
// to 4; a string's capacity includes its NUL terminator. Element storage is
// obtained from an rmwcdr.Allocator.
//
//	Sequence        - container header; InitSequence/FiniSequence
//	String          - string header; InitString/AssignString/FiniString
//	Array[T]        - typed view of a primitive sequence
//	Strings         - view of a string sequence
//	InitMessage     - default-construct every nested string
//	FiniMessage     - release every nested container
//	Accessor        - codec.Accessor[uint32] over the above
//
// Objects built from C headers carry Offset and SizeOf from the generator;
// schemas built at runtime get them from msgspec (or layout placement).
//
// # Bookkeeping
//
// Every read of a header checks size <= capacity and that data is null
// exactly when capacity is zero. Violations are inconsistent errors and
// nothing is freed.
package cstyle
