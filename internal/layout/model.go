package layout

import "unsafe"

// Model describes how a representation stores strings and sequences in
// memory. Everything else (primitives, fixed arrays, nested messages) is laid
// out by C struct rules in every model.
type Model struct {
	Name          string
	StringSize    uint32
	StringAlign   uint32
	SequenceSize  uint32
	SequenceAlign uint32
	// Align64 is the alignment of 8-byte scalars inside structs.
	Align64 uint32
}

// CStyle is the rosidl C layout on a 32-bit target: strings and sequences are
// {data, size, capacity} triplets of uint32.
var CStyle = Model{
	Name:          "c",
	StringSize:    12,
	StringAlign:   4,
	SequenceSize:  12,
	SequenceAlign: 4,
	Align64:       8,
}

// Native is the Go layout: string headers and slice headers of the host.
var Native = Model{
	Name:          "native",
	StringSize:    uint32(unsafe.Sizeof("")),
	StringAlign:   uint32(unsafe.Alignof("")),
	SequenceSize:  uint32(unsafe.Sizeof([]byte(nil))),
	SequenceAlign: uint32(unsafe.Alignof([]byte(nil))),
	Align64:       uint32(unsafe.Alignof(uint64(0))),
}
