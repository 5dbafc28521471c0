// Package cdr implements the DDS Common Data Representation stream.
//
// Writer and Reader handle byte order, the optional 4-byte encapsulation
// header and natural alignment of 2, 4 and 8 byte scalars relative to the
// stream origin. Strings carry a uint32 length that includes the NUL
// terminator; sequences carry a uint32 element count.
//
//	w := cdr.NewWriter(cdr.Config{ByteOrder: binary.LittleEndian, Encapsulation: true})
//	w.WriteInt32(42)
//	w.WriteString("hi")
//
//	r, err := cdr.NewReader(w.Bytes(), cdr.Config{Encapsulation: true})
//	v, err := r.ReadInt32()
package cdr
