package cdr

import (
	"encoding/binary"
	"math"
)

// Writer appends CDR-encoded values to an in-memory buffer. Alignment is
// relative to the origin, which follows the encapsulation header when one is
// written. Writes never fail.
type Writer struct {
	buf    []byte
	order  binary.ByteOrder
	origin int
	encap  bool
}

// NewWriter creates a writer. The encapsulation header, if configured, is
// written immediately.
func NewWriter(cfg Config) *Writer {
	w := &Writer{
		order: cfg.order(),
		encap: cfg.Encapsulation,
	}
	w.Reset()
	return w
}

// Reset discards all written data, keeping the buffer capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.origin = 0
	if w.encap {
		var id [2]byte
		binary.BigEndian.PutUint16(id[:], encapsulationID(w.order))
		w.buf = append(w.buf, id[0], id[1], 0, 0)
		w.origin = HeaderSize
	}
}

// Grow ensures space for another n bytes.
func (w *Writer) Grow(n int) {
	if n <= 0 || cap(w.buf)-len(w.buf) >= n {
		return
	}
	buf := make([]byte, len(w.buf), len(w.buf)+n)
	copy(buf, w.buf)
	w.buf = buf
}

func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}

// Bytes returns the encoded stream including any header. The slice aliases
// the writer's buffer until the next write or Reset.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the total number of bytes written including any header.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Offset returns the current position relative to the origin.
func (w *Writer) Offset() int {
	return len(w.buf) - w.origin
}

// Align pads with zero bytes up to a multiple of n relative to the origin.
func (w *Writer) Align(n int) {
	if n <= 1 {
		return
	}
	if pad := (n - w.Offset()%n) % n; pad > 0 {
		for i := 0; i < pad; i++ {
			w.buf = append(w.buf, 0)
		}
	}
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

func (w *Writer) WriteUint16(v uint16) {
	w.Align(2)
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.Align(4)
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	w.Align(8)
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a uint32 length that counts the NUL terminator, the
// bytes and the terminator.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)) + 1)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteLength writes a sequence element count.
func (w *Writer) WriteLength(n uint32) {
	w.WriteUint32(n)
}

// WriteBytes appends raw bytes without alignment.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
