package cdr

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/rmw-cdr/errors"
)

// Reader decodes CDR values from a byte slice.
type Reader struct {
	data   []byte
	order  binary.ByteOrder
	pos    int
	origin int
}

// NewReader creates a reader over data. With Encapsulation set the header is
// parsed and selects the byte order.
func NewReader(data []byte, cfg Config) (*Reader, error) {
	r := &Reader{
		data:  data,
		order: cfg.order(),
	}
	if !cfg.Encapsulation {
		return r, nil
	}
	if len(data) < HeaderSize {
		return nil, errors.Truncated(errors.PhaseDeserialize, HeaderSize, len(data))
	}
	switch id := binary.BigEndian.Uint16(data[:2]); id {
	case EncapsulationCDRBE:
		r.order = binary.BigEndian
	case EncapsulationCDRLE:
		r.order = binary.LittleEndian
	default:
		return nil, errors.New(errors.PhaseDeserialize, errors.KindUnsupported).
			Value(id).
			Detail("encapsulation kind 0x%04x", id).
			Build()
	}
	r.pos = HeaderSize
	r.origin = HeaderSize
	return r, nil
}

func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// Offset returns the current position relative to the origin.
func (r *Reader) Offset() int {
	return r.pos - r.origin
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Align skips padding up to a multiple of n relative to the origin.
func (r *Reader) Align(n int) error {
	if n <= 1 {
		return nil
	}
	pad := (n - r.Offset()%n) % n
	if pad > r.Remaining() {
		return errors.Truncated(errors.PhaseDeserialize, pad, r.Remaining())
	}
	r.pos += pad
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, errors.Truncated(errors.PhaseDeserialize, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadBool treats any non-zero byte as true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.Align(2); err != nil {
		return 0, err
	}
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.Align(4); err != nil {
		return 0, err
	}
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.Align(8); err != nil {
		return 0, err
	}
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadString reads a length-prefixed, NUL-terminated string. A zero length
// is accepted as the empty string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if uint64(n) > uint64(r.Remaining()) {
		return "", errors.Truncated(errors.PhaseDeserialize, int(min(uint64(n), math.MaxInt32)), r.Remaining())
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	if b[n-1] != 0 {
		return "", errors.InvalidData(errors.PhaseDeserialize, nil, "string is not NUL terminated")
	}
	return string(b[:n-1]), nil
}

// ReadLength reads a sequence element count and checks that the stream can
// hold that many elements of at least minElemSize bytes each.
func (r *Reader) ReadLength(minElemSize uint32) (uint32, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	need := uint64(n) * uint64(minElemSize)
	if need > uint64(r.Remaining()) {
		return 0, errors.Truncated(errors.PhaseDeserialize, int(min(need, math.MaxInt32)), r.Remaining())
	}
	return n, nil
}

// ReadBytes returns the next n raw bytes without alignment. The slice aliases
// the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}
