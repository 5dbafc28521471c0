package cdr

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/wippyai/rmw-cdr/errors"
)

func TestWriter_Alignment(t *testing.T) {
	w := NewWriter(DefaultConfig())
	w.WriteUint8(1)
	w.WriteUint64(2)

	want := []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes = %v, want %v", w.Bytes(), want)
	}
}

func TestWriter_String(t *testing.T) {
	tests := []struct {
		name  string
		order binary.ByteOrder
		s     string
		want  []byte
	}{
		{"le", binary.LittleEndian, "hi", []byte{3, 0, 0, 0, 'h', 'i', 0}},
		{"be", binary.BigEndian, "hi", []byte{0, 0, 0, 3, 'h', 'i', 0}},
		{"empty", binary.LittleEndian, "", []byte{1, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(Config{ByteOrder: tt.order})
			w.WriteString(tt.s)
			if !bytes.Equal(w.Bytes(), tt.want) {
				t.Errorf("Bytes = %v, want %v", w.Bytes(), tt.want)
			}
		})
	}
}

func TestWriter_Encapsulation(t *testing.T) {
	w := NewWriter(Config{ByteOrder: binary.LittleEndian, Encapsulation: true})
	w.WriteUint8(7)
	w.WriteUint32(1)

	// Alignment is relative to the origin after the header.
	want := []byte{0, 1, 0, 0, 7, 0, 0, 0, 1, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes = %v, want %v", w.Bytes(), want)
	}
	if w.Offset() != 8 || w.Len() != 12 {
		t.Errorf("Offset = %d, Len = %d", w.Offset(), w.Len())
	}

	w.Reset()
	if !bytes.Equal(w.Bytes(), []byte{0, 1, 0, 0}) {
		t.Errorf("Reset should rewrite header, got %v", w.Bytes())
	}

	be := NewWriter(Config{ByteOrder: binary.BigEndian, Encapsulation: true})
	if !bytes.Equal(be.Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("big-endian header = %v", be.Bytes())
	}
}

func TestRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			cfg := Config{ByteOrder: order, Encapsulation: true}
			w := NewWriter(cfg)
			w.WriteBool(true)
			w.WriteInt16(-2)
			w.WriteInt8(-3)
			w.WriteInt32(-4)
			w.WriteFloat64(1.5)
			w.WriteString("ros")
			w.WriteFloat32(0.25)
			w.WriteLength(2)
			w.WriteInt64(-5)

			r, err := NewReader(w.Bytes(), Config{Encapsulation: true})
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			if r.ByteOrder() != order {
				t.Fatalf("ByteOrder = %v, want %v", r.ByteOrder(), order)
			}

			b, _ := r.ReadBool()
			i16, _ := r.ReadInt16()
			i8, _ := r.ReadInt8()
			i32, _ := r.ReadInt32()
			f64, _ := r.ReadFloat64()
			s, _ := r.ReadString()
			f32, _ := r.ReadFloat32()
			n, _ := r.ReadLength(0)
			i64, err := r.ReadInt64()
			if err != nil {
				t.Fatalf("read: %v", err)
			}

			if !b || i16 != -2 || i8 != -3 || i32 != -4 || f64 != 1.5 || s != "ros" || f32 != 0.25 || n != 2 || i64 != -5 {
				t.Errorf("got %v %d %d %d %v %q %v %d %d", b, i16, i8, i32, f64, s, f32, n, i64)
			}
			if r.Remaining() != 0 {
				t.Errorf("Remaining = %d, want 0", r.Remaining())
			}
		})
	}
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		cfg  Config
		read func(r *Reader) error
		kind errors.Kind
	}{
		{
			name: "short header",
			data: []byte{0, 1},
			cfg:  Config{Encapsulation: true},
			kind: errors.KindTruncated,
		},
		{
			name: "unknown encapsulation",
			data: []byte{0, 9, 0, 0},
			cfg:  Config{Encapsulation: true},
			kind: errors.KindUnsupported,
		},
		{
			name: "truncated uint32",
			data: []byte{1, 0},
			read: func(r *Reader) error { _, err := r.ReadUint32(); return err },
			kind: errors.KindTruncated,
		},
		{
			name: "string longer than input",
			data: []byte{10, 0, 0, 0, 'a', 0},
			read: func(r *Reader) error { _, err := r.ReadString(); return err },
			kind: errors.KindTruncated,
		},
		{
			name: "string without terminator",
			data: []byte{2, 0, 0, 0, 'a', 'b'},
			read: func(r *Reader) error { _, err := r.ReadString(); return err },
			kind: errors.KindInvalidData,
		},
		{
			name: "sequence length beyond input",
			data: []byte{0xff, 0xff, 0xff, 0x0f, 1, 2},
			read: func(r *Reader) error { _, err := r.ReadLength(1); return err },
			kind: errors.KindTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.data, tt.cfg)
			if err == nil && tt.read != nil {
				err = tt.read(r)
			}
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.kind, err)
			}
		})
	}
}

func TestReader_ZeroLengthString(t *testing.T) {
	r, err := NewReader([]byte{0, 0, 0, 0}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.ReadString()
	if err != nil || s != "" {
		t.Errorf("ReadString = %q, %v", s, err)
	}
}
