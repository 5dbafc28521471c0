package codec

import (
	"github.com/wippyai/rmw-cdr/cdr"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Serializer writes objects reached through an Accessor as CDR.
// It holds no per-call state and is safe for concurrent use.
type Serializer[P any] struct {
	acc Accessor[P]
}

func NewSerializer[P any](acc Accessor[P]) *Serializer[P] {
	return &Serializer[P]{acc: acc}
}

// Serialize appends obj to w. On error w holds a partial message and must be
// discarded.
func (s *Serializer[P]) Serialize(w *cdr.Writer, m *CompiledMessage, obj P) error {
	return s.message(w, m, obj)
}

// Marshal serializes obj into a fresh buffer. No buffer is returned on error.
func (s *Serializer[P]) Marshal(cfg Config, m *CompiledMessage, obj P) ([]byte, error) {
	w := cdr.NewWriter(cfg.Stream())
	if m.Bounded {
		w.Grow(int(min(m.MaxSize, maxPrealloc)))
	}
	if err := s.message(w, m, obj); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// maxPrealloc caps buffer preallocation from worst-case sizes.
const maxPrealloc = 1 << 16

func (s *Serializer[P]) message(w *cdr.Writer, m *CompiledMessage, p P) error {
	if len(m.Fields) == 0 {
		w.WriteUint8(0)
		return nil
	}
	for i := range m.Fields {
		f := &m.Fields[i]
		if err := s.field(w, f, s.acc.Field(p, f.Offset)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer[P]) field(w *cdr.Writer, f *CompiledField, p P) error {
	switch f.Shape.Kind {
	case introspection.ShapeScalar:
		return withPath(s.value(w, f, p), f.Name)

	case introspection.ShapeFixedArray:
		return s.elements(w, f, p, int(f.Shape.N))

	default:
		n, err := s.acc.SequenceLen(p, f)
		if err != nil {
			return withPath(err, f.Name)
		}
		if f.SequenceMax != Unlimited && uint64(n) > uint64(f.SequenceMax) {
			return errors.BoundViolation(errors.PhaseSerialize, []string{f.Name}, uint64(n), uint64(f.SequenceMax))
		}
		w.WriteLength(uint32(n))
		if n == 0 {
			return nil
		}
		data, err := s.acc.SequenceData(p, f)
		if err != nil {
			return withPath(err, f.Name)
		}
		return s.elements(w, f, data, n)
	}
}

func (s *Serializer[P]) elements(w *cdr.Writer, f *CompiledField, base P, n int) error {
	for i := 0; i < n; i++ {
		if err := s.value(w, f, s.acc.Index(base, i, f.ElemSize)); err != nil {
			return withPath(err, indexed(f.Name, i))
		}
	}
	return nil
}

func (s *Serializer[P]) value(w *cdr.Writer, f *CompiledField, p P) error {
	switch f.Kind {
	case KindBool:
		v, err := s.acc.Load8(p)
		if err != nil {
			return err
		}
		// Any non-zero byte is true; the raw pattern is never copied.
		w.WriteBool(v != 0)

	case KindByte, KindChar, KindUint8, KindInt8:
		v, err := s.acc.Load8(p)
		if err != nil {
			return err
		}
		w.WriteUint8(v)

	case KindUint16, KindInt16:
		v, err := s.acc.Load16(p)
		if err != nil {
			return err
		}
		w.WriteUint16(v)

	case KindUint32, KindInt32, KindFloat32:
		v, err := s.acc.Load32(p)
		if err != nil {
			return err
		}
		w.WriteUint32(v)

	case KindUint64, KindInt64, KindFloat64:
		v, err := s.acc.Load64(p)
		if err != nil {
			return err
		}
		w.WriteUint64(v)

	case KindString:
		str, err := s.acc.LoadString(p)
		if err != nil {
			return err
		}
		if f.StringMax != Unlimited && uint64(len(str)) > uint64(f.StringMax) {
			return errors.BoundViolation(errors.PhaseSerialize, nil, uint64(len(str)), uint64(f.StringMax))
		}
		w.WriteString(str)

	case KindMessage:
		return s.message(w, f.Message, p)

	default:
		return errors.Unsupported(errors.PhaseSerialize, "field kind "+f.Kind.String())
	}
	return nil
}
