package codec

import (
	"github.com/wippyai/rmw-cdr/cdr"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Deserializer reads CDR into objects reached through an Accessor,
// allocating sequence and string storage as needed.
// It holds no per-call state and is safe for concurrent use.
type Deserializer[P any] struct {
	acc Accessor[P]
}

func NewDeserializer[P any](acc Accessor[P]) *Deserializer[P] {
	return &Deserializer[P]{acc: acc}
}

// Deserialize reads one message from r into obj, which must already be
// initialized. On error obj is partially populated and should be discarded.
func (d *Deserializer[P]) Deserialize(r *cdr.Reader, m *CompiledMessage, obj P) error {
	return d.message(r, m, obj, false)
}

// Unmarshal deserializes data into obj.
func (d *Deserializer[P]) Unmarshal(cfg Config, m *CompiledMessage, data []byte, obj P) error {
	r, err := cdr.NewReader(data, cfg.Stream())
	if err != nil {
		return err
	}
	return d.message(r, m, obj, false)
}

func (d *Deserializer[P]) message(r *cdr.Reader, m *CompiledMessage, p P, needsInit bool) error {
	if needsInit {
		if err := d.acc.InitMessage(p, m); err != nil {
			return err
		}
	}
	if len(m.Fields) == 0 {
		_, err := r.ReadUint8()
		return err
	}
	for i := range m.Fields {
		f := &m.Fields[i]
		if err := d.field(r, f, d.acc.Field(p, f.Offset)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deserializer[P]) field(r *cdr.Reader, f *CompiledField, p P) error {
	switch f.Shape.Kind {
	case introspection.ShapeScalar:
		return withPath(d.value(r, f, p, false), f.Name)

	case introspection.ShapeFixedArray:
		return d.elements(r, f, p, int(f.Shape.N), false)

	default:
		n, err := r.ReadLength(f.MinWireSize())
		if err != nil {
			return withPath(err, f.Name)
		}
		if f.SequenceBound > 0 && n > f.SequenceBound {
			return errors.BoundViolation(errors.PhaseDeserialize, []string{f.Name}, uint64(n), uint64(f.SequenceBound))
		}
		data, err := d.acc.ResizeSequence(p, f, int(n))
		if err != nil {
			return withPath(err, f.Name)
		}
		return d.elements(r, f, data, int(n), true)
	}
}

// elements decodes n consecutive elements. fresh marks memory just created
// by a resize, which nested messages must construct before use.
func (d *Deserializer[P]) elements(r *cdr.Reader, f *CompiledField, base P, n int, fresh bool) error {
	for i := 0; i < n; i++ {
		if err := d.value(r, f, d.acc.Index(base, i, f.ElemSize), fresh); err != nil {
			return withPath(err, indexed(f.Name, i))
		}
	}
	return nil
}

func (d *Deserializer[P]) value(r *cdr.Reader, f *CompiledField, p P, needsInit bool) error {
	switch f.Kind {
	case KindBool:
		v, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if v != 0 {
			v = 1
		}
		return d.acc.Store8(p, v)

	case KindByte, KindChar, KindUint8, KindInt8:
		v, err := r.ReadUint8()
		if err != nil {
			return err
		}
		return d.acc.Store8(p, v)

	case KindUint16, KindInt16:
		v, err := r.ReadUint16()
		if err != nil {
			return err
		}
		return d.acc.Store16(p, v)

	case KindUint32, KindInt32, KindFloat32:
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		return d.acc.Store32(p, v)

	case KindUint64, KindInt64, KindFloat64:
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		return d.acc.Store64(p, v)

	case KindString:
		s, err := r.ReadString()
		if err != nil {
			return err
		}
		if f.StringBound > 0 && uint64(len(s)) > uint64(f.StringBound) {
			return errors.BoundViolation(errors.PhaseDeserialize, nil, uint64(len(s)), uint64(f.StringBound))
		}
		return d.acc.StoreString(p, s)

	case KindMessage:
		return d.message(r, f.Message, p, needsInit)

	default:
		return errors.Unsupported(errors.PhaseDeserialize, "field kind "+f.Kind.String())
	}
}
