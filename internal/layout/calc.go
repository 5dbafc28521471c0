package layout

import (
	"sync"

	"github.com/wippyai/rmw-cdr/internal/types"
	"github.com/wippyai/rmw-cdr/introspection"
)

// maxWireAlign is the largest CDR alignment. Serialized sizes depend on the
// start offset only modulo this value.
const maxWireAlign = 8

type sizeKey struct {
	mm      *introspection.MessageMembers
	residue uint8
}

type sizeInfo struct {
	delta   uint64
	bounded bool
}

// Calculator computes worst-case serialized sizes and in-memory alignment for
// one memory model and one set of limits. Results are cached per schema and
// safe for concurrent use.
type Calculator struct {
	model  Model
	limits Limits
	sizes  sync.Map // sizeKey -> sizeInfo
	aligns sync.Map // *introspection.MessageMembers -> uint32
}

func NewCalculator(model Model, limits Limits) *Calculator {
	return &Calculator{
		model:  model,
		limits: limits.Normalize(),
	}
}

func (c *Calculator) Model() Model {
	return c.model
}

func (c *Calculator) Limits() Limits {
	return c.limits
}

// MaxSerializedSize returns the largest number of bytes a message of this
// schema can occupy when serialized starting at stream offset start. bounded
// is false when some field has no ceiling (an Unlimited capacity or a
// recursive type); size then covers only the bounded part.
func (c *Calculator) MaxSerializedSize(mm *introspection.MessageMembers, start uint64) (size uint64, bounded bool) {
	w := sizeWalker{calc: c, active: map[*introspection.MessageMembers]bool{}}
	end, bounded := w.message(mm, start)
	return end - start, bounded
}

// Alignment returns the in-memory alignment of a message object.
func (c *Calculator) Alignment(mm *introspection.MessageMembers) uint32 {
	if v, ok := c.aligns.Load(mm); ok {
		return v.(uint32)
	}
	a := Alignment(mm, c.model)
	c.aligns.Store(mm, a)
	return a
}

// Stride returns the distance between consecutive array elements of a
// message.
func (c *Calculator) Stride(mm *introspection.MessageMembers) uint32 {
	return AlignTo(mm.SizeOf, c.Alignment(mm))
}

type sizeWalker struct {
	calc   *Calculator
	active map[*introspection.MessageMembers]bool
}

func (w *sizeWalker) message(mm *introspection.MessageMembers, off uint64) (uint64, bool) {
	key := sizeKey{mm: mm, residue: uint8(off % maxWireAlign)}
	if v, ok := w.calc.sizes.Load(key); ok {
		info := v.(sizeInfo)
		return satAdd(off, info.delta), info.bounded
	}
	if w.active[mm] {
		return off, false
	}
	w.active[mm] = true
	defer delete(w.active, mm)

	base := uint64(key.residue)
	end := base
	bounded := true
	if len(mm.Members) == 0 {
		end++
	}
	typeName := introspection.TypeName(mm)
	for i := range mm.Members {
		var ok bool
		end, ok = w.member(&mm.Members[i], typeName, end)
		bounded = bounded && ok
	}

	info := sizeInfo{delta: end - base, bounded: bounded}
	w.calc.sizes.Store(key, info)
	return satAdd(off, info.delta), bounded
}

func (w *sizeWalker) member(m *introspection.Member, typeName string, off uint64) (uint64, bool) {
	kind, ok := types.FromTypeID(m.TypeID)
	if !ok {
		return off, true
	}

	bounded := true
	var count uint64
	shape := m.Shape()
	switch shape.Kind {
	case introspection.ShapeScalar:
		count = 1
	case introspection.ShapeFixedArray:
		count = uint64(shape.N)
	case introspection.ShapeBoundedSequence:
		count = uint64(shape.N)
	case introspection.ShapeUnboundedSequence:
		capacity := w.calc.limits.SequenceCapacityFor(typeName)
		if capacity == Unlimited {
			bounded = false
		} else {
			count = uint64(capacity)
		}
	}
	if shape.IsSequence() {
		off = AlignTo64(off, 4) + 4
	}
	if count == 0 {
		return off, bounded
	}

	switch kind {
	case types.KindString:
		strMax := w.calc.limits.StringCapacityFor(m.StringUpperBound)
		if strMax == Unlimited {
			bounded = false
			strMax = 0
		}
		end := repeat(count, off, func(o uint64) (uint64, bool) {
			return satAdd(AlignTo64(o, 4)+4, uint64(strMax)+1), true
		})
		return end, bounded
	case types.KindMessage:
		if m.Members == nil {
			return off, bounded
		}
		childBounded := true
		end := repeat(count, off, func(o uint64) (uint64, bool) {
			next, ok := w.message(m.Members, o)
			childBounded = childBounded && ok
			return next, ok
		})
		return end, bounded && childBounded
	default:
		size := uint64(kind.Size())
		return satAdd(AlignTo64(off, size), satMul(count, size)), bounded
	}
}

// repeat applies step n times starting at off. The per-step growth depends
// only on the offset modulo maxWireAlign, so once a residue repeats the rest
// of the run is extrapolated.
func repeat(n, off uint64, step func(uint64) (uint64, bool)) uint64 {
	var seenAt [maxWireAlign]uint64
	var seenOff [maxWireAlign]uint64
	var seen [maxWireAlign]bool

	for i := uint64(0); i < n; i++ {
		r := off % maxWireAlign
		if seen[r] {
			period := i - seenAt[r]
			delta := off - seenOff[r]
			remaining := n - i
			off = satAdd(off, satMul(remaining/period, delta))
			for k := uint64(0); k < remaining%period; k++ {
				off, _ = step(off)
			}
			return off
		}
		seen[r] = true
		seenAt[r] = i
		seenOff[r] = off
		off, _ = step(off)
	}
	return off
}

// Alignment returns the in-memory alignment of a message object under the
// given model: the largest alignment of any member, at least 1.
func Alignment(mm *introspection.MessageMembers, model Model) uint32 {
	return alignment(mm, model, map[*introspection.MessageMembers]bool{})
}

func alignment(mm *introspection.MessageMembers, model Model, active map[*introspection.MessageMembers]bool) uint32 {
	if active[mm] {
		return 1
	}
	active[mm] = true
	defer delete(active, mm)

	maxAlign := uint32(1)
	for i := range mm.Members {
		if a := memberAlign(&mm.Members[i], model, active); a > maxAlign {
			maxAlign = a
		}
	}
	return maxAlign
}

func memberAlign(m *introspection.Member, model Model, active map[*introspection.MessageMembers]bool) uint32 {
	if m.Shape().IsSequence() {
		return model.SequenceAlign
	}
	switch m.TypeID {
	case introspection.TypeString:
		return model.StringAlign
	case introspection.TypeMessage:
		if m.Members == nil {
			return 1
		}
		return alignment(m.Members, model, active)
	default:
		return scalarAlign(m.TypeID.Size(), model)
	}
}

func scalarAlign(size uint32, model Model) uint32 {
	switch {
	case size == 0:
		return 1
	case size == 8 && model.Align64 != 0:
		return model.Align64
	default:
		return size
	}
}

// Stride returns AlignTo(mm.SizeOf, Alignment(mm, model)).
func Stride(mm *introspection.MessageMembers, model Model) uint32 {
	return AlignTo(mm.SizeOf, Alignment(mm, model))
}

// ElementLayout returns the in-memory size and alignment of one element of
// a member (the member itself for scalars).
func ElementLayout(m *introspection.Member, model Model) (size, align uint32) {
	switch m.TypeID {
	case introspection.TypeString:
		return model.StringSize, model.StringAlign
	case introspection.TypeMessage:
		if m.Members == nil {
			return 0, 1
		}
		return Stride(m.Members, model), Alignment(m.Members, model)
	default:
		s := m.TypeID.Size()
		return s, scalarAlign(s, model)
	}
}

// MemberLayout returns the in-memory size and alignment of a member field.
func MemberLayout(m *introspection.Member, model Model) (size, align uint32) {
	shape := m.Shape()
	if shape.IsSequence() {
		return model.SequenceSize, model.SequenceAlign
	}
	size, align = ElementLayout(m, model)
	if shape.Kind == introspection.ShapeFixedArray {
		total, ok := SafeMulU32(size, shape.N)
		if !ok {
			total = ^uint32(0)
		}
		return total, align
	}
	return size, align
}
