package layout

import (
	"maps"

	"github.com/wippyai/rmw-cdr/internal/types"
)

// Unlimited disables a capacity ceiling.
const Unlimited = types.Unlimited

const (
	DefaultStringCapacity   = 256
	DefaultSequenceCapacity = 101
)

// Limits are the assumed ceilings for unbounded strings and sequences. They
// drive worst-case size estimation and are enforced by the serializer.
// Zero fields take the defaults; Unlimited removes the ceiling, in which case
// types containing such fields have no bounded maximum size.
type Limits struct {
	// SequenceCapacityOverrides replaces SequenceCapacity for unbounded
	// sequences declared in the named message type (DDS type name).
	SequenceCapacityOverrides map[string]uint32
	StringCapacity            uint32
	SequenceCapacity          uint32
}

func DefaultLimits() Limits {
	return Limits{
		StringCapacity:   DefaultStringCapacity,
		SequenceCapacity: DefaultSequenceCapacity,
	}
}

// Normalize fills zero fields with their defaults.
func (l Limits) Normalize() Limits {
	if l.StringCapacity == 0 {
		l.StringCapacity = DefaultStringCapacity
	}
	if l.SequenceCapacity == 0 {
		l.SequenceCapacity = DefaultSequenceCapacity
	}
	return l
}

// IsZero reports whether no limit is set.
func (l Limits) IsZero() bool {
	return l.StringCapacity == 0 && l.SequenceCapacity == 0 && len(l.SequenceCapacityOverrides) == 0
}

// Equal reports whether two limits size and enforce every type alike.
func (l Limits) Equal(o Limits) bool {
	l, o = l.Normalize(), o.Normalize()
	return l.StringCapacity == o.StringCapacity &&
		l.SequenceCapacity == o.SequenceCapacity &&
		maps.EqualFunc(l.SequenceCapacityOverrides, o.SequenceCapacityOverrides, func(a, b uint32) bool {
			return a == b
		})
}

// SequenceCapacityFor returns the capacity of unbounded sequences declared in
// the given message type.
func (l Limits) SequenceCapacityFor(typeName string) uint32 {
	if c, ok := l.SequenceCapacityOverrides[typeName]; ok && c != 0 {
		return c
	}
	if l.SequenceCapacity == 0 {
		return DefaultSequenceCapacity
	}
	return l.SequenceCapacity
}

// StringCapacityFor returns the length ceiling of a string with the given
// declared bound.
func (l Limits) StringCapacityFor(bound uint32) uint32 {
	if bound > 0 {
		return bound
	}
	if l.StringCapacity == 0 {
		return DefaultStringCapacity
	}
	return l.StringCapacity
}
