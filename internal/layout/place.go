package layout

import (
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Place assigns member offsets and SizeOf to a schema built at runtime,
// following C struct rules under the given model: each member is aligned to
// its natural alignment and the total is rounded up to the struct alignment.
// An empty message occupies one byte. Nested schemas with SizeOf 0 are placed
// first; schemas that already carry a size are left untouched.
func Place(mm *introspection.MessageMembers, model Model) error {
	return place(mm, model, map[*introspection.MessageMembers]bool{})
}

func place(mm *introspection.MessageMembers, model Model, active map[*introspection.MessageMembers]bool) error {
	if active[mm] {
		return errors.InvalidData(errors.PhaseCompile, []string{mm.FullName()}, "message contains itself by value")
	}
	active[mm] = true
	defer delete(active, mm)

	// Children first: a by-value member needs its size and alignment.
	for i := range mm.Members {
		m := &mm.Members[i]
		if m.TypeID != introspection.TypeMessage || m.Members == nil || m.Members.SizeOf != 0 {
			continue
		}
		if m.Shape().IsSequence() {
			if active[m.Members] {
				continue
			}
		}
		if err := place(m.Members, model, active); err != nil {
			return err
		}
	}

	if len(mm.Members) == 0 {
		mm.SizeOf = 1
		return nil
	}

	offset := uint32(0)
	maxAlign := uint32(1)
	for i := range mm.Members {
		m := &mm.Members[i]
		size, align := MemberLayout(m, model)

		offset = AlignTo(offset, align)
		m.Offset = offset

		if align > maxAlign {
			maxAlign = align
		}

		next, ok := SafeAddU32(offset, size)
		if !ok {
			return errors.Overflow(errors.PhaseCompile, []string{mm.FullName(), m.Name}, "struct size exceeds 4 GiB")
		}
		offset = next
	}

	mm.SizeOf = AlignTo(offset, maxAlign)
	return nil
}
