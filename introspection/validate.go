package introspection

import (
	"github.com/wippyai/rmw-cdr/errors"
)

// Validate checks the structural invariants of a schema tree: message
// members carry a child schema, bounded sequences have a positive bound and
// no message contains itself by value. Recursion through a sequence is
// allowed since sequence elements live out of line.
func Validate(mm *MessageMembers) error {
	if mm == nil {
		return errors.NilPointer(errors.PhaseCompile, nil, "*MessageMembers")
	}
	v := validator{
		done:     map[*MessageMembers]bool{},
		visiting: map[*MessageMembers]bool{},
	}
	return v.walk(mm, nil, map[*MessageMembers]bool{})
}

type validator struct {
	done     map[*MessageMembers]bool
	visiting map[*MessageMembers]bool
}

func (v *validator) walk(mm *MessageMembers, path []string, byValue map[*MessageMembers]bool) error {
	if byValue[mm] {
		return errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Path(path...).
			Detail("message %s contains itself by value", mm.FullName()).
			Build()
	}
	if v.done[mm] || v.visiting[mm] {
		return nil
	}
	v.visiting[mm] = true
	byValue[mm] = true

	for i := range mm.Members {
		m := &mm.Members[i]
		memberPath := append(append([]string{}, path...), m.Name)

		if m.IsUpperBound && (!m.IsArray || m.ArraySize == 0) {
			return errors.InvalidData(errors.PhaseCompile, memberPath,
				"bounded sequence requires is_array and a positive array_size")
		}
		if m.TypeID != TypeMessage {
			continue
		}
		if m.Members == nil {
			return errors.FieldMissing(errors.PhaseCompile, memberPath, "members")
		}

		next := byValue
		if m.Shape().IsSequence() {
			next = map[*MessageMembers]bool{}
		}
		if err := v.walk(m.Members, memberPath, next); err != nil {
			return err
		}
	}

	delete(byValue, mm)
	v.visiting[mm] = false
	v.done[mm] = true
	return nil
}
