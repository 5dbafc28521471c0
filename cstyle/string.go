package cstyle

import (
	rmwcdr "github.com/wippyai/rmw-cdr"
	"github.com/wippyai/rmw-cdr/errors"
)

// String is the header of a rosidl C string. Capacity includes the NUL
// terminator, so an initialized empty string has Size 0 and Capacity 1.
type String = Sequence

func checkString(s String) error {
	if s.Data == 0 {
		if s.Size != 0 || s.Capacity != 0 {
			return errors.Inconsistent(errors.PhaseMemory, nil, "string without data has non-zero size")
		}
		return nil
	}
	if s.Size >= s.Capacity {
		return errors.Inconsistent(errors.PhaseMemory, nil, "string size leaves no room for terminator")
	}
	return nil
}

// InitString writes an empty, NUL-terminated string at addr.
func InitString(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32) error {
	data, err := alloc.Alloc(1, 1)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseMemory, nil, 1, 1, err)
	}
	if err := mem.WriteU8(data, 0); err != nil {
		alloc.Free(data, 1, 1)
		return err
	}
	return writeHeader(mem, addr, String{Data: data, Capacity: 1})
}

// ReadString returns a copy of the string at addr. A zero header reads as
// the empty string.
func ReadString(mem rmwcdr.Memory, addr uint32) (string, error) {
	s, err := readHeader(mem, addr)
	if err != nil {
		return "", err
	}
	if err := checkString(s); err != nil {
		return "", err
	}
	if s.Size == 0 {
		return "", nil
	}
	raw, err := mem.Read(s.Data, s.Size)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// AssignString stores value at addr, reusing the existing storage when it is
// large enough.
func AssignString(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32, value string) error {
	s, err := readHeader(mem, addr)
	if err != nil {
		return errors.AssignmentFailed(errors.PhaseMemory, nil, err)
	}
	if err := checkString(s); err != nil {
		return errors.AssignmentFailed(errors.PhaseMemory, nil, err)
	}
	if uint64(len(value))+1 > uint64(^uint32(0)) {
		return errors.AssignmentFailed(errors.PhaseMemory, nil,
			errors.Overflow(errors.PhaseMemory, nil, "string length exceeds 4 GiB"))
	}
	need := uint32(len(value)) + 1

	if s.Capacity < need {
		data, err := alloc.Alloc(need, 1)
		if err != nil {
			return errors.AssignmentFailed(errors.PhaseMemory, nil,
				errors.AllocationFailed(errors.PhaseMemory, nil, need, 1, err))
		}
		if s.Data != 0 {
			alloc.Free(s.Data, s.Capacity, 1)
		}
		s.Data = data
		s.Capacity = need
	}

	buf := make([]byte, need)
	copy(buf, value)
	if err := mem.Write(s.Data, buf); err != nil {
		return errors.AssignmentFailed(errors.PhaseMemory, nil, err)
	}
	s.Size = need - 1
	if err := writeHeader(mem, addr, s); err != nil {
		return errors.AssignmentFailed(errors.PhaseMemory, nil, err)
	}
	return nil
}

// FiniString frees the string at addr and zeroes its header.
func FiniString(mem rmwcdr.Memory, alloc rmwcdr.Allocator, addr uint32) error {
	s, err := readHeader(mem, addr)
	if err != nil {
		return err
	}
	if err := checkString(s); err != nil {
		return err
	}
	if s.Data != 0 {
		alloc.Free(s.Data, s.Capacity, 1)
	}
	return writeHeader(mem, addr, String{})
}
