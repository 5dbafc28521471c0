package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseSerialize,
				Kind:     KindTypeMismatch,
				Path:     []string{"pose", "position", "x"},
				GoType:   "string",
				TypeName: "float64",
				Detail:   "cannot convert",
			},
			contains: []string{"[serialize]", "type_mismatch", "pose.position.x", "Go type string vs ROS type float64 - cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDeserialize,
				Kind:  KindTruncated,
			},
			contains: []string{"[deserialize]", "truncated"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMemory,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[memory]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseSerialize,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseSerialize,
		Kind:  KindBoundViolation,
		Path:  []string{"name"},
	}

	if !err.Is(&Error{Phase: PhaseSerialize, Kind: KindBoundViolation}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDeserialize, Kind: KindBoundViolation}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseSerialize, Kind: KindTruncated}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrBoundViolation) {
		t.Error("sentinel without phase should match any phase")
	}
	if errors.Is(err, ErrTruncated) {
		t.Error("sentinel of another kind should not match")
	}

	wrapped := fmt.Errorf("publish: %w", err)
	if !errors.Is(wrapped, ErrBoundViolation) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("x: %w", UnknownType(PhaseCompile, nil, 17))); got != KindUnknownType {
		t.Errorf("KindOf = %q, want %q", got, KindUnknownType)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseSerialize, KindTypeMismatch).
		Path("header", "stamp").
		GoType("string").
		TypeName("int32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "int32", "string").
		Build()

	if err.Phase != PhaseSerialize {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseSerialize)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "header" || err.Path[1] != "stamp" {
		t.Errorf("Path = %v, want [header stamp]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.TypeName != "int32" {
		t.Errorf("TypeName = %v, want 'int32'", err.TypeName)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected int32, got string" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("BoundViolation", func(t *testing.T) {
		err := BoundViolation(PhaseSerialize, []string{"b"}, 11, 10)
		if err.Kind != KindBoundViolation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBoundViolation)
		}
		if !strings.Contains(err.Detail, "11") || !strings.Contains(err.Detail, "10") {
			t.Errorf("Detail = %q, should contain length and bound", err.Detail)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := UnknownType(PhaseCompile, []string{"w"}, 17)
		if err.Kind != KindUnknownType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownType)
		}
		if err.Value != uint8(17) {
			t.Errorf("Value = %v, want 17", err.Value)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseDeserialize, nil, 1024, 8, nil)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("AssignmentFailed", func(t *testing.T) {
		cause := errors.New("oom")
		err := AssignmentFailed(PhaseDeserialize, []string{"s"}, cause)
		if err.Kind != KindAssignment || !errors.Is(err, cause) {
			t.Errorf("unexpected %v", err)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(PhaseDeserialize, 4, 1)
		if err.Kind != KindTruncated {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTruncated)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint32(10) {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseSerialize, []string{"ptr"}, "*Pose")
		if err.Kind != KindNilPointer || err.GoType != "*Pose" {
			t.Errorf("unexpected %v", err)
		}
	})

	t.Run("Inconsistent", func(t *testing.T) {
		err := Inconsistent(PhaseMemory, nil, "size > capacity")
		if err.Kind != KindInconsistent {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInconsistent)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseRegistry, "std_msgs::msg::dds_::String_")
		if !errors.Is(err, ErrDuplicate) {
			t.Error("Duplicate should match ErrDuplicate")
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("Foo.msg", 3, "bad type")
		if err.Phase != PhaseParse || !strings.Contains(err.Error(), "Foo.msg:3") {
			t.Errorf("unexpected %v", err)
		}
	})
}

func TestWithPath(t *testing.T) {
	err := BoundViolation(PhaseSerialize, []string{"data"}, 5, 4)
	wrapped := fmt.Errorf("outer: %w", err)

	got := WithPath(WithPath(wrapped, "inner"), "root")
	if got != wrapped {
		t.Fatal("WithPath must return the same error")
	}
	if want := "root.inner.data"; strings.Join(err.Path, ".") != want {
		t.Errorf("Path = %v, want %s", err.Path, want)
	}
	if WithPath(nil, "x") != nil {
		t.Error("WithPath(nil) != nil")
	}
	if plain := errors.New("plain"); WithPath(plain, "x") != plain {
		t.Error("non-structured errors pass through")
	}
}
