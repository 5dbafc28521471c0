package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile     Phase = "compile"     // schema registration
	PhaseSize        Phase = "size"        // max size computation
	PhaseSerialize   Phase = "serialize"   // object to CDR
	PhaseDeserialize Phase = "deserialize" // CDR to object
	PhaseMemory      Phase = "memory"      // container init/fini, linear memory
	PhaseParse       Phase = "parse"       // .msg/.srv parsing
	PhaseRegistry    Phase = "registry"    // type support registration
)

// Kind categorizes the error
type Kind string

const (
	KindBoundViolation Kind = "bound_violation"
	KindUnknownType    Kind = "unknown_type"
	KindAllocation     Kind = "allocation"
	KindAssignment     Kind = "assignment"
	KindTruncated      Kind = "truncated"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindTypeMismatch   Kind = "type_mismatch"
	KindFieldMissing   Kind = "field_missing"
	KindNilPointer     Kind = "nil_pointer"
	KindInconsistent   Kind = "inconsistent"
	KindNotFound       Kind = "not_found"
	KindDuplicate      Kind = "duplicate"
	KindUnsupported    Kind = "unsupported"
	KindOverflow       Kind = "overflow"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	var subject []string
	if e.GoType != "" {
		subject = append(subject, "Go type "+e.GoType)
	}
	if e.TypeName != "" {
		subject = append(subject, "ROS type "+e.TypeName)
	}
	if len(subject) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(subject, " vs "))
	}

	if e.Detail != "" {
		if len(subject) > 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks that ignore the phase.
var (
	ErrBoundViolation = &Error{Kind: KindBoundViolation}
	ErrUnknownType    = &Error{Kind: KindUnknownType}
	ErrAllocation     = &Error{Kind: KindAllocation}
	ErrAssignment     = &Error{Kind: KindAssignment}
	ErrTruncated      = &Error{Kind: KindTruncated}
	ErrDuplicate      = &Error{Kind: KindDuplicate}
)

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether the first *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Is and As forward to the standard errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// TypeName sets the schema field type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// BoundViolation creates an error for a string or sequence longer than its bound
func BoundViolation(phase Phase, path []string, length, bound uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBoundViolation,
		Path:   path,
		Detail: fmt.Sprintf("length %d exceeds bound %d", length, bound),
		Value:  length,
	}
}

// UnknownType creates an error for an unrecognised member type tag
func UnknownType(phase Phase, path []string, typeID uint8) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Path:   path,
		Detail: fmt.Sprintf("unknown type id %d", typeID),
		Value:  typeID,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		TypeName: typeName,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, path []string, size, align uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Path:   path,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// AssignmentFailed creates a string assignment failure error
func AssignmentFailed(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAssignment,
		Path:   path,
		Detail: "string assignment failed",
		Cause:  cause,
	}
}

// Truncated creates an error for a stream that ends before a value does
func Truncated(phase Phase, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates a memory access error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access [%d, %d) out of bounds", offset, uint64(offset)+uint64(length)),
		Value:  offset,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Inconsistent creates an error for broken container bookkeeping
func Inconsistent(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInconsistent,
		Path:   path,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate creates an error for a type name registered twice with different schemas
func Duplicate(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindDuplicate,
		TypeName: typeName,
		Detail:   "type name already registered with a different schema",
	}
}

// ParseFailed creates a parsing error at a source position
func ParseFailed(file string, line int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Path:   []string{fmt.Sprintf("%s:%d", file, line)},
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath prepends a member path segment to the first *Error in err's
// chain. Walks call it while unwinding so the outermost member comes first.
func WithPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Path = append([]string{segment}, e.Path...)
	}
	return err
}
