// Package errors provides structured error types for the CDR codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, Go/field type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSerialize, errors.KindBoundViolation).
//		Path("header", "frame_id").
//		TypeName("string<=10").
//		Detail("length %d exceeds bound %d", 11, 10).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BoundViolation(errors.PhaseSerialize, path, 11, 10)
//	err := errors.Truncated(errors.PhaseDeserialize, 4, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match on Kind alone:
//
//	if errors.Is(err, errors.ErrBoundViolation) { ... }
package errors
