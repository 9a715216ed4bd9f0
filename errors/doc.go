// Package errors provides structured error types for the TISL compiler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Every error can carry a source position (file, line, column and the offending
// source line) so a caller can render a caret pointer, and a path naming the
// module/function/field involved.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		At(3, 14).
//		Source("(rec point (:x int :y flot))").
//		Detail("Unexpected data type %s", "flot").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UndefinedType(name, line, column)
//	err := errors.Generation(path, "Failed to lookup rust type: %s", name)
//
// The three phases that matter to a driver map onto three categories: parse
// errors are syntax errors, resolve errors are semantic errors and generate
// errors are generation errors. All errors implement the standard error
// interface and support errors.Is/As.
package errors
