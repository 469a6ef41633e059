package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
)

// Code generation error codes (GEN600-699)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "GEN600"
	// ErrInvalidGoIdentifier indicates a name that can't be converted to valid Go
	ErrInvalidGoIdentifier ErrorCode = "GEN601"
	// ErrUnsupportedDispatch indicates a relation dispatch without generator support
	ErrUnsupportedDispatch ErrorCode = "GEN602"
	// ErrUnsupportedNature indicates a relation nature without generator support
	ErrUnsupportedNature ErrorCode = "GEN603"
	// ErrFormatFailed indicates generated source that gofmt rejects
	ErrFormatFailed ErrorCode = "GEN604"
	// ErrGoReservedWord indicates use of Go reserved word
	ErrGoReservedWord ErrorCode = "GEN605"
)

// NewCodeGenFailed creates a GEN600 error
func NewCodeGenFailed(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Code generation failed: %s", reason),
		loc,
	).WithSuggestion("This is likely a compiler bug - please report it")
}

// NewInvalidGoIdentifier creates a GEN601 error
func NewInvalidGoIdentifier(loc ast.SourceLocation, name, reason string) *CompilerError {
	return newError(
		ErrInvalidGoIdentifier,
		"invalid_go_identifier",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Name '%s' cannot be converted to valid Go identifier: %s", name, reason),
		loc,
	).WithSuggestion("Use alphanumeric characters and underscores only")
}

// NewUnsupportedDispatch creates a GEN602 error
func NewUnsupportedDispatch(loc ast.SourceLocation, field, dispatch string) *CompilerError {
	return newError(
		ErrUnsupportedDispatch,
		"unsupported_dispatch",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Relation '%s': %s dispatch is unimplemented", field, dispatch),
		loc,
	).WithSuggestion("Use dispatch(Dynamic)")
}

// NewUnsupportedNature creates a GEN603 error
func NewUnsupportedNature(loc ast.SourceLocation, field, nature string) *CompilerError {
	return newError(
		ErrUnsupportedNature,
		"unsupported_nature",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Relation '%s': no accessor can be generated for nature %s", field, nature),
		loc,
	)
}

// NewFormatFailed creates a GEN604 error
func NewFormatFailed(loc ast.SourceLocation, file string, cause error) *CompilerError {
	return newError(
		ErrFormatFailed,
		"format_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Generated source for %s does not format: %v", file, cause),
		loc,
	).WithCause(cause).
		WithSuggestion("This is likely a compiler bug - please report it")
}

// NewGoReservedWord creates a GEN605 error
func NewGoReservedWord(loc ast.SourceLocation, word string) *CompilerError {
	return newError(
		ErrGoReservedWord,
		"go_reserved_word",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("'%s' is a reserved word in Go", word),
		loc,
	).WithSuggestion("Use a different name that doesn't conflict with Go keywords").
		WithExamples(
			"Common Go keywords: type, func, interface, struct, import, package, return, if, else, for, range",
		)
}

// Anchor places a generator error on the declaration it was produced for.
// Errors that are not compiler errors become GEN600.
func Anchor(err error, loc ast.SourceLocation) *CompilerError {
	var compiled *CompilerError
	if !stderrors.As(err, &compiled) {
		return NewCodeGenFailed(loc, err.Error()).WithCause(err)
	}
	compiled.Location = loc
	return compiled
}
