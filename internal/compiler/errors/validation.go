package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/model"
)

// Validation error codes (VAL500-599)
const (
	// ErrDefaultAndPreset indicates a definition with both a default and a preset
	ErrDefaultAndPreset ErrorCode = "VAL500"
	// ErrSerialSettings indicates a Serial preset without start or increment
	ErrSerialSettings ErrorCode = "VAL501"
	// ErrSettingsWithoutSerial indicates start or increment without the Serial preset
	ErrSettingsWithoutSerial ErrorCode = "VAL502"
	// ErrRelationSettings indicates a relation without nature or dispatch
	ErrRelationSettings ErrorCode = "VAL503"
	// ErrStaticDispatch indicates a relation with Static dispatch
	ErrStaticDispatch ErrorCode = "VAL504"
	// ErrIncompatibleDefinition indicates a definition that cannot describe the return type
	ErrIncompatibleDefinition ErrorCode = "VAL505"
	// ErrNatureMismatch indicates a relation nature that contradicts its return shape
	ErrNatureMismatch ErrorCode = "VAL506"
	// ErrInvalidLiteral indicates a literal that does not fit the field's kind
	ErrInvalidLiteral ErrorCode = "VAL507"
	// ErrInvalidSetting indicates an unknown, repeated or malformed setting
	ErrInvalidSetting ErrorCode = "VAL508"
	// ErrInvalidReturnType indicates a return type outside the supported set
	ErrInvalidReturnType ErrorCode = "VAL509"
)

// NewDefaultAndPreset creates a VAL500 error
func NewDefaultAndPreset(loc ast.SourceLocation, field string) *CompilerError {
	return newError(
		ErrDefaultAndPreset,
		"default_and_preset",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Field '%s' declares both a default and a preset", field),
		loc,
	).WithSuggestion("Keep either default(...) or preset(...)")
}

// NewSerialSettings creates a VAL501 error
func NewSerialSettings(loc ast.SourceLocation, field, missing string) *CompilerError {
	return newError(
		ErrSerialSettings,
		"serial_settings",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Field '%s' uses the Serial preset without %s", field, missing),
		loc,
	).WithExamples("@enumtrait::Num(preset(Serial), start(1), increment(1))")
}

// NewSettingsWithoutSerial creates a VAL502 error
func NewSettingsWithoutSerial(loc ast.SourceLocation, field string) *CompilerError {
	return newError(
		ErrSettingsWithoutSerial,
		"settings_without_serial",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Field '%s' sets start or increment without the Serial preset", field),
		loc,
	).WithSuggestion("Add preset(Serial) or remove start and increment")
}

// NewRelationSettings creates a VAL503 error
func NewRelationSettings(loc ast.SourceLocation, field, missing string) *CompilerError {
	return newError(
		ErrRelationSettings,
		"relation_settings",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Relation '%s' requires %s", field, missing),
		loc,
	).WithExamples("@enumtrait::Rel(nature(ManyToOne), dispatch(Dynamic))")
}

// NewStaticDispatch creates a VAL504 error
func NewStaticDispatch(loc ast.SourceLocation, field string) *CompilerError {
	return newError(
		ErrStaticDispatch,
		"static_dispatch",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Relation '%s' uses Static dispatch, which is not implemented", field),
		loc,
	).WithSuggestion("Use dispatch(Dynamic) with a dyn or iter dyn return type")
}

// NewIncompatibleDefinition creates a VAL505 error
func NewIncompatibleDefinition(loc ast.SourceLocation, field, definition, returnType string) *CompilerError {
	return newError(
		ErrIncompatibleDefinition,
		"incompatible_definition",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Definition %s cannot describe field '%s' returning %s", definition, field, returnType),
		loc,
	).WithActual(definition)
}

// NewNatureMismatch creates a VAL506 error
func NewNatureMismatch(loc ast.SourceLocation, field, reason string) *CompilerError {
	return newError(
		ErrNatureMismatch,
		"nature_mismatch",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Relation '%s': %s", field, reason),
		loc,
	).WithSuggestion("iter dyn returns OneToMany relations, dyn returns OneToOne or ManyToOne relations")
}

// NewInvalidLiteral creates a VAL507 error
func NewInvalidLiteral(loc ast.SourceLocation, field, reason string) *CompilerError {
	return newError(
		ErrInvalidLiteral,
		"invalid_literal",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Invalid value for '%s': %s", field, reason),
		loc,
	)
}

// NewInvalidSetting creates a VAL508 error
func NewInvalidSetting(loc ast.SourceLocation, field, reason string) *CompilerError {
	return newError(
		ErrInvalidSetting,
		"invalid_setting",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Invalid setting on '%s': %s", field, reason),
		loc,
	)
}

// NewInvalidReturnType creates a VAL509 error
func NewInvalidReturnType(loc ast.SourceLocation, field, returnType, reason string) *CompilerError {
	return newError(
		ErrInvalidReturnType,
		"invalid_return_type",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Field '%s' cannot return %s: %s", field, returnType, reason),
		loc,
	).WithExamples("name: str", "hand: RPS", "parent: dyn ParentType", "children: iter dyn ChildType")
}

// FromModelError turns a model error about field into a coded compiler error.
// The original error stays reachable through errors.Is.
func FromModelError(loc ast.SourceLocation, field string, err error) *CompilerError {
	var compiled *CompilerError
	switch {
	case stderrors.Is(err, model.ErrDefaultAndPreset):
		compiled = NewDefaultAndPreset(loc, field)
	case stderrors.Is(err, model.ErrSerialStart):
		compiled = NewSerialSettings(loc, field, "start")
	case stderrors.Is(err, model.ErrSerialIncrement):
		compiled = NewSerialSettings(loc, field, "increment")
	case stderrors.Is(err, model.ErrStartWithoutSerial):
		compiled = NewSettingsWithoutSerial(loc, field)
	case stderrors.Is(err, model.ErrMissingNature):
		compiled = NewRelationSettings(loc, field, "a nature")
	case stderrors.Is(err, model.ErrMissingDispatch):
		compiled = NewRelationSettings(loc, field, "a dispatch")
	case stderrors.Is(err, model.ErrStaticDispatch):
		compiled = NewStaticDispatch(loc, field)
	case stderrors.Is(err, model.ErrNatureMismatch):
		compiled = NewNatureMismatch(loc, field, err.Error())
	case stderrors.Is(err, model.ErrIncompatibleDefinition),
		stderrors.Is(err, model.ErrUnknownDefinition),
		stderrors.Is(err, model.ErrMissingIdentifier):
		compiled = newError(
			ErrIncompatibleDefinition,
			"incompatible_definition",
			CategoryValidation,
			SeverityError,
			fmt.Sprintf("Field '%s': %s", field, err),
			loc,
		)
	case stderrors.Is(err, model.ErrInvalidLiteral),
		stderrors.Is(err, model.ErrOutOfRange),
		stderrors.Is(err, model.ErrInvalidIdentifier):
		compiled = NewInvalidLiteral(loc, field, err.Error())
	default:
		compiled = NewInvalidSetting(loc, field, err.Error())
	}
	return compiled.WithCause(err)
}
