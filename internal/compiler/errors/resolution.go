package errors

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
)

// Resolution error codes (RES300-399)
const (
	// ErrUnknownField indicates an override or relation target naming no schema field
	ErrUnknownField ErrorCode = "RES300"
	// ErrDuplicateOverride indicates the same field set twice on one record
	ErrDuplicateOverride ErrorCode = "RES301"
	// ErrDuplicateRelationTarget indicates the same relation targeted twice on one enum
	ErrDuplicateRelationTarget ErrorCode = "RES302"
	// ErrMissingValue indicates a record without a value for a field that needs one
	ErrMissingValue ErrorCode = "RES303"
	// ErrMissingRelationTarget indicates a relation field left without a target
	ErrMissingRelationTarget ErrorCode = "RES304"
	// ErrUnmatchedRelation indicates a relation field without an associated type slot
	ErrUnmatchedRelation ErrorCode = "RES305"
	// ErrUnmatchedSlot indicates an associated type slot no relation claims
	ErrUnmatchedSlot ErrorCode = "RES306"
	// ErrSchemaMismatch indicates an enum implementing a different schema than the model
	ErrSchemaMismatch ErrorCode = "RES307"
	// ErrPresetOverflow indicates a preset whose value does not fit the field
	ErrPresetOverflow ErrorCode = "RES308"
	// ErrNotARelation indicates an enumeration-level target on a non-relation field
	ErrNotARelation ErrorCode = "RES309"
	// ErrRecordRelation indicates a per-record value on a OneToMany relation
	ErrRecordRelation ErrorCode = "RES310"
	// ErrDuplicateRecord indicates a record name used twice in one enum
	ErrDuplicateRecord ErrorCode = "RES311"
	// ErrMissingSchema indicates an enum that does not declare its schema
	ErrMissingSchema ErrorCode = "RES312"
	// ErrEmptyInstance indicates an enum without records
	ErrEmptyInstance ErrorCode = "RES313"
	// ErrModelNotFound indicates a schema whose model is not available
	ErrModelNotFound ErrorCode = "RES314"
	// ErrUnreadableModel indicates a model artifact that fails to decode
	ErrUnreadableModel ErrorCode = "RES315"
)

// NewUnknownField creates a RES300 error
func NewUnknownField(loc ast.SourceLocation, field, schema string) *CompilerError {
	return newError(
		ErrUnknownField,
		"unknown_field",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Schema %s has no field '%s'", schema, field),
		loc,
	).WithActual(field)
}

// NewDuplicateOverride creates a RES301 error
func NewDuplicateOverride(loc ast.SourceLocation, field, record string) *CompilerError {
	return newError(
		ErrDuplicateOverride,
		"duplicate_override",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Field '%s' is set more than once on record '%s'", field, record),
		loc,
	).WithSuggestion("Remove the repeated setting")
}

// NewDuplicateRelationTarget creates a RES302 error
func NewDuplicateRelationTarget(loc ast.SourceLocation, field, enum string) *CompilerError {
	return newError(
		ErrDuplicateRelationTarget,
		"duplicate_relation_target",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Relation '%s' is targeted more than once on enum '%s'", field, enum),
		loc,
	).WithSuggestion("Each relation takes exactly one target")
}

// NewMissingValue creates a RES303 error
func NewMissingValue(loc ast.SourceLocation, field, record string) *CompilerError {
	return newError(
		ErrMissingValue,
		"missing_value",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Record '%s' has no value for field '%s'", record, field),
		loc,
	).WithSuggestion(fmt.Sprintf("Set it on the record or declare a default or preset for '%s'", field)).
		WithExamples(fmt.Sprintf("@traitenum(%s(...))", field))
}

// NewMissingRelationTarget creates a RES304 error
func NewMissingRelationTarget(loc ast.SourceLocation, field, enum string) *CompilerError {
	return newError(
		ErrMissingRelationTarget,
		"missing_relation_target",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Relation '%s' has no target on enum '%s'", field, enum),
		loc,
	).WithSuggestion("Declare the target above the enum").
		WithExamples(fmt.Sprintf("@traitenum(%s(OtherEnum))", field))
}

// NewUnmatchedRelation creates a RES305 error
func NewUnmatchedRelation(loc ast.SourceLocation, field, slot string) *CompilerError {
	return newError(
		ErrUnmatchedRelation,
		"unmatched_relation",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Relation '%s' refers to associated type '%s', which is not declared", field, slot),
		loc,
	).WithExamples(fmt.Sprintf("type %s: package::OtherSchema", slot))
}

// NewUnmatchedSlot creates a RES306 error
func NewUnmatchedSlot(loc ast.SourceLocation, slot string) *CompilerError {
	return newError(
		ErrUnmatchedSlot,
		"unmatched_slot",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Associated type '%s' is not used by any relation", slot),
		loc,
	).WithSuggestion("Add a dyn or iter dyn field returning it, or remove the declaration")
}

// NewSchemaMismatch creates a RES307 error
func NewSchemaMismatch(loc ast.SourceLocation, declared, model string) *CompilerError {
	return newError(
		ErrSchemaMismatch,
		"schema_mismatch",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Enum implements %s but the model describes %s", declared, model),
		loc,
	).WithExpected(model).WithActual(declared)
}

// NewPresetOverflow creates a RES308 error
func NewPresetOverflow(loc ast.SourceLocation, field, record, reason string) *CompilerError {
	return newError(
		ErrPresetOverflow,
		"preset_overflow",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Preset for '%s' on record '%s' overflows: %s", field, record, reason),
		loc,
	).WithSuggestion("Use a wider number type or a smaller start or increment")
}

// NewNotARelation creates a RES309 error
func NewNotARelation(loc ast.SourceLocation, field string) *CompilerError {
	return newError(
		ErrNotARelation,
		"not_a_relation",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Field '%s' is not a relation and cannot take an enum-level target", field),
		loc,
	).WithSuggestion("Set scalar fields on each record instead")
}

// NewRecordRelation creates a RES310 error
func NewRecordRelation(loc ast.SourceLocation, field, record string) *CompilerError {
	return newError(
		ErrRecordRelation,
		"record_relation",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("OneToMany relation '%s' cannot be set on record '%s'", field, record),
		loc,
	).WithSuggestion("Declare the target once above the enum")
}

// NewDuplicateRecord creates a RES311 error
func NewDuplicateRecord(loc ast.SourceLocation, record, enum string) *CompilerError {
	return newError(
		ErrDuplicateRecord,
		"duplicate_record",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Record '%s' is declared more than once in enum '%s'", record, enum),
		loc,
	)
}

// NewMissingSchema creates a RES312 error
func NewMissingSchema(loc ast.SourceLocation, enum string) *CompilerError {
	return newError(
		ErrMissingSchema,
		"missing_schema",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Enum '%s' does not declare the schema it implements", enum),
		loc,
	).WithExamples(fmt.Sprintf("enum %s: package::Schema { ... }", enum))
}

// NewEmptyInstance creates a RES313 warning
func NewEmptyInstance(loc ast.SourceLocation, enum string) *CompilerError {
	return newError(
		ErrEmptyInstance,
		"empty_instance",
		CategoryResolution,
		SeverityWarning,
		fmt.Sprintf("Enum '%s' has no records", enum),
		loc,
	)
}

// NewModelNotFound creates a RES314 error
func NewModelNotFound(loc ast.SourceLocation, schema string) *CompilerError {
	return newError(
		ErrModelNotFound,
		"model_not_found",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("No model found for schema %s", schema),
		loc,
	).WithSuggestion("Compile the schema first with 'traitenum schema' or run 'traitenum build'")
}

// NewUnreadableModel creates a RES315 error
func NewUnreadableModel(loc ast.SourceLocation, schema string, cause error) *CompilerError {
	return newError(
		ErrUnreadableModel,
		"unreadable_model",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Model for schema %s cannot be read: %v", schema, cause),
		loc,
	).WithCause(cause).
		WithSuggestion("Recompile the schema to refresh its model")
}
