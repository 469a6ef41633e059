package model

import "errors"

// Definition and value errors. Callers wrap these with context; use errors.Is
// to classify them.
var (
	ErrInvalidIdentifier      = errors.New("invalid identifier")
	ErrUnknownDefinition      = errors.New("unknown attribute definition")
	ErrIncompatibleDefinition = errors.New("attribute definition does not match return type")
	ErrMissingIdentifier      = errors.New("attribute definition requires a type identifier")
	ErrUnknownSetting         = errors.New("unknown setting")
	ErrDuplicateSetting       = errors.New("setting declared more than once")
	ErrDefaultAndPreset       = errors.New("default and preset cannot both be set")
	ErrSerialStart            = errors.New("serial preset requires start")
	ErrSerialIncrement        = errors.New("serial preset requires increment")
	ErrStartWithoutSerial     = errors.New("start and increment require the serial preset")
	ErrMissingNature          = errors.New("relation requires a nature")
	ErrMissingDispatch        = errors.New("relation requires a dispatch")
	ErrStaticDispatch         = errors.New("static dispatch is not implemented")
	ErrNatureMismatch         = errors.New("relation nature does not match the declared return shape")
	ErrInvalidLiteral         = errors.New("invalid literal")
	ErrOutOfRange             = errors.New("value out of range")
	ErrUnknownPreset          = errors.New("unknown preset")
	ErrUnknownNature          = errors.New("unknown relation nature")
	ErrUnknownDispatch        = errors.New("unknown relation dispatch")
)
