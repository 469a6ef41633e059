package model

import "fmt"

// DefinitionKind selects the case of an AttributeDefinition.
type DefinitionKind uint8

const (
	DefBool DefinitionKind = iota + 1
	DefStr
	DefNum
	DefEnum
	DefRel
	DefType
)

var definitionNames = map[DefinitionKind]string{
	DefBool: "Bool",
	DefStr:  "Str",
	DefNum:  "Num",
	DefEnum: "Enum",
	DefRel:  "Rel",
	DefType: "Type",
}

func (k DefinitionKind) String() string {
	if name, ok := definitionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DefinitionKind(%d)", uint8(k))
}

// ParseDefinitionKind parses Bool, Str, Num, Enum, Rel or Type.
func ParseDefinitionKind(name string) (DefinitionKind, error) {
	for kind, kindName := range definitionNames {
		if kindName == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownDefinition, name)
}

// BoolDefinition configures a bool field.
type BoolDefinition struct {
	Default *bool `codec:"default,omitempty" json:"default,omitempty" yaml:"default,omitempty"`
}

// StringDefinition configures a string field.
type StringDefinition struct {
	Default *string       `codec:"default,omitempty" json:"default,omitempty" yaml:"default,omitempty"`
	Preset  *StringPreset `codec:"preset,omitempty" json:"preset,omitempty" yaml:"preset,omitempty"`
}

// NumberDefinition configures a numeric field of width Kind.
type NumberDefinition struct {
	Kind      ReturnKind    `codec:"kind" json:"kind" yaml:"kind"`
	Default   *Value        `codec:"default,omitempty" json:"default,omitempty" yaml:"default,omitempty"`
	Preset    *NumberPreset `codec:"preset,omitempty" json:"preset,omitempty" yaml:"preset,omitempty"`
	Start     *Value        `codec:"start,omitempty" json:"start,omitempty" yaml:"start,omitempty"`
	Increment *Value        `codec:"increment,omitempty" json:"increment,omitempty" yaml:"increment,omitempty"`
}

// EnumDefinition configures a field returning a fieldless enum.
type EnumDefinition struct {
	Identifier Identifier  `codec:"identifier" json:"identifier" yaml:"identifier"`
	Default    *Identifier `codec:"default,omitempty" json:"default,omitempty" yaml:"default,omitempty"`
}

// RelationDefinition configures a field referencing another schema. Identifier
// names the associated type slot the relation claims.
type RelationDefinition struct {
	Identifier Identifier      `codec:"identifier" json:"identifier" yaml:"identifier"`
	Nature     *RelationNature `codec:"nature,omitempty" json:"nature,omitempty" yaml:"nature,omitempty"`
	Dispatch   *Dispatch       `codec:"dispatch,omitempty" json:"dispatch,omitempty" yaml:"dispatch,omitempty"`
}

// TypeDefinition configures a field returning an opaque type.
type TypeDefinition struct {
	Identifier Identifier  `codec:"identifier" json:"identifier" yaml:"identifier"`
	Default    *Identifier `codec:"default,omitempty" json:"default,omitempty" yaml:"default,omitempty"`
}

// AttributeDefinition is a tagged union: exactly the pointer matching Kind is
// set.
type AttributeDefinition struct {
	Kind DefinitionKind      `codec:"kind" json:"kind" yaml:"kind"`
	Bool *BoolDefinition     `codec:"bool,omitempty" json:"bool,omitempty" yaml:"bool,omitempty"`
	Str  *StringDefinition   `codec:"str,omitempty" json:"str,omitempty" yaml:"str,omitempty"`
	Num  *NumberDefinition   `codec:"num,omitempty" json:"num,omitempty" yaml:"num,omitempty"`
	Enum *EnumDefinition     `codec:"enum,omitempty" json:"enum,omitempty" yaml:"enum,omitempty"`
	Rel  *RelationDefinition `codec:"rel,omitempty" json:"rel,omitempty" yaml:"rel,omitempty"`
	Type *TypeDefinition     `codec:"type,omitempty" json:"type,omitempty" yaml:"type,omitempty"`
}

// Partial builds an empty definition for a field. An empty definitionName
// infers the case from the return kind; otherwise the name must agree with
// it. Relations inferred from `dyn X` or `iter dyn X` are prefilled with the
// nature and dispatch that shape implies; an explicit Rel starts empty.
func Partial(definitionName string, kind ReturnKind, id *Identifier) (AttributeDefinition, error) {
	defKind, err := inferDefinitionKind(definitionName, kind)
	if err != nil {
		return AttributeDefinition{}, err
	}

	def := AttributeDefinition{Kind: defKind}
	switch defKind {
	case DefBool:
		def.Bool = &BoolDefinition{}
	case DefStr:
		def.Str = &StringDefinition{}
	case DefNum:
		def.Num = &NumberDefinition{Kind: kind}
	case DefEnum:
		if id == nil {
			return AttributeDefinition{}, fmt.Errorf("%w: Enum", ErrMissingIdentifier)
		}
		def.Enum = &EnumDefinition{Identifier: *id}
	case DefType:
		if id == nil {
			return AttributeDefinition{}, fmt.Errorf("%w: Type", ErrMissingIdentifier)
		}
		def.Type = &TypeDefinition{Identifier: *id}
	case DefRel:
		if id == nil {
			return AttributeDefinition{}, fmt.Errorf("%w: Rel", ErrMissingIdentifier)
		}
		def.Rel = &RelationDefinition{Identifier: *id}
		if definitionName == "" {
			def.Rel.Nature, def.Rel.Dispatch = impliedRelation(kind)
		}
	}
	return def, nil
}

func inferDefinitionKind(definitionName string, kind ReturnKind) (DefinitionKind, error) {
	var inferred DefinitionKind
	switch {
	case kind == ReturnBool:
		inferred = DefBool
	case kind == ReturnStr:
		inferred = DefStr
	case kind.IsNumeric():
		inferred = DefNum
	case kind == ReturnType:
		inferred = DefEnum
	case kind.IsRelation():
		inferred = DefRel
	default:
		return 0, fmt.Errorf("%w: unsupported return kind %s", ErrIncompatibleDefinition, kind)
	}

	if definitionName == "" {
		return inferred, nil
	}

	explicit, err := ParseDefinitionKind(definitionName)
	if err != nil {
		return 0, err
	}
	// A named type may be declared opaque instead of a fieldless enum.
	if explicit == inferred || (explicit == DefType && inferred == DefEnum) {
		return explicit, nil
	}
	return 0, fmt.Errorf("%w: %s cannot describe a field returning %s", ErrIncompatibleDefinition, explicit, kind)
}

func impliedRelation(kind ReturnKind) (*RelationNature, *Dispatch) {
	var nature RelationNature
	var dispatch Dispatch
	switch kind {
	case ReturnDynIter:
		nature, dispatch = OneToMany, Dynamic
	case ReturnAssoc:
		nature, dispatch = ManyToOne, Static
	default:
		nature, dispatch = ManyToOne, Dynamic
	}
	return &nature, &dispatch
}

// Validate enforces the per-case invariants.
func (d AttributeDefinition) Validate() error {
	switch d.Kind {
	case DefBool:
		if d.Bool == nil {
			return fmt.Errorf("%w: missing Bool settings", ErrUnknownDefinition)
		}
	case DefStr:
		if d.Str == nil {
			return fmt.Errorf("%w: missing Str settings", ErrUnknownDefinition)
		}
		if d.Str.Default != nil && d.Str.Preset != nil {
			return ErrDefaultAndPreset
		}
	case DefNum:
		return d.Num.validate()
	case DefEnum:
		if d.Enum == nil {
			return fmt.Errorf("%w: missing Enum settings", ErrUnknownDefinition)
		}
	case DefType:
		if d.Type == nil {
			return fmt.Errorf("%w: missing Type settings", ErrUnknownDefinition)
		}
	case DefRel:
		return d.Rel.validate()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDefinition, d.Kind)
	}
	return nil
}

func (n *NumberDefinition) validate() error {
	if n == nil {
		return fmt.Errorf("%w: missing Num settings", ErrUnknownDefinition)
	}
	if n.Default != nil && n.Preset != nil {
		return ErrDefaultAndPreset
	}
	if n.Preset != nil && *n.Preset == PresetSerial {
		if n.Start == nil {
			return ErrSerialStart
		}
		if n.Increment == nil {
			return ErrSerialIncrement
		}
		return nil
	}
	if n.Start != nil || n.Increment != nil {
		return ErrStartWithoutSerial
	}
	return nil
}

func (r *RelationDefinition) validate() error {
	if r == nil {
		return fmt.Errorf("%w: missing Rel settings", ErrUnknownDefinition)
	}
	if r.Nature == nil {
		return ErrMissingNature
	}
	if r.Dispatch == nil {
		return ErrMissingDispatch
	}
	if *r.Dispatch == Static {
		return ErrStaticDispatch
	}
	return nil
}

// IsRelation reports whether the definition is a Rel.
func (d AttributeDefinition) IsRelation() bool {
	return d.Kind == DefRel
}

// NeedsValue reports whether every record must hold a value for the field.
// Relations are resolved against relation targets instead.
func (d AttributeDefinition) NeedsValue() bool {
	return d.Kind != DefRel
}

// HasDefault reports whether a static default is declared.
func (d AttributeDefinition) HasDefault() bool {
	_, ok := d.Default()
	return ok
}

// Default returns the static default, if any.
func (d AttributeDefinition) Default() (Value, bool) {
	switch d.Kind {
	case DefBool:
		if d.Bool.Default != nil {
			return BoolValue(*d.Bool.Default), true
		}
	case DefStr:
		if d.Str.Default != nil {
			return StrValue(*d.Str.Default), true
		}
	case DefNum:
		if d.Num.Default != nil {
			return *d.Num.Default, true
		}
	case DefEnum:
		if d.Enum.Default != nil {
			return EnumVariantValue(*d.Enum.Default), true
		}
	case DefType:
		if d.Type.Default != nil {
			return TypeValue(*d.Type.Default), true
		}
	}
	return Value{}, false
}

// HasPreset reports whether a preset is declared.
func (d AttributeDefinition) HasPreset() bool {
	switch d.Kind {
	case DefStr:
		return d.Str.Preset != nil
	case DefNum:
		return d.Num.Preset != nil
	default:
		return false
	}
}

// Preset computes the preset value for the record named recordName at
// position ordinal.
func (d AttributeDefinition) Preset(recordName string, ordinal int) (Value, bool, error) {
	switch {
	case d.Kind == DefStr && d.Str.Preset != nil:
		return StrValue(d.Str.Preset.Apply(recordName)), true, nil
	case d.Kind == DefNum && d.Num.Preset != nil:
		var (
			v   Value
			err error
		)
		switch *d.Num.Preset {
		case PresetOrdinal:
			v, err = OrdinalValue(d.Num.Kind, ordinal)
		case PresetSerial:
			if d.Num.Start == nil || d.Num.Increment == nil {
				return Value{}, false, ErrSerialStart
			}
			v, err = SerialValue(d.Num.Kind, *d.Num.Start, *d.Num.Increment, ordinal)
		default:
			return Value{}, false, fmt.Errorf("%w: %s", ErrUnknownPreset, d.Num.Preset)
		}
		if err != nil {
			return Value{}, false, fmt.Errorf("%s preset for %s: %w", d.Num.Preset, recordName, err)
		}
		return v, true, nil
	default:
		return Value{}, false, nil
	}
}

// DefaultOrPreset tries the default first, then the preset. ok is false when
// neither applies and the record must supply the value itself.
func (d AttributeDefinition) DefaultOrPreset(recordName string, ordinal int) (value Value, source ValueSource, ok bool, err error) {
	if v, found := d.Default(); found {
		return v, SourceDefault, true, nil
	}
	v, found, err := d.Preset(recordName, ordinal)
	if err != nil || !found {
		return Value{}, 0, false, err
	}
	return v, SourcePreset, true, nil
}

// TargetIdentifier is the type identifier carried by Enum, Rel and Type
// definitions.
func (d AttributeDefinition) TargetIdentifier() (Identifier, bool) {
	switch d.Kind {
	case DefEnum:
		return d.Enum.Identifier, true
	case DefRel:
		return d.Rel.Identifier, true
	case DefType:
		return d.Type.Identifier, true
	default:
		return Identifier{}, false
	}
}
