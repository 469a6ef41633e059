package model

import (
	"fmt"

	strutil "github.com/traitenum/traitenum/internal/util/strings"
)

// StringPreset derives a string field from the record's own name.
type StringPreset uint8

const (
	PresetUnmodified StringPreset = iota + 1
	PresetSnake
	PresetUpperSnake
	PresetKebab
	PresetUpperKebab
	PresetCamel
	PresetTitle
	PresetUpper
	PresetLower
	PresetFlat
	PresetUpperFlat
	PresetTrain
)

var stringPresetNames = map[StringPreset]string{
	PresetUnmodified: "unmodified",
	PresetSnake:      "snake",
	PresetUpperSnake: "upper_snake",
	PresetKebab:      "kebab",
	PresetUpperKebab: "upper_kebab",
	PresetCamel:      "camel",
	PresetTitle:      "title",
	PresetUpper:      "upper",
	PresetLower:      "lower",
	PresetFlat:       "flat",
	PresetUpperFlat:  "upper_flat",
	PresetTrain:      "train",
}

var stringPresetConversions = map[StringPreset]func(string) string{
	PresetUnmodified: func(s string) string { return s },
	PresetSnake:      strutil.ToSnakeCase,
	PresetUpperSnake: strutil.ToUpperSnakeCase,
	PresetKebab:      strutil.ToKebabCase,
	PresetUpperKebab: strutil.ToUpperKebabCase,
	PresetCamel:      strutil.ToCamelCase,
	PresetTitle:      strutil.ToTitleCase,
	PresetUpper:      strutil.ToUpper,
	PresetLower:      strutil.ToLower,
	PresetFlat:       strutil.ToFlatCase,
	PresetUpperFlat:  strutil.ToUpperFlatCase,
	PresetTrain:      strutil.ToTrainCase,
}

func (p StringPreset) String() string {
	if name, ok := stringPresetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("StringPreset(%d)", uint8(p))
}

// Apply converts a record name.
func (p StringPreset) Apply(recordName string) string {
	if convert, ok := stringPresetConversions[p]; ok {
		return convert(recordName)
	}
	return recordName
}

// ParseStringPreset accepts the forms preset(Variant), preset(Variant, snake)
// and the shorthand preset(UpperSnake). Names are matched in any case style.
func ParseStringPreset(args ...string) (StringPreset, error) {
	switch len(args) {
	case 1:
		if strutil.ToSnakeCase(args[0]) == "variant" {
			return PresetUnmodified, nil
		}
		return lookupStringPreset(args[0])
	case 2:
		if strutil.ToSnakeCase(args[0]) != "variant" {
			return 0, fmt.Errorf("%w: %s", ErrUnknownPreset, args[0])
		}
		return lookupStringPreset(args[1])
	default:
		return 0, fmt.Errorf("%w: expected preset(Variant[, conversion])", ErrUnknownPreset)
	}
}

func lookupStringPreset(name string) (StringPreset, error) {
	normalized := strutil.ToSnakeCase(name)
	for preset, presetName := range stringPresetNames {
		if presetName == normalized {
			return preset, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

// NumberPreset derives a number field from the record's position.
type NumberPreset uint8

const (
	// PresetOrdinal is the zero-based record position.
	PresetOrdinal NumberPreset = iota + 1
	// PresetSerial is start + position*increment.
	PresetSerial
)

func (p NumberPreset) String() string {
	switch p {
	case PresetOrdinal:
		return "Ordinal"
	case PresetSerial:
		return "Serial"
	default:
		return fmt.Sprintf("NumberPreset(%d)", uint8(p))
	}
}

// ParseNumberPreset parses Ordinal or Serial.
func ParseNumberPreset(name string) (NumberPreset, error) {
	switch name {
	case "Ordinal":
		return PresetOrdinal, nil
	case "Serial":
		return PresetSerial, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
}
