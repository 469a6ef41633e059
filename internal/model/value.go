package model

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ValueKind tags the case held by a Value.
type ValueKind uint8

const (
	ValueBool ValueKind = iota + 1
	ValueStr
	ValueNumber
	ValueEnumVariant
	ValueRelation
	ValueType
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueStr:
		return "str"
	case ValueNumber:
		return "number"
	case ValueEnumVariant:
		return "enum variant"
	case ValueRelation:
		return "relation"
	case ValueType:
		return "type"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is a resolved field value. Numbers carry their declared width in
// Number and keep their payload in the matching 64-bit slot: Int for signed
// kinds, Uint for unsigned kinds and Float for float kinds.
type Value struct {
	Kind   ValueKind   `codec:"kind" json:"kind" yaml:"kind"`
	Number ReturnKind  `codec:"number,omitempty" json:"number,omitempty" yaml:"number,omitempty"`
	Bool   bool        `codec:"bool,omitempty" json:"bool,omitempty" yaml:"bool,omitempty"`
	Int    int64       `codec:"int,omitempty" json:"int,omitempty" yaml:"int,omitempty"`
	Uint   uint64      `codec:"uint,omitempty" json:"uint,omitempty" yaml:"uint,omitempty"`
	Float  float64     `codec:"float,omitempty" json:"float,omitempty" yaml:"float,omitempty"`
	Str    string      `codec:"str,omitempty" json:"str,omitempty" yaml:"str,omitempty"`
	ID     *Identifier `codec:"id,omitempty" json:"id,omitempty" yaml:"id,omitempty"`
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

// StrValue wraps a string.
func StrValue(s string) Value {
	return Value{Kind: ValueStr, Str: s}
}

// EnumVariantValue references a variant of a fieldless enum.
func EnumVariantValue(id Identifier) Value {
	return Value{Kind: ValueEnumVariant, ID: &id}
}

// RelationValue references a record of another instance.
func RelationValue(id Identifier) Value {
	return Value{Kind: ValueRelation, ID: &id}
}

// TypeValue references a value of an opaque type.
func TypeValue(id Identifier) Value {
	return Value{Kind: ValueType, ID: &id}
}

// Equal compares two values case by case.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind || v.Number != other.Number {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == other.Bool
	case ValueStr:
		return v.Str == other.Str
	case ValueNumber:
		return v.Int == other.Int && v.Uint == other.Uint && v.Float == other.Float
	case ValueEnumVariant, ValueRelation, ValueType:
		if v.ID == nil || other.ID == nil {
			return v.ID == other.ID
		}
		return v.ID.Equal(*other.ID)
	default:
		return true
	}
}

// String renders the value the way it would be written in a declaration.
func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueStr:
		return strconv.Quote(v.Str)
	case ValueNumber:
		switch {
		case v.Number.IsFloat():
			return strconv.FormatFloat(v.Float, 'g', -1, v.Number.BitSize())
		case v.Number.IsSigned():
			return strconv.FormatInt(v.Int, 10)
		default:
			return strconv.FormatUint(v.Uint, 10)
		}
	case ValueEnumVariant, ValueRelation, ValueType:
		if v.ID == nil {
			return ""
		}
		return v.ID.String()
	default:
		return ""
	}
}

// ParseNumber parses a numeric literal for the given kind, rejecting values
// that do not fit its width or signedness.
func ParseNumber(kind ReturnKind, text string) (Value, error) {
	value := Value{Kind: ValueNumber, Number: kind}
	switch {
	case kind.IsFloat():
		f, err := strconv.ParseFloat(text, kind.BitSize())
		if err != nil {
			return Value{}, numberError(kind, text, err)
		}
		value.Float = f
	case kind.IsSigned():
		i, err := strconv.ParseInt(text, 10, kind.BitSize())
		if err != nil {
			return Value{}, numberError(kind, text, err)
		}
		value.Int = i
	case kind.IsUnsigned():
		u, err := strconv.ParseUint(text, 10, kind.BitSize())
		if err != nil {
			return Value{}, numberError(kind, text, err)
		}
		value.Uint = u
	default:
		return Value{}, fmt.Errorf("%w: %s is not a numeric kind", ErrInvalidLiteral, kind)
	}
	return value, nil
}

func numberError(kind ReturnKind, text string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, text, kind)
	}
	return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidLiteral, text, kind)
}

// OrdinalValue is the zero-based position of a record as a number of kind.
func OrdinalValue(kind ReturnKind, ordinal int) (Value, error) {
	return numberFromBig(kind, big.NewInt(int64(ordinal)), float64(ordinal))
}

// SerialValue computes start + ordinal*increment in the width of kind.
func SerialValue(kind ReturnKind, start, increment Value, ordinal int) (Value, error) {
	if kind.IsFloat() {
		f := start.Float + float64(ordinal)*increment.Float
		return numberFromBig(kind, nil, f)
	}
	result := new(big.Int).Mul(increment.bigInt(), big.NewInt(int64(ordinal)))
	result.Add(result, start.bigInt())
	return numberFromBig(kind, result, 0)
}

func (v Value) bigInt() *big.Int {
	if v.Number.IsSigned() {
		return big.NewInt(v.Int)
	}
	return new(big.Int).SetUint64(v.Uint)
}

func numberFromBig(kind ReturnKind, i *big.Int, f float64) (Value, error) {
	value := Value{Kind: ValueNumber, Number: kind}
	switch {
	case kind.IsFloat():
		if kind == ReturnF32 {
			if math.Abs(f) > math.MaxFloat32 {
				return Value{}, fmt.Errorf("%w: %g does not fit %s", ErrOutOfRange, f, kind)
			}
			f = float64(float32(f))
		}
		value.Float = f
	case kind.IsSigned():
		bits := uint(kind.BitSize())
		lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))
		if i.Cmp(lo) < 0 || i.Cmp(hi) > 0 {
			return Value{}, fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, i, kind)
		}
		value.Int = i.Int64()
	case kind.IsUnsigned():
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(kind.BitSize())), big.NewInt(1))
		if i.Sign() < 0 || i.Cmp(hi) > 0 {
			return Value{}, fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, i, kind)
		}
		value.Uint = i.Uint64()
	default:
		return Value{}, fmt.Errorf("%w: %s is not a numeric kind", ErrInvalidLiteral, kind)
	}
	return value, nil
}

// ValueSource records where a resolved value came from.
type ValueSource uint8

const (
	SourceExplicit ValueSource = iota + 1
	SourceDefault
	SourcePreset
	SourceRelation
)

func (s ValueSource) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceDefault:
		return "default"
	case SourcePreset:
		return "preset"
	case SourceRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// AttributeValue is a value held by a record, tagged with its source.
type AttributeValue struct {
	Value  Value       `codec:"value" json:"value" yaml:"value"`
	Source ValueSource `codec:"source" json:"source" yaml:"source"`
}
