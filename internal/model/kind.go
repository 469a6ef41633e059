package model

import "fmt"

// ReturnKind is the declared return shape of a schema field.
type ReturnKind uint8

const (
	ReturnUnknown ReturnKind = iota
	ReturnBool
	ReturnStr
	ReturnUsize
	ReturnU64
	ReturnI64
	ReturnF64
	ReturnU32
	ReturnI32
	ReturnF32
	ReturnU8
	// ReturnType is a named type: a fieldless enum or an opaque type.
	ReturnType
	// ReturnDyn is `dyn X`, a handle to one record of another schema.
	ReturnDyn
	// ReturnDynIter is `iter dyn X`, an iterator over another instance.
	ReturnDynIter
	// ReturnAssoc is `Self::X`, a statically dispatched associated type.
	ReturnAssoc
)

var returnKindNames = map[ReturnKind]string{
	ReturnUnknown: "unknown",
	ReturnBool:    "bool",
	ReturnStr:     "str",
	ReturnUsize:   "usize",
	ReturnU64:     "u64",
	ReturnI64:     "i64",
	ReturnF64:     "f64",
	ReturnU32:     "u32",
	ReturnI32:     "i32",
	ReturnF32:     "f32",
	ReturnU8:      "u8",
	ReturnType:    "type",
	ReturnDyn:     "dyn",
	ReturnDynIter: "iter dyn",
	ReturnAssoc:   "Self::",
}

var primitiveKinds = map[string]ReturnKind{
	"bool":  ReturnBool,
	"str":   ReturnStr,
	"usize": ReturnUsize,
	"u64":   ReturnU64,
	"i64":   ReturnI64,
	"f64":   ReturnF64,
	"u32":   ReturnU32,
	"i32":   ReturnI32,
	"f32":   ReturnF32,
	"u8":    ReturnU8,
}

// PrimitiveKind maps a primitive type name (bool, str, u32, ...) to its kind.
func PrimitiveKind(name string) (ReturnKind, bool) {
	kind, ok := primitiveKinds[name]
	return kind, ok
}

func (k ReturnKind) String() string {
	if name, ok := returnKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ReturnKind(%d)", uint8(k))
}

// IsNumeric reports whether k is one of the integer or float kinds.
func (k ReturnKind) IsNumeric() bool {
	return k >= ReturnUsize && k <= ReturnU8
}

// IsFloat reports whether k is f32 or f64.
func (k ReturnKind) IsFloat() bool {
	return k == ReturnF32 || k == ReturnF64
}

// IsSigned reports whether k is a signed integer kind.
func (k ReturnKind) IsSigned() bool {
	return k == ReturnI64 || k == ReturnI32
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k ReturnKind) IsUnsigned() bool {
	return k == ReturnUsize || k == ReturnU64 || k == ReturnU32 || k == ReturnU8
}

// IsRelation reports whether k references records of another schema.
func (k ReturnKind) IsRelation() bool {
	return k == ReturnDyn || k == ReturnDynIter || k == ReturnAssoc
}

// BitSize is the width of a numeric kind, 0 otherwise.
func (k ReturnKind) BitSize() int {
	switch k {
	case ReturnUsize, ReturnU64, ReturnI64, ReturnF64:
		return 64
	case ReturnU32, ReturnI32, ReturnF32:
		return 32
	case ReturnU8:
		return 8
	default:
		return 0
	}
}

// GoType is the Go type generated for a primitive kind.
func (k ReturnKind) GoType() string {
	switch k {
	case ReturnBool:
		return "bool"
	case ReturnStr:
		return "string"
	case ReturnUsize:
		return "uint"
	case ReturnU64:
		return "uint64"
	case ReturnI64:
		return "int64"
	case ReturnF64:
		return "float64"
	case ReturnU32:
		return "uint32"
	case ReturnI32:
		return "int32"
	case ReturnF32:
		return "float32"
	case ReturnU8:
		return "uint8"
	default:
		return ""
	}
}

// RelationNature is the cardinality of a relation field.
type RelationNature uint8

const (
	OneToOne RelationNature = iota + 1
	OneToMany
	ManyToOne
)

var natureNames = map[RelationNature]string{
	OneToOne:  "OneToOne",
	OneToMany: "OneToMany",
	ManyToOne: "ManyToOne",
}

func (n RelationNature) String() string {
	if name, ok := natureNames[n]; ok {
		return name
	}
	return fmt.Sprintf("RelationNature(%d)", uint8(n))
}

// ParseRelationNature parses OneToOne, OneToMany or ManyToOne.
func ParseRelationNature(s string) (RelationNature, error) {
	for nature, name := range natureNames {
		if name == s {
			return nature, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNature, s)
}

// Dispatch is the resolution strategy of a relation field.
type Dispatch uint8

const (
	// Static resolves through a compile-time associated type.
	Static Dispatch = iota + 1
	// Dynamic resolves through an interface handle.
	Dynamic
)

func (d Dispatch) String() string {
	switch d {
	case Static:
		return "Static"
	case Dynamic:
		return "Dynamic"
	default:
		return fmt.Sprintf("Dispatch(%d)", uint8(d))
	}
}

// ParseDispatch parses Static or Dynamic.
func ParseDispatch(s string) (Dispatch, error) {
	switch s {
	case "Static":
		return Static, nil
	case "Dynamic":
		return Dynamic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDispatch, s)
	}
}
