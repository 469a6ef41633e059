package model

// Instance is a resolved traitenum: an ordered record set implementing a
// schema.
type Instance struct {
	Identifier Identifier `json:"identifier" yaml:"identifier"`
	Schema     Identifier `json:"schema" yaml:"schema"`
	Variants   []Variant  `json:"variants" yaml:"variants"`
	// Relations holds the enumeration-level relation targets by field name.
	Relations map[string]Identifier `json:"relations" yaml:"relations"`
}

// Variant is one record. Values holds every non-relation field, plus
// per-record relation targets when declared.
type Variant struct {
	Name   string                    `json:"name" yaml:"name"`
	Values map[string]AttributeValue `json:"values" yaml:"values"`
}

// NewInstance builds an empty instance.
func NewInstance(id, schema Identifier) *Instance {
	return &Instance{
		Identifier: id,
		Schema:     schema,
		Variants:   make([]Variant, 0),
		Relations:  make(map[string]Identifier),
	}
}

// NewVariant builds an empty record.
func NewVariant(name string) Variant {
	return Variant{Name: name, Values: make(map[string]AttributeValue)}
}

// Value looks up the value held for field.
func (v Variant) Value(field string) (AttributeValue, bool) {
	value, ok := v.Values[field]
	return value, ok
}

// Variant returns the record named name.
func (i *Instance) Variant(name string) (*Variant, bool) {
	for idx := range i.Variants {
		if i.Variants[idx].Name == name {
			return &i.Variants[idx], true
		}
	}
	return nil, false
}

// Relation returns the enumeration-level target declared for field.
func (i *Instance) Relation(field string) (Identifier, bool) {
	id, ok := i.Relations[field]
	return id, ok
}
