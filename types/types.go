// Package types defines the engine schema model: a struct-rooted tree of
// nested fields where every field, list element and map key/value carries a
// globally unique integer id.
//
// Schemas are immutable after construction and safe to share between
// goroutines.
package types

import (
	"fmt"
	"strings"
)

// Kind identifies the category of an engine type.
type Kind int

const (
	KindBoolean Kind = iota
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindDecimal
	KindDate
	KindTime
	KindTimestamp
	KindString
	KindUUID
	KindFixed
	KindBinary
	KindStruct
	KindList
	KindMap
)

var kindNames = [...]string{
	KindBoolean:   "boolean",
	KindInt:       "int",
	KindLong:      "long",
	KindFloat:     "float",
	KindDouble:    "double",
	KindDecimal:   "decimal",
	KindDate:      "date",
	KindTime:      "time",
	KindTimestamp: "timestamp",
	KindString:    "string",
	KindUUID:      "uuid",
	KindFixed:     "fixed",
	KindBinary:    "binary",
	KindStruct:    "struct",
	KindList:      "list",
	KindMap:       "map",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Type is an engine type. The textual form returned by String is stable and
// is part of the schema's printed representation.
type Type interface {
	Kind() Kind
	String() string
}

// IsPrimitive reports whether t is not a struct, list or map.
func IsPrimitive(t Type) bool {
	switch t.Kind() {
	case KindStruct, KindList, KindMap:
		return false
	}
	return true
}

// PrimitiveType is a parameterless primitive.
type PrimitiveType struct {
	kind Kind
}

func (p PrimitiveType) Kind() Kind     { return p.kind }
func (p PrimitiveType) String() string { return p.kind.String() }

// Parameterless primitive singletons.
var (
	Boolean Type = PrimitiveType{KindBoolean}
	Int     Type = PrimitiveType{KindInt}
	Long    Type = PrimitiveType{KindLong}
	Float   Type = PrimitiveType{KindFloat}
	Double  Type = PrimitiveType{KindDouble}
	Date    Type = PrimitiveType{KindDate}
	Time    Type = PrimitiveType{KindTime}
	String  Type = PrimitiveType{KindString}
	UUID    Type = PrimitiveType{KindUUID}
	Binary  Type = PrimitiveType{KindBinary}
)

// DecimalType is a fixed-point decimal with declared precision and scale.
type DecimalType struct {
	Precision int
	Scale     int
}

func (d DecimalType) Kind() Kind { return KindDecimal }
func (d DecimalType) String() string {
	return fmt.Sprintf("decimal(%d, %d)", d.Precision, d.Scale)
}

// Decimal returns a decimal type.
func Decimal(precision, scale int) DecimalType {
	return DecimalType{Precision: precision, Scale: scale}
}

// FixedType is a fixed-length byte array.
type FixedType struct {
	Length int
}

func (f FixedType) Kind() Kind     { return KindFixed }
func (f FixedType) String() string { return fmt.Sprintf("fixed[%d]", f.Length) }

// Fixed returns a fixed type of the given length.
func Fixed(length int) FixedType {
	return FixedType{Length: length}
}

// TimestampType is a microsecond timestamp, with or without zone adjustment.
type TimestampType struct {
	WithZone bool
}

func (t TimestampType) Kind() Kind { return KindTimestamp }
func (t TimestampType) String() string {
	if t.WithZone {
		return "timestamptz"
	}
	return "timestamp"
}

var (
	TimestampTz Type = TimestampType{WithZone: true}
	Timestamp   Type = TimestampType{WithZone: false}
)

// NestedField is a named, id-bearing member of a struct.
type NestedField struct {
	ID       int
	Name     string
	Required bool
	Type     Type
	Doc      string
}

// RequiredField builds a required field.
func RequiredField(id int, name string, t Type) NestedField {
	return NestedField{ID: id, Name: name, Required: true, Type: t}
}

// OptionalField builds an optional field.
func OptionalField(id int, name string, t Type) NestedField {
	return NestedField{ID: id, Name: name, Type: t}
}

func (f NestedField) String() string {
	req := "optional"
	if f.Required {
		req = "required"
	}
	s := fmt.Sprintf("%d: %s: %s %s", f.ID, f.Name, req, f.Type)
	if f.Doc != "" {
		s += " (" + f.Doc + ")"
	}
	return s
}

// StructType is an ordered list of fields.
type StructType struct {
	Fields []NestedField
}

func (s *StructType) Kind() Kind { return KindStruct }
func (s *StructType) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return "struct<" + strings.Join(parts, ", ") + ">"
}

// Field returns the field with the given name, or nil.
func (s *StructType) Field(name string) *NestedField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// StructOf builds a struct type from fields.
func StructOf(fields ...NestedField) *StructType {
	return &StructType{Fields: fields}
}

// ListType is a sequence of elements of one type.
type ListType struct {
	ElementID       int
	ElementRequired bool
	Element         Type
}

func (l *ListType) Kind() Kind     { return KindList }
func (l *ListType) String() string { return "list<" + l.Element.String() + ">" }

// MapType maps keys to values. Keys are always required.
type MapType struct {
	KeyID         int
	Key           Type
	ValueID       int
	ValueRequired bool
	Value         Type
}

func (m *MapType) Kind() Kind { return KindMap }
func (m *MapType) String() string {
	return "map<" + m.Key.String() + ", " + m.Value.String() + ">"
}

// Schema is the root of an engine schema tree.
type Schema struct {
	root *StructType
}

// NewSchema builds a schema from top-level fields.
func NewSchema(fields ...NestedField) *Schema {
	return &Schema{root: &StructType{Fields: fields}}
}

// SchemaOf wraps an existing struct type as a schema root.
func SchemaOf(st *StructType) *Schema {
	return &Schema{root: st}
}

// AsStruct returns the root struct type.
func (s *Schema) AsStruct() *StructType { return s.root }

// Fields returns the top-level fields.
func (s *Schema) Fields() []NestedField { return s.root.Fields }

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString("table {\n")
	for i, f := range s.root.Fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(f.String())
	}
	b.WriteString("\n}")
	return b.String()
}
