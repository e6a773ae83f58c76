// Package avro reconciles Avro schemas with the engine schema model.
//
// An Avro schema is represented as a closed set of Node variants: Primitive,
// Record, Array, Map, Union, Fixed and Enum. ToSchema walks such a tree
// depth-first and assigns every field, list element and map key/value a
// fresh id in preorder, starting at 0. Unions with a single non-null branch
// collapse into that branch; unions with several branches become a struct of
// a required "tag" followed by one optional "fieldN" per branch.
//
// Parse and FromAvro build a Node tree from Avro schema text or from a schema
// already parsed by github.com/hamba/avro/v2.
package avro

// Node is one position in an Avro schema tree.
type Node interface {
	avroNode()
}

// PrimitiveKind enumerates the Avro primitive types.
type PrimitiveKind int

const (
	Null PrimitiveKind = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
)

var primitiveNames = [...]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Bytes:   "bytes",
	String:  "string",
}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[k]
}

// Logical type names understood by the type mapper.
const (
	LogicalDecimal              = "decimal"
	LogicalUUID                 = "uuid"
	LogicalDate                 = "date"
	LogicalTimeMillis           = "time-millis"
	LogicalTimeMicros           = "time-micros"
	LogicalTimestampMillis      = "timestamp-millis"
	LogicalTimestampMicros      = "timestamp-micros"
	LogicalLocalTimestampMillis = "local-timestamp-millis"
	LogicalLocalTimestampMicros = "local-timestamp-micros"
	LogicalDuration             = "duration"
)

// AdjustToUTCProp marks a timestamp as zone-adjusted (true) or local (false),
// overriding what the logical type name implies.
const AdjustToUTCProp = "adjust-to-utc"

// Logical annotates a primitive or fixed node with a logical type.
type Logical struct {
	Name      string
	Precision int
	Scale     int
}

// Primitive is an Avro primitive, optionally carrying a logical type.
type Primitive struct {
	Kind    PrimitiveKind
	Logical *Logical
	Props   map[string]any
}

// Record is a named record with ordered fields.
type Record struct {
	Name   string
	Doc    string
	Fields []Field
}

// Field is one record member.
type Field struct {
	Name       string
	Doc        string
	Type       Node
	HasDefault bool
	Default    any
}

// Array is a sequence of Items.
type Array struct {
	Items Node
}

// Map has string keys and Values.
type Map struct {
	Values Node
}

// Union is an ordered list of member types.
type Union struct {
	Members []Node
}

// Fixed is a named fixed-size byte array.
type Fixed struct {
	Name    string
	Size    int
	Logical *Logical
}

// Enum is a named set of symbols.
type Enum struct {
	Name    string
	Symbols []string
}

func (Primitive) avroNode() {}
func (Record) avroNode()    {}
func (Array) avroNode()     {}
func (Map) avroNode()       {}
func (Union) avroNode()     {}
func (Fixed) avroNode()     {}
func (Enum) avroNode()      {}

// Prim returns a primitive node without a logical type.
func Prim(kind PrimitiveKind) Primitive {
	return Primitive{Kind: kind}
}

// WithLogical returns a primitive node annotated with a logical type.
func WithLogical(kind PrimitiveKind, name string) Primitive {
	return Primitive{Kind: kind, Logical: &Logical{Name: name}}
}

// DecimalBytes returns a bytes node with a decimal logical type.
func DecimalBytes(precision, scale int) Primitive {
	return Primitive{Kind: Bytes, Logical: &Logical{Name: LogicalDecimal, Precision: precision, Scale: scale}}
}

// UnionOf returns a union of the given members.
func UnionOf(members ...Node) Union {
	return Union{Members: members}
}

// Optional returns the union ["null", n].
func Optional(n Node) Union {
	return Union{Members: []Node{Prim(Null), n}}
}

// RecordOf returns a record with the given fields.
func RecordOf(name string, fields ...Field) Record {
	return Record{Name: name, Fields: fields}
}

// FieldOf returns a record field without a default.
func FieldOf(name string, t Node) Field {
	return Field{Name: name, Type: t}
}

// IsNull reports whether n is the null marker.
func IsNull(n Node) bool {
	p, ok := n.(Primitive)
	return ok && p.Kind == Null
}
