package types

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func sampleSchema() *Schema {
	return NewSchema(
		RequiredField(0, "id", Long),
		OptionalField(1, "data", String),
		RequiredField(2, "point", StructOf(
			RequiredField(3, "x", Double),
			RequiredField(4, "y", Double),
		)),
		OptionalField(5, "tags", &ListType{ElementID: 6, ElementRequired: true, Element: String}),
		OptionalField(7, "props", &MapType{KeyID: 8, Key: String, ValueID: 9, Value: Decimal(9, 2)}),
		RequiredField(10, "ts", TimestampTz),
	)
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"boolean", Boolean, "boolean"},
		{"int", Int, "int"},
		{"long", Long, "long"},
		{"float", Float, "float"},
		{"double", Double, "double"},
		{"date", Date, "date"},
		{"time", Time, "time"},
		{"timestamp", Timestamp, "timestamp"},
		{"timestamptz", TimestampTz, "timestamptz"},
		{"string", String, "string"},
		{"uuid", UUID, "uuid"},
		{"binary", Binary, "binary"},
		{"decimal", Decimal(10, 3), "decimal(10, 3)"},
		{"fixed", Fixed(16), "fixed[16]"},
		{"list", &ListType{ElementID: 1, Element: Int}, "list<int>"},
		{"map", &MapType{KeyID: 1, Key: String, ValueID: 2, Value: Long}, "map<string, long>"},
		{
			"struct",
			StructOf(RequiredField(1, "tag", Int), OptionalField(2, "field0", String)),
			"struct<1: tag: required int, 2: field0: optional string>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSchemaString(t *testing.T) {
	s := NewSchema(
		RequiredField(0, "id", Long),
		NestedField{ID: 1, Name: "data", Type: String, Doc: "payload"},
	)
	want := "table {\n  0: id: required long\n  1: data: optional string (payload)\n}"
	if got := s.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestHasTimestampWithoutZone(t *testing.T) {
	if HasTimestampWithoutZone(sampleSchema()) {
		t.Error("expected no timestamp without zone")
	}

	nested := NewSchema(
		RequiredField(0, "events", &ListType{ElementID: 1, Element: StructOf(
			OptionalField(2, "at", Timestamp),
		)}),
	)
	if !HasTimestampWithoutZone(nested) {
		t.Error("expected nested timestamp without zone to be found")
	}
}

func TestIndexByID(t *testing.T) {
	index := IndexByID(sampleSchema())
	if len(index) != 11 {
		t.Fatalf("expected 11 ids, got %d", len(index))
	}
	if index[6] != String {
		t.Errorf("element id 6 = %v, want string", index[6])
	}
	if index[9] != Decimal(9, 2) {
		t.Errorf("value id 9 = %v, want decimal(9, 2)", index[9])
	}
	if got := HighestFieldID(sampleSchema()); got != 10 {
		t.Errorf("HighestFieldID() = %d, want 10", got)
	}
	if got := HighestFieldID(NewSchema()); got != -1 {
		t.Errorf("HighestFieldID(empty) = %d, want -1", got)
	}
}

func TestToArrowSchema(t *testing.T) {
	as, err := ToArrowSchema(sampleSchema())
	if err != nil {
		t.Fatalf("ToArrowSchema() error = %v", err)
	}
	if as.NumFields() != 6 {
		t.Fatalf("expected 6 fields, got %d", as.NumFields())
	}

	id := as.Field(0)
	if !arrow.TypeEqual(id.Type, arrow.PrimitiveTypes.Int64) || id.Nullable {
		t.Errorf("id field = %v, want non-nullable int64", id)
	}
	if got, ok := FieldID(id); !ok || got != 0 {
		t.Errorf("FieldID(id) = %d, %v", got, ok)
	}

	tags := as.Field(3).Type.(*arrow.ListType)
	if tags.ElemField().Nullable {
		t.Error("required list element should not be nullable")
	}
	if got, ok := FieldID(tags.ElemField()); !ok || got != 6 {
		t.Errorf("element FieldID = %d, %v", got, ok)
	}

	props := as.Field(4).Type.(*arrow.MapType)
	if !props.ItemField().Nullable {
		t.Error("optional map value should be nullable")
	}
	dec := props.ItemType().(*arrow.Decimal128Type)
	if dec.Precision != 9 || dec.Scale != 2 {
		t.Errorf("decimal = %v, want decimal(9, 2)", dec)
	}

	ts := as.Field(5).Type.(*arrow.TimestampType)
	if ts.Unit != arrow.Microsecond || ts.TimeZone != "UTC" {
		t.Errorf("timestamptz = %v", ts)
	}
}
