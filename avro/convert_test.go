package avro

import (
	"errors"
	"testing"

	"github.com/hugr-lab/tablescan-go/types"
)

func TestToSchemaUnions(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   string
	}{
		{
			name: "required complex union",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"unionCol","type":["int","string"]}]}`,
			want: "table {\n" +
				"  0: unionCol: required struct<1: tag: required int, 2: field0: optional int, 3: field1: optional string>\n" +
				"}",
		},
		{
			name: "optional complex union",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"unionCol","type":["null","int","string"]}]}`,
			want: "table {\n" +
				"  0: unionCol: optional struct<1: tag: required int, 2: field0: optional int, 3: field1: optional string>\n" +
				"}",
		},
		{
			name: "optional single union with null default",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"optionCol","type":["null","int"],"default":null}]}`,
			want: "table {\n  0: optionCol: optional int\n}",
		},
		{
			name: "single type union",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"unionCol","type":["int"]}]}`,
			want: "table {\n  0: unionCol: required int\n}",
		},
		{
			name: "nested single type union",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"col1","type":{"type":"array","items":["string"]}}]}`,
			want: "table {\n  0: col1: required list<string>\n}",
		},
		{
			name: "single type union of complex type",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"unionCol","type":[{"type":"array","items":"int"}]}]}`,
			want: "table {\n  0: unionCol: required list<int>\n}",
		},
		{
			name: "optional map value",
			schema: `{"type":"record","name":"root","fields":[
				{"name":"props","type":{"type":"map","values":["null","long"]}}]}`,
			want: "table {\n  0: props: required map<string, long>\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.schema)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			s, err := ToSchema(root)
			if err != nil {
				t.Fatalf("ToSchema() error = %v", err)
			}
			if got := s.String(); got != tt.want {
				t.Errorf("ToSchema() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestToSchemaIDsArePreorder(t *testing.T) {
	root := RecordOf("root",
		FieldOf("id", Prim(Long)),
		FieldOf("location", RecordOf("loc",
			FieldOf("lat", Prim(Double)),
			FieldOf("lon", Prim(Double)),
		)),
		FieldOf("events", Array{Items: UnionOf(
			Prim(Null),
			RecordOf("click", FieldOf("x", Prim(Int))),
			Prim(String),
		)}),
		FieldOf("attrs", Map{Values: Optional(Prim(String))}),
		FieldOf("name", Prim(String)),
	)

	s, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}

	want := "table {\n" +
		"  0: id: required long\n" +
		"  1: location: required struct<2: lat: required double, 3: lon: required double>\n" +
		"  4: events: required list<struct<6: tag: required int, 7: field0: optional struct<8: x: required int>, 9: field1: optional string>>\n" +
		"  10: attrs: required map<string, string>\n" +
		"  13: name: required string\n" +
		"}"
	if got := s.String(); got != want {
		t.Fatalf("ToSchema() =\n%s\nwant\n%s", got, want)
	}

	events := s.Fields()[2].Type.(*types.ListType)
	if events.ElementID != 5 || events.ElementRequired {
		t.Errorf("events element = id %d required %v, want id 5 optional", events.ElementID, events.ElementRequired)
	}
	attrs := s.Fields()[3].Type.(*types.MapType)
	if attrs.KeyID != 11 || attrs.ValueID != 12 || attrs.ValueRequired {
		t.Errorf("attrs map = key %d value %d required %v", attrs.KeyID, attrs.ValueID, attrs.ValueRequired)
	}
}

func TestToSchemaDeterministic(t *testing.T) {
	root := RecordOf("root",
		FieldOf("a", UnionOf(Prim(Int), Prim(String), Array{Items: Prim(Long)})),
		FieldOf("b", Map{Values: UnionOf(Prim(Null), Prim(Double))}),
	)
	first, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}
	second, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("conversions differ:\n%s\n%s", first, second)
	}
}

func TestToSchemaCollapsesNestedUnions(t *testing.T) {
	root := RecordOf("root",
		FieldOf("deep", Array{Items: UnionOf(Map{Values: UnionOf(Prim(Int))})}),
		FieldOf("wrapped", UnionOf(UnionOf(Prim(Null), Prim(Long)))),
	)
	s, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}
	want := "table {\n" +
		"  0: deep: required list<map<string, int>>\n" +
		"  4: wrapped: optional long\n" +
		"}"
	if got := s.String(); got != want {
		t.Errorf("ToSchema() =\n%s\nwant\n%s", got, want)
	}
}

func TestToSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		root     Node
		wantErr  error
		wantPath string
	}{
		{
			name:     "empty union",
			root:     RecordOf("root", FieldOf("nothing", UnionOf(Prim(Null)))),
			wantErr:  ErrEmptyUnion,
			wantPath: "nothing",
		},
		{
			name:     "empty union in array",
			root:     RecordOf("root", FieldOf("list", Array{Items: UnionOf(Prim(Null))})),
			wantErr:  ErrEmptyUnion,
			wantPath: "list.element",
		},
		{
			name:     "duration",
			root:     RecordOf("root", FieldOf("d", Fixed{Name: "dur", Size: 12, Logical: &Logical{Name: LogicalDuration}})),
			wantErr:  ErrUnsupportedType,
			wantPath: "d",
		},
		{
			name:     "bare null field",
			root:     RecordOf("root", FieldOf("n", Prim(Null))),
			wantErr:  ErrUnsupportedType,
			wantPath: "n",
		},
		{
			name:    "root is not a record",
			root:    Prim(Int),
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToSchema(tt.root)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ToSchema() error = %v, want %v", err, tt.wantErr)
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not a *SchemaError", err)
			}
			if tt.wantPath != "" && se.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", se.Path, tt.wantPath)
			}
		})
	}
}

func TestToSchemaCarriesDoc(t *testing.T) {
	root, err := Parse(`{"type":"record","name":"root","fields":[
		{"name":"id","type":"long","doc":"row identifier"}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	s, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}
	want := "table {\n  0: id: required long (row identifier)\n}"
	if got := s.String(); got != want {
		t.Errorf("ToSchema() = %q, want %q", got, want)
	}
}

func TestToType(t *testing.T) {
	got, err := ToType(UnionOf(Prim(Int), Prim(Bytes)))
	if err != nil {
		t.Fatalf("ToType() error = %v", err)
	}
	want := "struct<0: tag: required int, 1: field0: optional int, 2: field1: optional binary>"
	if got.String() != want {
		t.Errorf("ToType() = %s, want %s", got, want)
	}
}
