package avro

import (
	"errors"
	"testing"
)

func TestParseLogicalAndNamedTypes(t *testing.T) {
	root, err := Parse(`{
		"type": "record",
		"name": "event",
		"namespace": "com.example",
		"fields": [
			{"name": "id", "type": {"type": "string", "logicalType": "uuid"}},
			{"name": "day", "type": {"type": "int", "logicalType": "date"}},
			{"name": "at", "type": {"type": "long", "logicalType": "timestamp-micros"}},
			{"name": "local", "type": {"type": "long", "logicalType": "timestamp-micros", "adjust-to-utc": false}},
			{"name": "price", "type": {"type": "bytes", "logicalType": "decimal", "precision": 9, "scale": 2}},
			{"name": "hash", "type": {"type": "fixed", "name": "md5", "size": 16}},
			{"name": "prev_hash", "type": ["null", "md5"]},
			{"name": "kind", "type": {"type": "enum", "name": "kind", "symbols": ["A", "B"]}}
		]
	}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rec, ok := root.(Record)
	if !ok {
		t.Fatalf("root is %T, want Record", root)
	}
	if rec.Name != "com.example.event" {
		t.Errorf("Name = %q", rec.Name)
	}

	s, err := ToSchema(root)
	if err != nil {
		t.Fatalf("ToSchema() error = %v", err)
	}
	want := "table {\n" +
		"  0: id: required uuid\n" +
		"  1: day: required date\n" +
		"  2: at: required timestamptz\n" +
		"  3: local: required timestamp\n" +
		"  4: price: required decimal(9, 2)\n" +
		"  5: hash: required fixed[16]\n" +
		"  6: prev_hash: optional fixed[16]\n" +
		"  7: kind: required string\n" +
		"}"
	if got := s.String(); got != want {
		t.Errorf("ToSchema() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseRecursiveRecord(t *testing.T) {
	root := `{"type":"record","name":"node","fields":[
		{"name":"value","type":"int"},
		{"name":"next","type":["null","node"]}]}`

	_, err := Parse(root)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Parse() error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse(`{"type":"record"`); err == nil {
		t.Fatal("expected error for malformed schema")
	}
}
