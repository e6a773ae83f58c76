package tablescan

import (
	"context"
	"errors"
	"testing"

	"github.com/hugr-lab/tablescan-go/avro"
	"github.com/hugr-lab/tablescan-go/flight"
	"github.com/hugr-lab/tablescan-go/types"
)

const eventsAvsc = `{
  "type": "record",
  "name": "event",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "payload", "type": ["null", "string", "bytes"]}
  ]
}`

// TestTableBuilderBasic tests building a registry from Avro and engine schemas.
func TestTableBuilderBasic(t *testing.T) {
	tables, err := NewTableBuilder().
		AvroTable("events", eventsAvsc).
		Table(TableDef{Name: "people", Schema: types.NewSchema(types.RequiredField(0, "id", types.Long))}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := tables.Names(); len(got) != 2 || got[0] != "events" || got[1] != "people" {
		t.Errorf("Names() = %v", got)
	}
	events, err := tables.Table("events")
	if err != nil {
		t.Fatal(err)
	}
	payload := events.Schema.AsStruct().Field("payload")
	if payload == nil {
		t.Fatal("events has no payload field")
	}
	if st, ok := payload.Type.(*types.StructType); !ok || st.Fields[0].Name != avro.TagField {
		t.Errorf("payload type = %s, want a tag struct", payload.Type)
	}
}

func TestTableBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *TableBuilder
		wantErr error
	}{
		{
			name:    "invalid avro",
			builder: NewTableBuilder().AvroTable("bad", `{"type": "record"`),
		},
		{
			name:    "unsupported avro",
			builder: NewTableBuilder().AvroTable("bad", `{"type": "record", "name": "r", "fields": [{"name": "e", "type": ["null"]}]}`),
			wantErr: avro.ErrEmptyUnion,
		},
		{
			name:    "nil schema",
			builder: NewTableBuilder().Table(TableDef{Name: "t"}),
			wantErr: flight.ErrNilSchema,
		},
		{
			name: "duplicate",
			builder: NewTableBuilder().
				AvroTable("events", eventsAvsc).
				AvroTable("events", eventsAvsc),
			wantErr: flight.ErrTableExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("Build() succeeded")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTableBuilderBuildOnce(t *testing.T) {
	b := NewTableBuilder().AvroTable("events", eventsAvsc)
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); err == nil {
		t.Error("second Build() succeeded")
	}
}

func TestStaticTokens(t *testing.T) {
	a := StaticTokens(map[string]string{"t1": "reader"})
	if id, err := a.Authenticate(context.Background(), "t1"); err != nil || id != "reader" {
		t.Errorf("Authenticate(t1) = %q, %v", id, err)
	}
	if _, err := a.Authenticate(context.Background(), "t2"); err == nil {
		t.Error("unknown token accepted")
	}
}

func TestTableBuilderLocation(t *testing.T) {
	tables, err := NewTableBuilder().
		AvroTableAt("events", "s3://warehouse/events", eventsAvsc).
		Table(TableDef{Name: "people", Schema: types.NewSchema(types.RequiredField(0, "id", types.Long)), Location: "/people"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for name, want := range map[string]string{"events": "s3://warehouse/events", "people": "/people"} {
		table, err := tables.Table(name)
		if err != nil {
			t.Fatal(err)
		}
		if table.Location != want {
			t.Errorf("%s location = %q, want %q", name, table.Location, want)
		}
	}
}
