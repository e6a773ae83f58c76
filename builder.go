package tablescan

import (
	"fmt"

	"github.com/hugr-lab/tablescan-go/avro"
	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/flight"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/types"
)

// TableDef defines a table served by the scan service.
type TableDef struct {
	// Name is the table name tickets refer to.
	// REQUIRED: MUST be non-empty and unique.
	Name string

	// Schema describes the rows of the table.
	// REQUIRED: MUST NOT be nil.
	Schema *types.Schema

	// Opener decodes file tasks of the table.
	// OPTIONAL: defaults to the Avro opener.
	Opener scan.Opener[convert.Row]

	// Location is the prefix all files of the table live under. Tickets
	// naming files elsewhere are refused.
	// OPTIONAL: empty allows any location.
	Location string
}

// TableBuilder collects table definitions into a registry.
// Not thread-safe - use only during initialization.
//
// Example:
//
//	tables, err := tablescan.NewTableBuilder().
//	    AvroTable("events", eventsAvsc).
//	    Table(tablescan.TableDef{Name: "people", Schema: people}).
//	    Build()
type TableBuilder struct {
	tables []TableDef
	errs   []error
	built  bool
}

// NewTableBuilder creates an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// Table adds a table definition.
func (b *TableBuilder) Table(def TableDef) *TableBuilder {
	b.tables = append(b.tables, def)
	return b
}

// AvroTable adds a table whose schema is converted from Avro schema JSON.
// Conversion errors are reported by Build.
func (b *TableBuilder) AvroTable(name, avroSchema string) *TableBuilder {
	return b.AvroTableAt(name, "", avroSchema)
}

// AvroTableAt is AvroTable for a table whose files live under location.
func (b *TableBuilder) AvroTableAt(name, location, avroSchema string) *TableBuilder {
	node, err := avro.Parse(avroSchema)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("table %s: %w", name, err))
		return b
	}
	schema, err := avro.ToSchema(node)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("table %s: %w", name, err))
		return b
	}
	return b.Table(TableDef{Name: name, Schema: schema, Location: location})
}

// Build validates the definitions and returns the registry.
// Can only be called once.
func (b *TableBuilder) Build() (*flight.Registry, error) {
	if b.built {
		return nil, fmt.Errorf("tables already built")
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	b.built = true

	tables := make([]flight.Table, 0, len(b.tables))
	for _, def := range b.tables {
		tables = append(tables, flight.Table{Name: def.Name, Schema: def.Schema, Opener: def.Opener, Location: def.Location})
	}
	return flight.NewRegistry(tables...)
}
