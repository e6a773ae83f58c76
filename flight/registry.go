package flight

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/types"
)

// Table is a servable table.
type Table struct {
	// Name is the table name tickets refer to.
	// REQUIRED.
	Name string

	// Schema of the rows every task of the table produces.
	// REQUIRED.
	Schema *types.Schema

	// Opener reads file tasks of the table.
	// OPTIONAL: defaults to an Avro opener checking files against Schema.
	Opener scan.Opener[convert.Row]

	// Location is the prefix every data and delete file of the table lives
	// under, e.g. "s3://warehouse/db/events". Tickets and scan requests naming
	// other files are refused with PermissionDenied.
	// OPTIONAL: empty allows any location.
	Location string
}

// Registry holds the tables a server serves. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Table
}

// NewRegistry creates a registry holding tables.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a table.
func (r *Registry) Register(t Table) error {
	if t.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if t.Schema == nil {
		return fmt.Errorf("%w: %s", ErrNilSchema, t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
	}
	r.tables[t.Name] = t
	return nil
}

// Table returns the table registered under name.
func (r *Registry) Table(name string) (Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
