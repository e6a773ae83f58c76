package flight

import "errors"

var (
	// ErrTableExists is returned when registering a table name twice.
	ErrTableExists = errors.New("table already registered")

	// ErrTableNotFound is returned for an unknown table name.
	ErrTableNotFound = errors.New("table not found")

	// ErrNilSchema is returned when registering a table without a schema.
	ErrNilSchema = errors.New("table schema cannot be nil")

	// ErrOutsideLocation is returned for a ticket naming a file that does not
	// live under its table's location.
	ErrOutsideLocation = errors.New("file is outside the table location")

	// ErrTimestampWithoutZone is returned when serving a table with timestamp
	// without zone columns while the server is not configured to read them.
	ErrTimestampWithoutZone = errors.New("cannot handle timestamp without time zone fields: " +
		"readers only have a zone-adjusted timestamp type; to read all timestamps " +
		"as UTC-adjusted values set read-timestamp-without-zone to true")
)
