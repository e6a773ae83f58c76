package tablescan

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/flight"
)

// ServerConfig contains configuration for the scan Flight server.
type ServerConfig struct {
	// Tables are the tables the server serves.
	// REQUIRED: MUST NOT be nil.
	Tables *flight.Registry

	// IO opens the files referenced by units of work.
	// REQUIRED: MUST NOT be nil.
	IO fileio.FileIO

	// Encryption decrypts encrypted data and delete files.
	// OPTIONAL: If nil, files are read as plaintext.
	Encryption encryption.Manager

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Metrics registers reader counters.
	// OPTIONAL: If nil, no metrics are recorded.
	Metrics prometheus.Registerer

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil and LogLevel is nil.
	Logger *slog.Logger

	// LogLevel creates a text logger on stderr at this level.
	// OPTIONAL: Ignored when Logger is set.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string

	// BatchSize is the number of rows per Arrow record batch.
	// OPTIONAL: If 0, uses scan.DefaultBatchSize.
	BatchSize int

	// HandleTimestampWithoutZone allows serving tables that contain
	// timestamp without zone columns.
	// OPTIONAL: If false, such tables are refused with ErrTimestampWithoutZone.
	HandleTimestampWithoutZone bool
}

// Standard errors returned by tablescan package.
var (
	// ErrUnauthorized indicates authentication failed.
	// Return this from Authenticator.Authenticate() for invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidConfig indicates ServerConfig validation failed.
	ErrInvalidConfig = errors.New("invalid server config")

	// ErrTimestampWithoutZone indicates a table with timestamp without zone
	// columns on a server not configured to read them.
	ErrTimestampWithoutZone = flight.ErrTimestampWithoutZone
)
