// Package flight serves units of work over Arrow Flight. A DoGet ticket
// names a registered table and carries one encoded unit of work; the server
// reads it with a scan.Reader and streams the rows as Arrow record batches.
package flight

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/scan"
)

// Options configures a Server. Validation of required fields happens in the
// root package; NewServer only fills defaults.
type Options struct {
	IO         fileio.FileIO
	Encryption encryption.Manager
	Auth       auth.Authenticator
	Metrics    *scan.Metrics
	Allocator  memory.Allocator
	Logger     *slog.Logger

	// Address is advertised in FlightEndpoint locations when not empty.
	Address string

	// BatchSize is the number of rows per record batch.
	BatchSize int

	// HandleTimestampWithoutZone allows serving tables with timestamp
	// without zone columns.
	HandleTimestampWithoutZone bool
}

// Server implements the Flight service handlers.
type Server struct {
	flight.BaseFlightServer

	tables *Registry
	opts   Options
	logger *slog.Logger
}

// NewServer creates a Flight server over the tables of a registry.
func NewServer(tables *Registry, opts Options) *Server {
	if opts.Allocator == nil {
		opts.Allocator = memory.DefaultAllocator
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Encryption == nil {
		opts.Encryption = encryption.Plaintext{}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = scan.DefaultBatchSize
	}
	return &Server{tables: tables, opts: opts, logger: opts.Logger}
}

// Tables returns the server's table registry.
func (s *Server) Tables() *Registry { return s.tables }

// RegisterFlightServer registers the Flight service on grpcServer.
func RegisterFlightServer(grpcServer *grpc.Server, s *Server) {
	flight.RegisterFlightServiceServer(grpcServer, s)
}
