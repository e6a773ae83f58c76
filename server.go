package tablescan

import (
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/grpc"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/flight"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/types"
)

// NewServer registers the scan Flight service on the provided gRPC server.
//
// Returns error if config is invalid (e.g., nil Tables).
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
//	opts := tablescan.ServerOptions(config)
//	grpcServer := grpc.NewServer(opts...)
//	if err := tablescan.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
		if config.LogLevel != nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
		}
	}

	var metrics *scan.Metrics
	if config.Metrics != nil {
		metrics = scan.NewMetrics(config.Metrics)
	}

	_, restricted := config.Auth.(auth.TableAuthorizer)
	for _, name := range config.Tables.Names() {
		table, err := config.Tables.Table(name)
		if err != nil {
			continue
		}
		if !config.HandleTimestampWithoutZone && types.HasTimestampWithoutZone(table.Schema) {
			logger.Warn("Table has timestamp without zone columns and will be refused", "table", name)
		}
		if restricted && table.Location == "" {
			logger.Warn("Table has no location; its tickets may read any file", "table", name)
		}
		logger.Debug("Serving table",
			"table", name,
			"location", table.Location,
			"columns", len(table.Schema.Fields()),
			"highest_field_id", types.HighestFieldID(table.Schema),
		)
	}

	flight.RegisterFlightServer(grpcServer, flight.NewServer(config.Tables, flight.Options{
		IO:                         config.IO,
		Encryption:                 config.Encryption,
		Auth:                       config.Auth,
		Metrics:                    metrics,
		Allocator:                  config.Allocator,
		Logger:                     logger,
		Address:                    config.Address,
		BatchSize:                  config.BatchSize,
		HandleTimestampWithoutZone: config.HandleTimestampWithoutZone,
	}))

	logger.Info("Scan Flight server registered",
		"tables", len(config.Tables.Names()),
		"has_auth", config.Auth != nil,
		"encrypted", config.Encryption != nil,
		"max_message_size", config.MaxMessageSize,
	)
	return nil
}

func validateConfig(config ServerConfig) error {
	if config.Tables == nil {
		return fmt.Errorf("tables are required")
	}
	if config.IO == nil {
		return fmt.Errorf("file io is required")
	}
	if config.BatchSize < 0 {
		return fmt.Errorf("batch size must be non-negative, got %d", config.BatchSize)
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must be non-negative, got %d", config.MaxMessageSize)
	}
	return nil
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits taken from config.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth)),
		)
	}
	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}
	return opts
}
