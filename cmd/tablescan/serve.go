package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/hugr-lab/tablescan-go"
	"github.com/hugr-lab/tablescan-go/flight"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured tables over Arrow Flight",
	Long: `Start a Flight server for the tables listed in the config file. Clients
plan units of work with GetFlightInfo and read them with DoGet.

Examples:
  tablescan serve --config tablescan.yaml
  TABLESCAN_LISTEN=:9000 tablescan serve -c tablescan.yaml --metrics-listen :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":50051", "Flight listen address")
	serveCmd.Flags().String("address", "", "Address advertised in flight endpoints (defaults to listen)")
	serveCmd.Flags().Int("batch-size", 0, "Rows per Arrow record batch")
	serveCmd.Flags().Bool("read-timestamp-without-zone", false, "Serve timestamp without zone columns as UTC")
	serveCmd.Flags().String("metrics-listen", "", "Prometheus metrics listen address (disabled if empty)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.logger()

	tables, err := buildTables(cfg)
	if err != nil {
		return err
	}
	io, err := cfg.fileIO()
	if err != nil {
		return err
	}
	enc, err := cfg.encryption(logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	address := cfg.Address
	if address == "" {
		address = cfg.Listen
	}
	config := tablescan.ServerConfig{
		Tables:                     tables,
		IO:                         io,
		Encryption:                 enc,
		Auth:                       cfg.authenticator(),
		Metrics:                    reg,
		Logger:                     logger,
		MaxMessageSize:             cfg.MaxMessageSize,
		Address:                    address,
		BatchSize:                  cfg.BatchSize,
		HandleTimestampWithoutZone: cfg.ReadTimestampWithoutZone,
	}

	grpcServer := grpc.NewServer(tablescan.ServerOptions(config)...)
	if err := tablescan.NewServer(grpcServer, config); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics listening", "address", cfg.MetricsListen)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()
	logger.Info("flight server listening", "address", lis.Addr().String(), "tables", tables.Names())

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutting down")
		grpcServer.GracefulStop()
		err = <-serveErr
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("metrics server shutdown", "error", serr)
		}
	}
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// buildTables reads the schema of every configured table in name order.
func buildTables(cfg *Config) (*flight.Registry, error) {
	if len(cfg.Tables) == 0 {
		return nil, errors.New("no tables configured")
	}
	names := make([]string, 0, len(cfg.Tables))
	for name := range cfg.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	b := tablescan.NewTableBuilder()
	for _, name := range names {
		schema, err := readAvsc(cfg.Tables[name].Schema)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		b.Table(tablescan.TableDef{Name: name, Schema: schema, Location: cfg.Tables[name].Location})
	}
	return b.Build()
}

