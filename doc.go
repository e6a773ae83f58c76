// Package tablescan serves the rows of table scan tasks over Apache Arrow
// Flight.
//
// A planner splits a table read into units of work (task.CombinedScanTask):
// groups of file tasks, each naming a data file, its delete files and the
// byte range to read. Executors receive a unit inside a Flight ticket, resolve
// and decrypt every file of the unit with a single batched call, read the
// tasks in order and stream the rows back as Arrow record batches.
//
// The package wires the building blocks together:
//   - avro: Avro schema to engine schema conversion with stable field ids
//   - convert: native row model and value conversion
//   - scan: the per-unit reader, file resolution and the Arrow adapter
//   - fileio, encryption: file stores and the decryption boundary
//   - flight: the Flight service handlers
//
// # Quick Start
//
//	tables, err := tablescan.NewTableBuilder().
//	    AvroTable("events", eventsAvsc).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	config := tablescan.ServerConfig{
//	    Tables: tables,
//	    IO:     fileio.NewLocalFS(),
//	}
//	grpcServer := grpc.NewServer(tablescan.ServerOptions(config)...)
//	if err := tablescan.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
//
// Clients plan with GetFlightInfo on a CMD descriptor carrying an encoded
// flight.ScanRequest and fetch each returned endpoint with DoGet, or encode
// tickets directly with flight.EncodeTicket.
//
// # Server Lifecycle
//
// The package registers Flight service handlers on a user-provided grpc.Server
// but does NOT manage server lifecycle (start/stop/listen). TLS, interceptors
// and graceful shutdown stay under the caller's control.
//
// # Encryption
//
// Files carrying key metadata are decrypted by the configured
// encryption.Manager. encryption.Standard unwraps all data keys of a unit of
// work with one KeyManagementClient call and decrypts AES-GCM sealed files.
//
// # Timestamps Without Zone
//
// Tables with timestamp without zone columns are refused unless
// ServerConfig.HandleTimestampWithoutZone is set, in which case such values
// are served as UTC-adjusted microseconds.
//
// # Memory Management
//
// Arrow uses manual reference counting. Record batches read from a
// scan.RecordReader are valid until the next call to Next; call Release on
// the reader when done.
package tablescan
