package tablescan_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	arrowflight "github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/hugr-lab/tablescan-go"
	"github.com/hugr-lab/tablescan-go/avrofile"
	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/flight"
	"github.com/hugr-lab/tablescan-go/task"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const eventsAvsc = `{
  "type": "record",
  "name": "event",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "kind", "type": ["null", "string"]}
  ]
}`

func TestNewServerValidation(t *testing.T) {
	tables, err := tablescan.NewTableBuilder().AvroTable("events", eventsAvsc).Build()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		config tablescan.ServerConfig
	}{
		{"no tables", tablescan.ServerConfig{IO: fileio.NewMemFS()}},
		{"no io", tablescan.ServerConfig{Tables: tables}},
		{"negative batch size", tablescan.ServerConfig{Tables: tables, IO: fileio.NewMemFS(), BatchSize: -1}},
		{"negative message size", tablescan.ServerConfig{Tables: tables, IO: fileio.NewMemFS(), MaxMessageSize: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tablescan.NewServer(grpc.NewServer(), tt.config)
			if !errors.Is(err, tablescan.ErrInvalidConfig) {
				t.Errorf("NewServer() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestServerOptions(t *testing.T) {
	if got := tablescan.ServerOptions(tablescan.ServerConfig{}); len(got) != 0 {
		t.Errorf("options without auth or limits = %d, want 0", len(got))
	}
	got := tablescan.ServerOptions(tablescan.ServerConfig{
		Auth:           tablescan.BearerAuth(func(string) (string, error) { return "u", nil }),
		MaxMessageSize: 16 << 20,
	})
	if len(got) != 4 {
		t.Errorf("options = %d, want 4", len(got))
	}
}

// TestEncryptedScan reads two encrypted Avro files and an inline task through
// a full server with authentication and metrics, and checks that no Arrow
// memory is leaked.
func TestEncryptedScan(t *testing.T) {
	kms, err := encryption.NewLocalKMS(map[string][]byte{"k1": bytes.Repeat([]byte{1}, encryption.KeySize)})
	if err != nil {
		t.Fatal(err)
	}
	fs := fileio.NewMemFS()
	var unit []task.FileScanTask
	for i, loc := range []string{"/warehouse/a.avro", "/warehouse/b.avro"} {
		var buf bytes.Buffer
		err := avrofile.Write(&buf, eventsAvsc,
			map[string]any{"id": int64(i*10 + 1), "kind": "x"},
			map[string]any{"id": int64(i*10 + 2), "kind": nil},
		)
		if err != nil {
			t.Fatal(err)
		}
		sealed, keyMetadata, err := encryption.NewEncryptor(kms, "k1").Encrypt(buf.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if err := fs.WriteFile(loc, sealed); err != nil {
			t.Fatal(err)
		}
		unit = append(unit, task.NewFileTask(task.DataFile{
			Path:          loc,
			Format:        task.FormatAvro,
			FileSizeBytes: int64(len(sealed)),
			KeyMetadata:   keyMetadata,
		}))
	}
	unit = append(unit, task.NewDataTask(map[string]any{"id": int64(99)}))

	tables, err := tablescan.NewTableBuilder().AvroTable("events", eventsAvsc).Build()
	if err != nil {
		t.Fatal(err)
	}
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	reg := prometheus.NewRegistry()
	config := tablescan.ServerConfig{
		Tables:     tables,
		IO:         fs,
		Encryption: encryption.NewStandard(kms, quiet),
		Auth:       tablescan.BearerAuth(func(token string) (string, error) { return "reader", nil }),
		Metrics:    reg,
		Allocator:  mem,
		Logger:     quiet,
		BatchSize:  3,
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	grpcServer := grpc.NewServer(tablescan.ServerOptions(config)...)
	if err := tablescan.NewServer(grpcServer, config); err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	go func() { _ = grpcServer.Serve(lis) }()
	defer grpcServer.Stop()

	client, err := arrowflight.NewClientWithMiddleware(lis.Addr().String(), nil, nil,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	ticket, err := flight.EncodeTicket("events", task.Combine(unit...))
	if err != nil {
		t.Fatal(err)
	}
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer any")
	stream, err := client.DoGet(ctx, &arrowflight.Ticket{Ticket: ticket})
	if err != nil {
		t.Fatal(err)
	}
	rdr, err := arrowflight.NewRecordReader(stream)
	if err != nil {
		t.Fatalf("NewRecordReader() error = %v", err)
	}

	var ids []int64
	batches := 0
	for rdr.Next() {
		batches++
		col := rdr.Record().Column(0).(*array.Int64)
		for i := 0; i < col.Len(); i++ {
			ids = append(ids, col.Value(i))
		}
	}
	if err := rdr.Err(); err != nil {
		t.Fatalf("stream error = %v", err)
	}
	rdr.Release()

	want := []int64{1, 2, 11, 12, 99}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
	if batches != 2 {
		t.Errorf("batches = %d, want 2", batches)
	}

	if n, err := testutil.GatherAndCount(reg, "tablescan_scan_decrypt_batches_total"); err != nil || n != 1 {
		t.Errorf("decrypt batch series = %d, %v", n, err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "tablescan_scan_rows_read_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 5 {
				t.Errorf("rows read = %v, want 5", got)
			}
		}
	}

	grpcServer.Stop()
	mem.AssertSize(t, 0)
}
