package flight

import (
	"context"
	"errors"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/avrofile"
	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/internal/recovery"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/types"
)

// DoGet reads the unit of work carried by the ticket and streams its rows as
// Arrow record batches. Rows arrive in task order. A failing task ends the
// stream with an error naming the file.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	return recovery.RecoverToError(s.logger, "DoGet", func() error {
		return s.doGet(ticket, stream)
	})
}

func (s *Server) doGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := stream.Context()

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	table, err := s.servable(ctx, td.Table)
	if err != nil {
		return err
	}
	if err := table.checkUnit(td.Unit); err != nil {
		s.logger.Warn("Refused ticket", "table", td.Table, "identity", auth.IdentityFromContext(ctx), "error", err)
		return status.Error(codes.PermissionDenied, err.Error())
	}

	s.logger.Debug("DoGet request",
		"table", td.Table,
		"tasks", len(td.Unit.Tasks),
		"files", td.Unit.FileCount(),
		"identity", auth.IdentityFromContext(ctx),
	)

	rows, err := scan.NewReader(ctx, td.Unit, scan.Config[convert.Row]{
		Opener:     s.opener(table),
		IO:         s.opts.IO,
		Encryption: s.opts.Encryption,
		Logger:     s.logger,
		Metrics:    s.opts.Metrics,
	})
	if err != nil {
		s.logger.Error("Failed to resolve unit of work", "table", td.Table, "error", err)
		return toStatus(err)
	}

	batchSize := s.opts.BatchSize
	if td.BatchSize > 0 {
		batchSize = td.BatchSize
	}
	reader, err := scan.NewRecordReader(rows, table.Schema, s.opts.Allocator, batchSize)
	if err != nil {
		rows.Close()
		return status.Errorf(codes.Internal, "table %s: %v", td.Table, err)
	}
	defer reader.Release()

	// The writer is closed on success only: closing writes the end of stream
	// marker, after which clients would not see a failure status.
	writer := flight.NewRecordWriter(stream, ipc.WithSchema(reader.Schema()), ipc.WithAllocator(s.opts.Allocator))

	batches, total := 0, int64(0)
	for reader.Next() {
		select {
		case <-ctx.Done():
			s.logger.Debug("DoGet cancelled by client",
				"table", td.Table,
				"batches_sent", batches,
				"rows_sent", total,
			)
			return status.Error(codes.Canceled, "request cancelled")
		default:
		}

		record := reader.RecordBatch()
		batches++
		total += record.NumRows()
		if err := writer.Write(record); err != nil {
			s.logger.Error("Failed to write record batch", "table", td.Table, "batch", batches, "error", err)
			return status.Errorf(codes.Internal, "failed to write batch %d: %v", batches, err)
		}
	}
	if err := reader.Err(); err != nil {
		s.logger.Error("Scan failed", "table", td.Table, "batches_sent", batches, "error", err)
		return toStatus(err)
	}

	if err := writer.Close(); err != nil {
		return status.Errorf(codes.Internal, "failed to finish stream: %v", err)
	}

	s.logger.Debug("DoGet completed",
		"table", td.Table,
		"batches_sent", batches,
		"total_rows", total,
	)
	return nil
}

// servable looks up a table and checks the caller may read it.
func (s *Server) servable(ctx context.Context, name string) (Table, error) {
	table, err := s.tables.Table(name)
	if err != nil {
		return Table{}, status.Error(codes.NotFound, err.Error())
	}
	if err := auth.AuthorizeTable(ctx, s.opts.Auth, name); err != nil {
		return Table{}, err
	}
	if !s.opts.HandleTimestampWithoutZone && types.HasTimestampWithoutZone(table.Schema) {
		return Table{}, status.Errorf(codes.FailedPrecondition, "table %s: %v", name, ErrTimestampWithoutZone)
	}
	return table, nil
}

func (s *Server) opener(t Table) scan.Opener[convert.Row] {
	files := t.Opener
	if files == nil {
		files = avrofile.NewOpener(avrofile.Options{Schema: t.Schema, Logger: s.logger})
	}
	return scan.WithDataTasks(t.Schema.AsStruct(), files)
}

// toStatus maps read failures onto gRPC codes. Messages keep the file
// location added by the reader.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, fileio.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, scan.ErrDecryption):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, scan.ErrInvalidUsage), errors.Is(err, convert.ErrUnsupportedValue):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
