package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/tablescan-go/auth"
)

// ListFlights returns one FlightInfo per registered table, with a PATH
// descriptor and the table schema. Tables the caller may not read are
// skipped. Criteria are ignored.
func (s *Server) ListFlights(_ *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := stream.Context()
	for _, name := range s.tables.Names() {
		table, err := s.tables.Table(name)
		if err != nil {
			continue
		}
		if auth.AuthorizeTable(ctx, s.opts.Auth, name) != nil {
			continue
		}
		desc := &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{name}}
		info, err := s.flightInfo(desc, table, nil)
		if err != nil {
			return err
		}
		if err := stream.Send(info); err != nil {
			s.logger.Error("Failed to send FlightInfo", "table", name, "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
	}
	return nil
}
