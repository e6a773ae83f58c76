package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/tablescan-go/types"
)

// GetFlightInfo plans the read of a table.
//
// A PATH descriptor [table] returns the table schema without endpoints. A CMD
// descriptor carrying an encoded ScanRequest returns one endpoint per unit of
// work; each endpoint ticket is independent and may be fetched concurrently.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	s.logger.Debug("GetFlightInfo called", "type", desc.GetType())

	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 1 {
			return nil, status.Error(codes.InvalidArgument, "path must contain exactly 1 element: [table_name]")
		}
		table, err := s.servable(ctx, path[0])
		if err != nil {
			return nil, err
		}
		return s.flightInfo(desc, table, nil)
	case flight.DescriptorCMD:
		req, err := DecodeScanRequest(desc.GetCmd())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid command: %v", err)
		}
		table, err := s.servable(ctx, req.Table)
		if err != nil {
			return nil, err
		}
		endpoints := make([]*flight.FlightEndpoint, 0, len(req.Units))
		for i, unit := range req.Units {
			if err := table.checkUnit(unit); err != nil {
				return nil, status.Errorf(codes.PermissionDenied, "unit %d: %v", i, err)
			}
			ticket, err := EncodeTicket(req.Table, unit)
			if err != nil {
				return nil, status.Errorf(codes.Internal, "unit %d: %v", i, err)
			}
			endpoints = append(endpoints, s.endpoint(ticket))
		}
		s.logger.Debug("Planned scan", "table", req.Table, "units", len(req.Units))
		return s.flightInfo(desc, table, endpoints)
	}
	return nil, status.Error(codes.InvalidArgument, "descriptor must be PATH or CMD type")
}

// GetSchema returns the Arrow schema of the table named by a PATH descriptor.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	if desc.GetType() != flight.DescriptorPATH || len(desc.GetPath()) != 1 {
		return nil, status.Error(codes.InvalidArgument, "descriptor must be PATH type with [table_name]")
	}
	table, err := s.servable(ctx, desc.GetPath()[0])
	if err != nil {
		return nil, err
	}
	as, err := types.ToArrowSchema(table.Schema)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "table %s: %v", table.Name, err)
	}
	return &flight.SchemaResult{Schema: flight.SerializeSchema(as, s.opts.Allocator)}, nil
}

func (s *Server) flightInfo(desc *flight.FlightDescriptor, table Table, endpoints []*flight.FlightEndpoint) (*flight.FlightInfo, error) {
	as, err := types.ToArrowSchema(table.Schema)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "table %s: %v", table.Name, err)
	}
	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(as, s.opts.Allocator),
		FlightDescriptor: desc,
		Endpoint:         endpoints,
		TotalRecords:     -1,
		TotalBytes:       -1,
	}, nil
}

func (s *Server) endpoint(ticket []byte) *flight.FlightEndpoint {
	ep := &flight.FlightEndpoint{Ticket: &flight.Ticket{Ticket: ticket}}
	if s.opts.Address != "" {
		ep.Location = []*flight.Location{{Uri: "grpc://" + s.opts.Address}}
	}
	return ep
}
