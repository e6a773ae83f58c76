package flight

import (
	"fmt"

	"github.com/hugr-lab/tablescan-go/internal/serialize"
	"github.com/hugr-lab/tablescan-go/task"
)

// TicketData is the decoded content of a DoGet ticket: the table to read and
// the unit of work to read from it.
type TicketData struct {
	Table string                `msgpack:"table"`
	Unit  task.CombinedScanTask `msgpack:"unit"`

	// BatchSize overrides the server's rows per record batch when positive.
	BatchSize int `msgpack:"batch_size,omitempty"`
}

// EncodeTicket creates an opaque ticket for reading unit from table.
func EncodeTicket(table string, unit task.CombinedScanTask) ([]byte, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}
	data, err := serialize.Marshal(TicketData{Table: table, Unit: unit})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses a ticket created by EncodeTicket.
func DecodeTicket(ticket []byte) (*TicketData, error) {
	if len(ticket) == 0 {
		return nil, fmt.Errorf("ticket cannot be empty")
	}
	var td TicketData
	if err := serialize.Unmarshal(ticket, &td); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if td.Table == "" {
		return nil, fmt.Errorf("decoded ticket has empty table name")
	}
	if td.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must be non-negative, got %d", td.BatchSize)
	}
	return &td, nil
}

// ScanRequest is the command of a CMD flight descriptor: a table and the
// units of work planned for it. GetFlightInfo answers with one endpoint per
// unit.
type ScanRequest struct {
	Table string                  `msgpack:"table"`
	Units []task.CombinedScanTask `msgpack:"units"`
}

// EncodeScanRequest serializes a scan request for a flight descriptor.
func EncodeScanRequest(req ScanRequest) ([]byte, error) {
	data, err := serialize.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan request: %w", err)
	}
	return data, nil
}

// DecodeScanRequest reverses EncodeScanRequest.
func DecodeScanRequest(data []byte) (*ScanRequest, error) {
	var req ScanRequest
	if err := serialize.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode scan request: %w", err)
	}
	if req.Table == "" {
		return nil, fmt.Errorf("scan request has empty table name")
	}
	return &req, nil
}
