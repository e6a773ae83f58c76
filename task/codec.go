package task

import (
	"fmt"

	"github.com/hugr-lab/tablescan-go/internal/serialize"
)

// Encode serializes a unit of work into a compact binary form suitable for
// shipping to an executor.
func Encode(unit CombinedScanTask) ([]byte, error) {
	data, err := serialize.Marshal(unit)
	if err != nil {
		return nil, fmt.Errorf("encode unit of work: %w", err)
	}
	return data, nil
}

// Decode reverses Encode.
func Decode(data []byte) (CombinedScanTask, error) {
	var unit CombinedScanTask
	if err := serialize.Unmarshal(data, &unit); err != nil {
		return CombinedScanTask{}, fmt.Errorf("decode unit of work: %w", err)
	}
	return unit, nil
}
