package scan

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/types"
)

// DefaultBatchSize is the number of rows per record batch when none is given.
const DefaultBatchSize = 1024

// RecordReader groups the native rows of a Reader into Arrow record batches.
// Releasing the last reference closes the underlying Reader.
type RecordReader struct {
	refs      atomic.Int64
	rows      *Reader[convert.Row]
	st        *types.StructType
	schema    *arrow.Schema
	builder   *array.RecordBuilder
	batchSize int

	cur  arrow.RecordBatch
	err  error
	done bool
}

// NewRecordReader wraps rows, whose values follow schema. A nil mem uses the
// Go allocator.
func NewRecordReader(rows *Reader[convert.Row], schema *types.Schema, mem memory.Allocator, batchSize int) (*RecordReader, error) {
	as, err := types.ToArrowSchema(schema)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rr := &RecordReader{
		rows:      rows,
		st:        schema.AsStruct(),
		schema:    as,
		builder:   array.NewRecordBuilder(mem, as),
		batchSize: batchSize,
	}
	rr.refs.Store(1)
	return rr, nil
}

func (rr *RecordReader) Retain() { rr.refs.Add(1) }

func (rr *RecordReader) Release() {
	if rr.refs.Add(-1) != 0 {
		return
	}
	if rr.cur != nil {
		rr.cur.Release()
		rr.cur = nil
	}
	rr.builder.Release()
	rr.rows.Close()
}

func (rr *RecordReader) Schema() *arrow.Schema { return rr.schema }

// Next builds the next batch of up to batchSize rows.
func (rr *RecordReader) Next() bool {
	if rr.cur != nil {
		rr.cur.Release()
		rr.cur = nil
	}
	if rr.done || rr.err != nil {
		return false
	}

	n := 0
	for n < rr.batchSize && rr.rows.Next() {
		if err := convert.AppendRow(rr.builder, rr.st, rr.rows.Value()); err != nil {
			rr.err = err
			break
		}
		n++
	}
	if rr.err == nil {
		rr.err = rr.rows.Err()
	}
	if n < rr.batchSize {
		rr.done = true
	}

	if rr.err != nil || n == 0 {
		return false
	}
	rr.cur = rr.builder.NewRecordBatch()
	return true
}

func (rr *RecordReader) RecordBatch() arrow.RecordBatch { return rr.cur }

// Record is RecordBatch under its older name.
func (rr *RecordReader) Record() arrow.RecordBatch { return rr.cur }

func (rr *RecordReader) Err() error { return rr.err }
