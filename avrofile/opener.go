// Package avrofile reads Avro object container files as scan tasks. Each
// file's writer schema is converted to an engine schema, decoded records are
// normalized (unions become tag structs) and converted to native rows.
// Position delete files that apply to a task are honored.
package avrofile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hamba/avro/v2/ocf"

	"github.com/hugr-lab/tablescan-go/avro"
	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/task"
	"github.com/hugr-lab/tablescan-go/types"
)

// schemaKey is the container metadata entry holding the writer schema.
const schemaKey = "avro.schema"

var (
	// ErrSchemaMismatch indicates a file whose schema differs from the expected one.
	ErrSchemaMismatch = errors.New("file schema does not match table schema")

	// ErrUnsupportedFormat indicates a task for a non-Avro file.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnsupportedDeletes indicates equality deletes, which this reader does not apply.
	ErrUnsupportedDeletes = errors.New("unsupported delete file")
)

// Options configures an Opener.
type Options struct {
	// Schema is the engine schema rows must follow.
	// OPTIONAL: when nil, each file's own schema is used.
	Schema *types.Schema

	// Logger for opener events.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger
}

// Opener is a scan.Opener for Avro files.
type Opener struct {
	schema *types.Schema
	logger *slog.Logger
}

// NewOpener returns an Avro opener.
func NewOpener(opts Options) *Opener {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Opener{schema: opts.Schema, logger: opts.Logger}
}

// Open implements scan.Opener.
func (o *Opener) Open(ctx context.Context, t *task.FileScanTask, files scan.Files) (scan.RowIterator[convert.Row], error) {
	if t.File.Format != "" && t.File.Format != task.FormatAvro {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, t.File.Format)
	}
	in, err := files.InputFile(t)
	if err != nil {
		return nil, err
	}
	deleted, err := o.positionDeletes(ctx, t, files)
	if err != nil {
		return nil, err
	}

	f, err := in.Open(ctx)
	if err != nil {
		return nil, err
	}
	dec, err := ocf.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open avro container: %w", err)
	}
	node, schema, err := writerSchema(dec)
	if err != nil {
		f.Close()
		return nil, err
	}
	if o.schema != nil && o.schema.String() != schema.String() {
		f.Close()
		return nil, fmt.Errorf("%w: %s:\n%s\nwant\n%s", ErrSchemaMismatch, schemaDifference(schema, o.schema), schema, o.schema)
	}

	o.logger.Debug("Opened avro file", "location", in.Location(), "deleted_positions", len(deleted))
	return &rowIterator{file: f, dec: dec, node: node, st: schema.AsStruct(), deleted: deleted}, nil
}

// positionDeletes collects the deleted row positions of t's data file.
func (o *Opener) positionDeletes(ctx context.Context, t *task.FileScanTask, files scan.Files) (map[int64]struct{}, error) {
	var deleted map[int64]struct{}
	for _, d := range t.Deletes {
		if d.Content != task.PositionDeletes {
			return nil, fmt.Errorf("%w: %s deletes in %s", ErrUnsupportedDeletes, d.Content, d.Path)
		}
		in, err := files.InputFileAt(d.Path)
		if err != nil {
			return nil, err
		}
		positions, err := ReadPositionDeletes(ctx, in, t.File.Path)
		if err != nil {
			return nil, fmt.Errorf("position deletes %s: %w", d.Path, err)
		}
		if deleted == nil {
			deleted = make(map[int64]struct{}, len(positions))
		}
		for _, p := range positions {
			deleted[p] = struct{}{}
		}
	}
	return deleted, nil
}

func writerSchema(dec *ocf.Decoder) (avro.Node, *types.Schema, error) {
	text, ok := dec.Metadata()[schemaKey]
	if !ok {
		return nil, nil, fmt.Errorf("avro container has no %s metadata", schemaKey)
	}
	node, err := avro.Parse(string(text))
	if err != nil {
		return nil, nil, err
	}
	schema, err := avro.ToSchema(node)
	if err != nil {
		return nil, nil, err
	}
	return node, schema, nil
}

// ReadSchema returns the engine schema of an Avro container file.
func ReadSchema(ctx context.Context, in fileio.InputFile) (*types.Schema, error) {
	f, err := in.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("open avro container: %w", err)
	}
	_, schema, err := writerSchema(dec)
	return schema, err
}

type rowIterator struct {
	file    fileio.File
	dec     *ocf.Decoder
	node    avro.Node
	st      *types.StructType
	deleted map[int64]struct{}

	pos int64
	cur convert.Row
	err error
}

func (it *rowIterator) Next() bool {
	if it.err != nil || it.dec == nil {
		return false
	}
	for it.dec.HasNext() {
		var rec any
		if err := it.dec.Decode(&rec); err != nil {
			it.err = fmt.Errorf("decode record %d: %w", it.pos, err)
			return false
		}
		pos := it.pos
		it.pos++
		if _, ok := it.deleted[pos]; ok {
			continue
		}

		row, err := it.convert(rec)
		if err != nil {
			it.err = fmt.Errorf("record %d: %w", pos, err)
			return false
		}
		it.cur = row
		return true
	}
	it.err = it.dec.Error()
	return false
}

func (it *rowIterator) convert(rec any) (convert.Row, error) {
	normalized, err := Normalize(it.node, it.st, rec)
	if err != nil {
		return nil, err
	}
	v, err := convert.Constant(it.st, normalized)
	if err != nil {
		return nil, err
	}
	row, ok := v.(convert.Row)
	if !ok {
		return nil, fmt.Errorf("record converted to %T", v)
	}
	return row, nil
}

func (it *rowIterator) Value() convert.Row { return it.cur }
func (it *rowIterator) Err() error         { return it.err }

func (it *rowIterator) Close() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file = nil
	it.dec = nil
	return err
}

// schemaDifference names the first field id whose type differs between the
// file schema and the expected one.
func schemaDifference(got, want *types.Schema) string {
	have, expect := types.IndexByID(got), types.IndexByID(want)
	ids := make([]int, 0, len(have)+len(expect))
	for id := range have {
		ids = append(ids, id)
	}
	for id := range expect {
		if _, ok := have[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		h, inFile := have[id]
		e, inTable := expect[id]
		switch {
		case !inTable:
			return fmt.Sprintf("field %d (%s) is not in the table schema", id, h)
		case !inFile:
			return fmt.Sprintf("field %d (%s) is missing from the file", id, e)
		case h.String() != e.String():
			return fmt.Sprintf("field %d is %s, want %s", id, h, e)
		}
	}
	return "field names, nullability or docs differ"
}
