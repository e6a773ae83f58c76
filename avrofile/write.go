package avrofile

import (
	"context"
	"fmt"
	"io"

	"github.com/hamba/avro/v2/ocf"

	"github.com/hugr-lab/tablescan-go/fileio"
)

// PositionDeleteSchema is the Avro schema of position delete files.
const PositionDeleteSchema = `{
  "type": "record",
  "name": "position_delete",
  "fields": [
    {"name": "file_path", "type": "string"},
    {"name": "pos", "type": "long"}
  ]
}`

// PositionDelete marks row pos of the data file at FilePath as deleted.
type PositionDelete struct {
	FilePath string `avro:"file_path"`
	Pos      int64  `avro:"pos"`
}

// Write encodes records as an Avro object container file with the given
// writer schema.
func Write(w io.Writer, schema string, records ...any) error {
	enc, err := ocf.NewEncoder(schema, w)
	if err != nil {
		return fmt.Errorf("create avro encoder: %w", err)
	}
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return enc.Close()
}

// ReadPositionDeletes returns the deleted positions a delete file holds for
// the data file at dataPath.
func ReadPositionDeletes(ctx context.Context, in fileio.InputFile, dataPath string) ([]int64, error) {
	f, err := in.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("open avro container: %w", err)
	}
	var positions []int64
	for dec.HasNext() {
		var d PositionDelete
		if err := dec.Decode(&d); err != nil {
			return nil, err
		}
		if d.FilePath == dataPath {
			positions = append(positions, d.Pos)
		}
	}
	return positions, dec.Error()
}
