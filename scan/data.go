package scan

import (
	"context"
	"fmt"

	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/task"
	"github.com/hugr-lab/tablescan-go/types"
)

// WithDataTasks returns an opener that serves synthetic data tasks from
// their inline rows, converted against st, and passes file-backed tasks to
// files. A nil files opener rejects file-backed tasks.
func WithDataTasks(st *types.StructType, files Opener[convert.Row]) Opener[convert.Row] {
	return OpenerFunc[convert.Row](func(ctx context.Context, t *task.FileScanTask, fs Files) (RowIterator[convert.Row], error) {
		if t.IsDataTask() {
			return &dataIterator{st: st, rows: t.Rows}, nil
		}
		if files == nil {
			return nil, fmt.Errorf("%w: no opener for %s files", ErrInvalidUsage, t.File.Format)
		}
		return files.Open(ctx, t, fs)
	})
}

type dataIterator struct {
	st   *types.StructType
	rows []map[string]any
	cur  convert.Row
	err  error
}

func (it *dataIterator) Next() bool {
	if it.err != nil || len(it.rows) == 0 {
		return false
	}
	row, err := convert.Struct(it.st, it.rows[0])
	it.rows = it.rows[1:]
	if err != nil {
		it.err = err
		return false
	}
	it.cur = row
	return true
}

func (it *dataIterator) Value() convert.Row { return it.cur }
func (it *dataIterator) Err() error         { return it.err }
func (it *dataIterator) Close() error       { it.rows = nil; return nil }
