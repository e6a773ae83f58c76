package scan

import (
	"context"

	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/task"
)

// RowIterator is a finite, non-restartable sequence of rows. Next advances
// and reports whether a row is available; Value returns it. Err reports the
// failure that ended iteration, if any. Close may be called at any point and
// more than once.
type RowIterator[T any] interface {
	Next() bool
	Value() T
	Err() error
	Close() error
}

// Files resolves the physical files of a unit of work for openers.
type Files interface {
	// InputFile returns the primary data file of t. It fails with
	// ErrInvalidUsage for synthetic data tasks.
	InputFile(t *task.FileScanTask) (fileio.InputFile, error)
	// InputFileAt returns the resolved file at location.
	InputFileAt(location string) (fileio.InputFile, error)
}

// Opener decodes one file-read task into rows. One Opener exists per
// physical file format.
type Opener[T any] interface {
	Open(ctx context.Context, t *task.FileScanTask, files Files) (RowIterator[T], error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc[T any] func(ctx context.Context, t *task.FileScanTask, files Files) (RowIterator[T], error)

// Open implements Opener.
func (f OpenerFunc[T]) Open(ctx context.Context, t *task.FileScanTask, files Files) (RowIterator[T], error) {
	return f(ctx, t, files)
}

// Empty returns an exhausted iterator.
func Empty[T any]() RowIterator[T] {
	return &sliceIterator[T]{}
}

// FromSlice returns an iterator over rows.
func FromSlice[T any](rows []T) RowIterator[T] {
	return &sliceIterator[T]{rows: rows}
}

type sliceIterator[T any] struct {
	rows []T
	i    int
	cur  T
}

func (it *sliceIterator[T]) Next() bool {
	if it.i >= len(it.rows) {
		var zero T
		it.cur = zero
		return false
	}
	it.cur = it.rows[it.i]
	it.i++
	return true
}

func (it *sliceIterator[T]) Value() T     { return it.cur }
func (it *sliceIterator[T]) Err() error   { return nil }
func (it *sliceIterator[T]) Close() error { it.rows = nil; it.i = 0; return nil }
