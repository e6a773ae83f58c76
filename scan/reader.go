// Package scan reads a unit of work: it resolves and decrypts every file the
// unit references in one batch, then walks the tasks in order, opening each
// with a format-specific Opener and yielding its rows.
//
// A Reader is not safe for concurrent use. Independent readers share no
// state and may run on separate goroutines; see ReadUnits.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/internal/recovery"
	"github.com/hugr-lab/tablescan-go/task"
)

// State is the lifecycle state of a Reader.
type State int

const (
	// Idle: constructed, no task opened yet.
	Idle State = iota
	// TaskActive: a task iterator is open.
	TaskActive
	// Exhausted: every task has been read.
	Exhausted
	// Closed: Close has been called.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TaskActive:
		return "task-active"
	case Exhausted:
		return "exhausted"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config configures a Reader.
type Config[T any] struct {
	// Opener decodes each task into rows.
	// REQUIRED.
	Opener Opener[T]

	// IO creates input files for the locations referenced by tasks.
	// REQUIRED.
	IO fileio.FileIO

	// Encryption decrypts the files of the unit of work.
	// OPTIONAL: defaults to encryption.Plaintext.
	Encryption encryption.Manager

	// Logger for reader events.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives reader counters.
	// OPTIONAL: nil disables metrics.
	Metrics *Metrics

	// Locality receives the location of each opened file.
	// OPTIONAL: defaults to InputFileBlock.
	Locality *BlockHolder
}

// Reader yields the rows of a unit of work in task order.
type Reader[T any] struct {
	ctx      context.Context
	opener   Opener[T]
	logger   *slog.Logger
	metrics  *Metrics
	locality *BlockHolder
	block    *FileBlock

	files *FileTable
	queue []task.FileScanTask

	current RowIterator[T]
	task    *task.FileScanTask
	value   T
	err     error
	state   State
}

// NewReader resolves and decrypts the files of unit and returns a reader
// positioned before the first row. ctx is used for resolution and is passed
// to the opener for every task.
func NewReader[T any](ctx context.Context, unit task.CombinedScanTask, cfg Config[T]) (*Reader[T], error) {
	if cfg.Opener == nil {
		return nil, fmt.Errorf("%w: opener is required", ErrInvalidUsage)
	}
	if cfg.IO == nil {
		return nil, fmt.Errorf("%w: file io is required", ErrInvalidUsage)
	}
	if cfg.Encryption == nil {
		cfg.Encryption = encryption.Plaintext{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Locality == nil {
		cfg.Locality = InputFileBlock
	}

	files, err := ResolveFiles(ctx, unit, cfg.IO, cfg.Encryption, cfg.Logger)
	if err != nil {
		return nil, err
	}
	cfg.Metrics.resolved(files.Len())

	queue := make([]task.FileScanTask, len(unit.Tasks))
	copy(queue, unit.Tasks)

	return &Reader[T]{
		ctx:      ctx,
		opener:   cfg.Opener,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		locality: cfg.Locality,
		files:    files,
		queue:    queue,
		current:  Empty[T](),
		state:    Idle,
	}, nil
}

// Next advances to the next row, opening queued tasks as the current one is
// exhausted. It returns false when every task is read, after a failure, or
// once the reader is closed. A failure is reported by Err and ends iteration
// for good.
func (r *Reader[T]) Next() bool {
	if r.state == Closed || r.state == Exhausted || r.err != nil {
		return false
	}
	for {
		if r.current.Next() {
			r.value = r.current.Value()
			r.metrics.rowRead()
			return true
		}
		if err := r.current.Err(); err != nil {
			r.fail(err)
			return false
		}
		if len(r.queue) == 0 {
			if err := r.current.Close(); err != nil {
				r.fail(err)
				return false
			}
			r.current = Empty[T]()
			r.state = Exhausted
			return false
		}
		if err := r.advanceTask(); err != nil {
			r.fail(err)
			return false
		}
	}
}

// advanceTask closes the current iterator and opens the next queued task.
func (r *Reader[T]) advanceTask() error {
	err := r.current.Close()
	r.current = Empty[T]()
	if err != nil {
		return err
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}

	t := r.queue[0]
	r.queue = r.queue[1:]
	r.task = &t

	if !t.IsDataTask() {
		r.block = r.locality.Set(t.File.Path, t.Start, t.Length)
	}
	r.logger.Debug("Opening task", "task", t.String(), "remaining", len(r.queue))

	it, err := recovery.RecoverToValue(r.logger, "Open", func() (RowIterator[T], error) {
		return r.opener.Open(r.ctx, r.task, r)
	})
	if err != nil {
		return err
	}
	if it == nil {
		it = Empty[T]()
	}
	r.current = it
	r.state = TaskActive
	r.metrics.taskOpened()
	return nil
}

// fail records err, attributing it to the current task's file when the task
// is file-backed.
func (r *Reader[T]) fail(err error) {
	if r.task != nil && !r.task.IsDataTask() {
		location := r.task.File.Path
		r.logger.Error("Error reading file", "location", location, "error", err)
		err = withLocation(location, err)
	}
	r.metrics.failed()
	r.err = err
}

// Value returns the row produced by the last successful Next. Before the
// first successful Next it returns the zero value.
func (r *Reader[T]) Value() T { return r.value }

// Err returns the failure that ended iteration, if any.
func (r *Reader[T]) Err() error { return r.err }

// State returns the reader's lifecycle state.
func (r *Reader[T]) State() State { return r.state }

// Task returns the task currently or last being read, or nil.
func (r *Reader[T]) Task() *task.FileScanTask { return r.task }

// Close releases the current iterator and drops every queued task without
// opening it. It clears the locality hint if this reader set it last. Close
// is idempotent.
func (r *Reader[T]) Close() error {
	if r.state == Closed {
		return nil
	}
	r.locality.Unset(r.block)
	r.block = nil

	var err error
	if r.current != nil {
		err = r.current.Close()
	}
	r.current = Empty[T]()

	if n := len(r.queue); n > 0 {
		r.logger.Debug("Dropping unread tasks", "tasks", n)
	}
	r.queue = nil
	r.files = nil
	r.state = Closed
	return err
}

// InputFile implements Files.
func (r *Reader[T]) InputFile(t *task.FileScanTask) (fileio.InputFile, error) {
	if t.IsDataTask() {
		return nil, fmt.Errorf("%w: invalid task type", ErrInvalidUsage)
	}
	if r.files == nil {
		return nil, ErrReaderClosed
	}
	return r.files.ForTask(t)
}

// InputFileAt implements Files.
func (r *Reader[T]) InputFileAt(location string) (fileio.InputFile, error) {
	if r.files == nil {
		return nil, ErrReaderClosed
	}
	return r.files.Lookup(location)
}

// Collect reads every remaining row of r. It does not close r.
func Collect[T any](r *Reader[T]) ([]T, error) {
	var rows []T
	for r.Next() {
		rows = append(rows, r.Value())
	}
	return rows, r.Err()
}

// IsFileError reports whether err is attributed to a file and returns its
// location.
func IsFileError(err error) (string, bool) {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Location, true
	}
	return "", false
}
