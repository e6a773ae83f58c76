package scan

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hugr-lab/tablescan-go/task"
)

// ReadUnits runs one Reader per unit of work on its own goroutine, at most
// limit at a time (limit <= 0 means no limit), and calls fn with each. Readers
// are closed after fn returns. The first error cancels the remaining readers
// and is returned.
func ReadUnits[T any](ctx context.Context, units []task.CombinedScanTask, cfg Config[T], limit int, fn func(unit int, r *Reader[T]) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range units {
		g.Go(func() error {
			r, err := NewReader(gctx, units[i], cfg)
			if err != nil {
				return fmt.Errorf("unit %d: %w", i, err)
			}
			defer r.Close()
			if err := fn(i, r); err != nil {
				return fmt.Errorf("unit %d: %w", i, err)
			}
			if err := r.Err(); err != nil {
				return fmt.Errorf("unit %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}
