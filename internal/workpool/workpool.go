// Package workpool runs indexed tasks on a bounded set of goroutines.
package workpool

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Task processes item i on the given worker. Worker ids are in [0, Workers(n, workers)).
type Task func(ctx context.Context, worker, i int) error

// Workers returns the number of goroutines Run starts for n items.
func Workers(n, workers int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	return workers
}

// Run calls task for every index in [0, n). Workers claim indices from a shared
// atomic counter. The first error cancels the context seen by the remaining
// tasks and is returned.
func Run(ctx context.Context, n, workers int, task Task) error {
	if n <= 0 {
		return nil
	}
	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < Workers(n, workers); w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				if err := task(gctx, w, i); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
