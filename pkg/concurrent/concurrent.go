package concurrent

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Each runs action for every item in its own goroutine, at most limit at a
// time (no limit when limit <= 0). The first error cancels the context seen
// by the remaining actions and is returned.
func Each[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			return action(gctx, item)
		})
	}
	return g.Wait()
}

// Collect is Each without cancellation: every action runs and all errors are
// joined.
func Collect[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	var (
		mu  sync.Mutex
		all error
	)
	g := errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			if err := action(ctx, item); err != nil {
				mu.Lock()
				all = errors.Join(all, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return all
}
