package application

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEach calls fn for every index in [0, n) with at most limit calls in flight.
func forEach(ctx context.Context, n, limit int, fn func(ctx context.Context, index int)) error {
	if limit < 1 {
		limit = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for index := 0; index < n; index++ {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			fn(groupCtx, index)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
