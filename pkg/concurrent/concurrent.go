// Package concurrent supervises groups of long-running goroutines.
package concurrent

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-running function that returns when ctx is done.
type Runner func(ctx context.Context) error

// Run starts every runner in its own goroutine and waits for all of them.
// The first runner to return, with or without an error, cancels the shared
// context so the others wind down. context.Canceled is not reported.
func Run(ctx context.Context, runners ...Runner) error {
	group, groupCtx := errgroup.WithContext(ctx)
	stopCtx, stop := context.WithCancel(groupCtx)
	defer stop()

	for _, runner := range runners {
		if runner == nil {
			continue
		}
		group.Go(func() error {
			defer stop()
			return runner(stopCtx)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Until turns a channel into a runner that returns once the channel is closed
// or receives.
func Until[T any](ch <-chan T) Runner {
	return func(ctx context.Context) error {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		return nil
	}
}
