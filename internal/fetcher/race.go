package fetcher

import (
	"context"
	"fmt"
	"time"
)

// Race bounds load by timeout. Whichever of load and the timer settles first wins.
// A late answer from load is dropped; the underlying call is left to finish on its own.
func Race[T any](load Loader[T], timeout time.Duration) Loader[T] {
	return func(ctx context.Context) (T, error) {
		type result struct {
			value T
			err   error
		}

		// Buffered so a late loader never blocks after the race is lost
		done := make(chan result, 1)
		go func() {
			v, err := load(ctx)
			done <- result{value: v, err: err}
		}()

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		var zero T
		select {
		case r := <-done:
			return r.value, r.err
		case <-timer.C:
			return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
