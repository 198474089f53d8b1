package booking

import (
	"context"
	"time"
)

// RetryOptions configures one retry run. OnRetry, when set, observes each
// failed attempt before the backoff sleep; it is for logging only and cannot
// change the outcome.
type RetryOptions struct {
	MaxRetries   int
	InitialDelay time.Duration
	OnRetry      func(err error, attempt int, delay time.Duration)
}

// RetryWithBackoff runs op up to MaxRetries+1 times, doubling the delay
// between attempts starting from InitialDelay. The executor is agnostic to
// what kind of failure op returns; callers wrap only operations that are
// worth retrying. After the final attempt the last error is returned
// unchanged. The context cancels the backoff sleeps between attempts, never
// an attempt already in flight.
func RetryWithBackoff[T any](ctx context.Context, op func(context.Context) (T, error), opts RetryOptions) (T, error) {
	var zero T
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	delay := opts.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries+1; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == opts.MaxRetries+1 {
			break
		}
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt, delay)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return zero, lastErr
}
