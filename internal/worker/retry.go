package worker

import (
	"context"
	"time"
)

// MaxAttempts is how often a job handler tries before giving up.
const MaxAttempts = 3

// retryBaseDelay is the first backoff step; tests shrink it.
var retryBaseDelay = time.Second

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, base, 2×base, ...). Returns the last error if all fail.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * retryBaseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
