package retry

import (
	"context"
	"fmt"
	"time"
)

// Config controls how Do retries a failing operation.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration // delay is BaseDelay * 2^attempt
}

// Do runs fn until it succeeds or MaxAttempts is exhausted. The delay
// before attempt n+1 is BaseDelay * 2^n. Context cancellation aborts the
// wait between attempts.
func Do(ctx context.Context, config Config, fn func() error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == attempts {
				return fmt.Errorf("failed after %d attempts: %w", attempts, err)
			}

			delay := config.BaseDelay * (1 << attempt)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
