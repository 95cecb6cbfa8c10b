// Package retry implements the delivery retry policy: a bounded number of
// attempts with doubling delays, retrying only errors the caller classifies
// as retryable. Detection never goes through here - source failures are
// fatal for the run.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes one retry discipline.
type Policy struct {
	// MaxAttempts is the total number of attempts, first try included.
	// Values below one behave as one.
	MaxAttempts int

	// InitialDelay is the wait after the first failed attempt. The wait
	// doubles after each further failure: InitialDelay x 2^attempt.
	InitialDelay time.Duration

	// Retryable classifies errors. Only errors it accepts are retried;
	// nil means nothing is retryable.
	Retryable func(error) bool

	// Sleep waits between attempts. Nil uses a context-aware timer wait.
	// Tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn under the policy. It returns nil on the first success, the
// original error when it is not retryable, and the last error wrapped with
// the attempt count when all attempts are spent.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitTimer
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		delay := p.InitialDelay << attempt
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("retry wait: %w", sleepErr)
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

// waitTimer blocks for d or until the context is done.
func waitTimer(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
