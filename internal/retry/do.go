package retry

import (
	"context"
	"fmt"
	"time"
)

// Sleeper waits for d or until ctx is done. Tests replace it to avoid real sleeps.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, the policy's retry budget is spent or ctx ends.
// onRetry, when set, is called before each wait with the retry number and the failure.
func Do(ctx context.Context, p Policy, sleep Sleeper, onRetry func(retry int, err error), fn func(context.Context) error) error {
	if sleep == nil {
		sleep = SleepContext
	}
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !p.Unbounded() && attempt >= p.MaxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
		if serr := sleep(ctx, p.Delay(attempt+1)); serr != nil {
			return fmt.Errorf("retry interrupted after %d attempts: %w", attempt+1, err)
		}
	}
}
