// Package retry provides the single bounded-attempt combinator shared by
// every network call to the text-generation service.
package retry

import (
	"context"
	"errors"
	"time"

	"TrendScanner/internal/ports"
)

// Policy describes how a call is retried. The zero value means one attempt,
// no delay, no per-attempt timeout.
type Policy struct {
	MaxAttempts    int
	Delay          time.Duration
	BackoffFactor  float64
	AttemptTimeout time.Duration
	// Cooldown applies after a rate-limit signal when the server did not
	// name its own retry-after.
	Cooldown time.Duration
}

// Do runs op until it succeeds, attempts run out, or ctx is done. It returns
// the number of retries performed (attempts beyond the first) alongside the
// last error. Rate-limit errors wait the server-specified or configured
// cooldown instead of the regular backoff delay.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.Delay
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		attemptCtx := ctx
		cancel := func() {}
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		lastErr = op(attemptCtx)
		cancel()

		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := delay
		if cooldown, limited := rateLimitWait(lastErr, p.Cooldown); limited {
			wait = cooldown
		} else if p.BackoffFactor > 1 {
			delay = time.Duration(float64(delay) * p.BackoffFactor)
		}

		if err := sleep(ctx, wait); err != nil {
			return attempt + 1, err
		}
	}

	return attempts - 1, lastErr
}

func rateLimitWait(err error, fallback time.Duration) (time.Duration, bool) {
	if !errors.Is(err, ports.ErrRateLimited) {
		return 0, false
	}
	var rl *ports.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return fallback, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
