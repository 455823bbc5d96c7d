package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"TrendScanner/internal/ports"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}
	calls := 0
	retries, err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || retries != 0 {
		t.Fatalf("expected 1 call / 0 retries, got %d / %d", calls, retries)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}
	calls := 0
	retries, err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || retries != 2 {
		t.Fatalf("expected 3 calls / 2 retries, got %d / %d", calls, retries)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, BackoffFactor: 2}
	boom := errors.New("boom")
	calls := 0
	retries, err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 3 || retries != 2 {
		t.Fatalf("expected 3 calls / 2 retries, got %d / %d", calls, retries)
	}
}

func TestDoHonorsServerRetryAfter(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 2, Delay: time.Millisecond, Cooldown: time.Hour}
	calls := 0
	start := time.Now()
	_, err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &ports.RateLimitError{RetryAfter: 5 * time.Millisecond}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	// The one-hour fallback cooldown must not have been used.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("waited too long: %s", elapsed)
	}
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3}
	calls := 0
	_, err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls, got %d", calls)
	}
}

func TestDoAttemptTimeout(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 1, AttemptTimeout: 5 * time.Millisecond}
	_, err := p.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
