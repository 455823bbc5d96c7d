package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/retry"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func numbered(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteString(fmt.Sprintf("%d. phrase number %d\n", i, i))
	}
	return sb.String()
}

func TestExtractComplete(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: numbered(5)}
	o := New(gen, retry.Policy{MaxAttempts: 3}, 0, 0.3, nil)

	res := o.Extract(context.Background(), "sports", "cricket win | final match", 5)
	if res.Status != domain.UnitComplete {
		t.Fatalf("expected complete, got %s", res.Status)
	}
	if len(res.Phrases) != 5 {
		t.Fatalf("expected 5 phrases, got %d", len(res.Phrases))
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 call, got %d", gen.calls)
	}
}

func TestExtractCapsAtTargetCount(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: numbered(20)}
	o := New(gen, retry.Policy{MaxAttempts: 1}, 0, 0.3, nil)

	res := o.Extract(context.Background(), "sports", "cricket", 15)
	if len(res.Phrases) != 15 {
		t.Fatalf("expected cap at 15, got %d", len(res.Phrases))
	}
}

func TestExtractPartialWhenShort(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: numbered(3)}
	o := New(gen, retry.Policy{MaxAttempts: 1}, 0, 0.3, nil)

	res := o.Extract(context.Background(), "sports", "cricket", 15)
	if res.Status != domain.UnitPartial {
		t.Fatalf("expected partial, got %s", res.Status)
	}
}

func TestExtractFailedAfterRetries(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("unreachable")}
	o := New(gen, retry.Policy{MaxAttempts: 3}, 0, 0.3, nil)

	res := o.Extract(context.Background(), "sports", "cricket", 15)
	if res.Status != domain.UnitFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if len(res.Phrases) != 0 {
		t.Fatalf("expected no phrases, got %v", res.Phrases)
	}
	if gen.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", gen.calls)
	}
	if res.Retries != 2 {
		t.Fatalf("expected 2 retries recorded, got %d", res.Retries)
	}
}

func TestExtractEmptyCorpusFailsWithoutCalling(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: numbered(5)}
	o := New(gen, retry.Policy{MaxAttempts: 3}, 0, 0.3, nil)

	res := o.Extract(context.Background(), "sports", "   ", 5)
	if res.Status != domain.UnitFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generator calls, got %d", gen.calls)
	}
}
