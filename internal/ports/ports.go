package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendScanner/internal/domain"
)

// RecordSource pulls fresh records from upstream feeds. Records carry their
// originating SourceName so the pipeline can keep per-source attribution.
type RecordSource interface {
	FetchRecords(ctx context.Context, day time.Time) ([]domain.RawRecord, error)
}

// TextGenerator is the contract this system requires from a generic
// text-generation service. Implementations map transport failures onto the
// error kinds below so callers can branch with errors.Is.
type TextGenerator interface {
	Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// SelectionRepository persists a finished selection for the surrounding
// system. Raw records never pass through this port.
type SelectionRepository interface {
	SaveSelection(ctx context.Context, report domain.PipelineReport, selection domain.FinalSelection) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Error kinds a TextGenerator may return.
var (
	ErrRateLimited = errors.New("generator rate limited")
	ErrTimeout     = errors.New("generator timed out")
	ErrAuthFailed  = errors.New("generator auth failed")
	ErrServerError = errors.New("generator server error")
)

// RateLimitError carries the server-requested cooldown when one was given.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("generator rate limited, retry after %s", e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

// Unwrap lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
