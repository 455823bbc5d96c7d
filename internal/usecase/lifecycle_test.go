package usecase

import (
	"testing"

	"TrendScanner/internal/domain"
)

func TestReleaseClearsBucketsAndRecords(t *testing.T) {
	t.Parallel()

	records := []domain.RawRecord{
		{Title: "world cup qualifiers", Heading: "squad named", SourceName: "newsfeed"},
		{Title: "fuel price climbs", Heading: "strike looms", SourceName: "newsfeed"},
	}
	bucket := domain.Bucket{"sports": records}

	// A stale alias of the record list must not keep raw text reachable.
	alias := records

	Release(bucket)

	if len(bucket) != 0 {
		t.Fatalf("bucket should have zero entries, got %d", len(bucket))
	}
	for i, record := range alias {
		if record != (domain.RawRecord{}) {
			t.Fatalf("record %d still holds text: %+v", i, record)
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	bucket := domain.Bucket{"sports": {{Title: "x"}}}
	Release(bucket)
	Release(bucket)

	if len(bucket) != 0 {
		t.Fatalf("bucket should stay empty, got %d", len(bucket))
	}
}

func TestReleaseMultipleBuckets(t *testing.T) {
	t.Parallel()

	a := domain.Bucket{"sports": {{Title: "x"}}}
	b := domain.Bucket{"economy": {{Title: "y"}}}

	Release(a, b)

	if len(a) != 0 || len(b) != 0 {
		t.Fatalf("all buckets should be empty, got %d and %d", len(a), len(b))
	}
}
