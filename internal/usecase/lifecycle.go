package usecase

import "TrendScanner/internal/domain"

// Release drops every reference to per-category record lists: list contents
// are zeroed, then the map entries removed, so nothing downstream can keep a
// large raw-text corpus alive. It runs exactly once per pipeline run,
// regardless of how earlier stages ended.
func Release(buckets ...domain.Bucket) {
	for _, bucket := range buckets {
		for category, records := range bucket {
			clear(records)
			bucket[category] = nil
			delete(bucket, category)
		}
	}
}
