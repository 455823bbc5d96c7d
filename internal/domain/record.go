package domain

import "errors"

// ErrEmptyCorpus is the only hard failure a pipeline run surfaces: nothing
// usable arrived at classification time.
var ErrEmptyCorpus = errors.New("no usable records to process")

// RawRecord is a single ingested news/social item. It lives only for the
// duration of one pipeline run and is never persisted.
type RawRecord struct {
	Title        string
	Heading      string
	SourceName   string
	URL          string
	CategoryHint string
}

// Bucket maps a category name to the records classified into it. A bucket is
// owned exclusively by one run: written during classification, read-only
// afterwards, cleared by Release.
type Bucket map[string][]RawRecord

// CandidatePhrase is one trending-phrase candidate. Frequency is a
// placeholder until the scorer fills it in.
type CandidatePhrase struct {
	Text         string
	Category     string
	OriginSource string
	Frequency    int
}

// FinalSelection holds the post-rerank phrase lists, at most N per category.
type FinalSelection map[string][]CandidatePhrase
