package compress

import (
	"sort"
	"strings"
	"unicode"

	"TrendScanner/internal/domain"
)

const snippetSeparator = " | "

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "have": {}, "has": {}, "was": {}, "were": {}, "will": {},
	"are": {}, "not": {}, "but": {}, "his": {}, "her": {}, "its": {},
	"into": {}, "over": {}, "after": {}, "been": {}, "more": {}, "than": {},
	"say": {}, "says": {}, "said": {},
}

// Compressor reduces many records into one bounded text blob per category.
// Output is deterministic for a given input list and settings.
type Compressor struct {
	maxChars         int
	maxRecords       int
	overlapThreshold float64
}

// New builds a compressor with the given character budget, record cap, and
// pairwise overlap threshold for snippet deduplication.
func New(maxChars, maxRecords int, overlapThreshold float64) *Compressor {
	if maxChars <= 0 {
		maxChars = 4000
	}
	if maxRecords <= 0 {
		maxRecords = 400
	}
	if overlapThreshold <= 0 {
		overlapThreshold = 0.4
	}
	return &Compressor{
		maxChars:         maxChars,
		maxRecords:       maxRecords,
		overlapThreshold: overlapThreshold,
	}
}

// Compress extracts a salient snippet per record, drops lexically overlapping
// snippets, and assembles the rest up to the character budget. Truncation
// happens at snippet boundaries, never mid-token.
func (c *Compressor) Compress(records []domain.RawRecord) string {
	if len(records) > c.maxRecords {
		records = records[:c.maxRecords]
	}

	var (
		keptSets  []map[string]struct{}
		assembled strings.Builder
	)

	for _, record := range records {
		snippet := salientSnippet(record.Title + " " + record.Heading)
		if snippet == "" {
			continue
		}

		set := tokenSet(snippet)
		if overlapsAny(set, keptSets, c.overlapThreshold) {
			continue
		}

		addition := len(snippet)
		if assembled.Len() > 0 {
			addition += len(snippetSeparator)
		}
		if assembled.Len()+addition > c.maxChars {
			break
		}

		if assembled.Len() > 0 {
			assembled.WriteString(snippetSeparator)
		}
		assembled.WriteString(snippet)
		keptSets = append(keptSets, set)
	}

	return assembled.String()
}

// salientSnippet keeps the two highest-scoring single terms plus the best
// adjacent two-word phrase. Scoring favors repeated terms and early position.
func salientSnippet(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}

	freq := map[string]int{}
	first := map[string]int{}
	for i, tok := range tokens {
		freq[tok]++
		if _, seen := first[tok]; !seen {
			first[tok] = i
		}
	}

	unique := make([]string, 0, len(freq))
	for tok := range freq {
		unique = append(unique, tok)
	}
	sort.Slice(unique, func(i, j int) bool {
		si := score(freq[unique[i]], first[unique[i]])
		sj := score(freq[unique[j]], first[unique[j]])
		if si != sj {
			return si > sj
		}
		return first[unique[i]] < first[unique[j]]
	})

	picked := unique
	if len(picked) > 2 {
		picked = picked[:2]
	}

	bigram := bestBigram(tokens, freq)

	parts := make([]string, 0, 3)
	seen := map[string]struct{}{}
	for _, part := range append(append([]string{}, picked...), bigram) {
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		parts = append(parts, part)
	}

	return strings.Join(parts, " ")
}

func score(frequency, firstIndex int) float64 {
	return float64(frequency) + 1.0/float64(1+firstIndex)
}

func bestBigram(tokens []string, freq map[string]int) string {
	var (
		best      string
		bestScore float64
	)
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == tokens[i+1] {
			continue
		}
		s := float64(freq[tokens[i]]+freq[tokens[i+1]]) + 1.0/float64(1+i)
		if s > bestScore {
			bestScore = s
			best = tokens[i] + " " + tokens[i+1]
		}
	}
	return best
}

// Tokenize lowercases and splits on non-letter/number runes, dropping
// stopwords and single-rune fragments.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < 2 {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func tokenSet(snippet string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range strings.Fields(snippet) {
		set[tok] = struct{}{}
	}
	return set
}

// Overlap is the shared-token ratio against the smaller of the two sets.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

func overlapsAny(set map[string]struct{}, kept []map[string]struct{}, threshold float64) bool {
	for _, other := range kept {
		if Overlap(set, other) > threshold {
			return true
		}
	}
	return false
}
