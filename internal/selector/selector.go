package selector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/llmtext"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/retry"
)

// Outcome carries the final selection plus which categories had to fall back
// to pool order, and the raw response for the caller's records.
type Outcome struct {
	Selection domain.FinalSelection
	Degraded  map[string]bool
	Raw       string
	Retries   int
}

// Selector issues the single consolidated re-rank call and cuts the merged
// pool down to at most N phrases per category.
type Selector struct {
	generator   ports.TextGenerator
	policy      retry.Policy
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// New wires the generator and retry policy into a selector.
func New(generator ports.TextGenerator, policy retry.Policy, maxTokens int, temperature float64, logger *slog.Logger) *Selector {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Selector{
		generator:   generator,
		policy:      policy,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Select re-ranks the merged pool. A category whose section cannot be parsed
// from the response degrades to the top pool candidates instead of failing
// the whole selection.
func (s *Selector) Select(ctx context.Context, pool map[string][]domain.CandidatePhrase, nPerCategory int) Outcome {
	if nPerCategory <= 0 {
		nPerCategory = 10
	}

	outcome := Outcome{
		Selection: domain.FinalSelection{},
		Degraded:  map[string]bool{},
	}

	categories := sortedCategories(pool)
	if len(categories) == 0 {
		return outcome
	}

	prompt := buildPrompt(categories, pool, nPerCategory)

	var raw string
	retries, err := s.policy.Do(ctx, func(ctx context.Context) error {
		response, submitErr := s.generator.Submit(ctx, prompt, s.maxTokens, s.temperature)
		if submitErr != nil {
			return submitErr
		}
		raw = response
		return nil
	})
	outcome.Retries = retries
	outcome.Raw = raw

	var sections []llmtext.Section
	if err == nil {
		sections, err = llmtext.ParseSections(raw)
	}
	if err != nil {
		s.warn("final selection degraded for all categories", "error", err)
		for _, category := range categories {
			outcome.Selection[category] = fallback(pool[category], nPerCategory)
			outcome.Degraded[category] = true
		}
		return outcome
	}

	byCategory := matchSections(sections, categories)
	for _, category := range categories {
		items, ok := byCategory[category]
		if !ok || len(items) == 0 {
			outcome.Selection[category] = fallback(pool[category], nPerCategory)
			outcome.Degraded[category] = true
			continue
		}
		outcome.Selection[category] = pick(items, pool[category], category, nPerCategory)
	}
	return outcome
}

func buildPrompt(categories []string, pool map[string][]domain.CandidatePhrase, n int) string {
	var sb strings.Builder
	sb.WriteString("Here are candidate trending phrases grouped by news category.\n\n")
	for _, category := range categories {
		sb.WriteString(category)
		sb.WriteString(":\n")
		for _, candidate := range pool[category] {
			sb.WriteString("- ")
			sb.WriteString(candidate.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("For every category above, pick the best %d phrases. ", n))
	sb.WriteString("Phrases within a category must not repeat each other's meaning, ")
	sb.WriteString("must be 2-4 words long, and must not contain personal names.\n")
	sb.WriteString("Answer with one block per category: the category name followed by ")
	sb.WriteString("a colon, then the picks as numbered lines.")
	return sb.String()
}

// pick keeps response items that survive normalized dedup, attributing each
// back to the pool candidate it came from when one matches.
func pick(items []string, candidates []domain.CandidatePhrase, category string, n int) []domain.CandidatePhrase {
	sources := map[string]string{}
	for _, candidate := range candidates {
		key := Normalize(candidate.Text)
		if _, seen := sources[key]; !seen {
			sources[key] = candidate.OriginSource
		}
	}

	var (
		accepted []domain.CandidatePhrase
		keys     []string
	)
	for _, item := range items {
		if len(accepted) >= n {
			break
		}
		key := Normalize(item)
		if key == "" || nearDuplicate(key, keys) {
			continue
		}
		source, ok := sources[key]
		if !ok {
			source = "model"
		}
		accepted = append(accepted, domain.CandidatePhrase{
			Text:         item,
			Category:     category,
			OriginSource: source,
		})
		keys = append(keys, key)
	}
	return accepted
}

// fallback takes pool-order candidates with the same dedup discipline.
func fallback(candidates []domain.CandidatePhrase, n int) []domain.CandidatePhrase {
	var (
		accepted []domain.CandidatePhrase
		keys     []string
	)
	for _, candidate := range candidates {
		if len(accepted) >= n {
			break
		}
		key := Normalize(candidate.Text)
		if key == "" || nearDuplicate(key, keys) {
			continue
		}
		accepted = append(accepted, candidate)
		keys = append(keys, key)
	}
	return accepted
}

func matchSections(sections []llmtext.Section, categories []string) map[string][]string {
	normalized := map[string]string{}
	for _, category := range categories {
		normalized[Normalize(category)] = category
	}

	out := map[string][]string{}
	for _, section := range sections {
		header := Normalize(section.Header)
		category, ok := normalized[header]
		if !ok {
			for key, name := range normalized {
				if strings.Contains(header, key) {
					category, ok = name, true
					break
				}
			}
		}
		if !ok {
			continue
		}
		out[category] = append(out[category], section.Items...)
	}
	return out
}

// Normalize case-folds, strips punctuation, and collapses whitespace so two
// renderings of the same phrase compare equal.
func Normalize(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// nearDuplicate rejects a key equal to, containing, or contained in any
// already-accepted key.
func nearDuplicate(key string, accepted []string) bool {
	for _, other := range accepted {
		if key == other {
			return true
		}
		if strings.Contains(" "+other+" ", " "+key+" ") || strings.Contains(" "+key+" ", " "+other+" ") {
			return true
		}
	}
	return false
}

func sortedCategories(pool map[string][]domain.CandidatePhrase) []string {
	categories := make([]string, 0, len(pool))
	for category := range pool {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func (s *Selector) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
