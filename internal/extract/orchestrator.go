package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/llmtext"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/retry"
)

// Result is the outcome of one extraction call for a single category.
type Result struct {
	Phrases []string
	Status  domain.UnitStatus
	Retries int
}

// Orchestrator issues per-category extraction calls against the generator.
// It never returns an error: callers inspect Result.Status.
type Orchestrator struct {
	generator   ports.TextGenerator
	policy      retry.Policy
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// New wires a generator with the shared retry policy.
func New(generator ports.TextGenerator, policy retry.Policy, maxTokens int, temperature float64, logger *slog.Logger) *Orchestrator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Orchestrator{
		generator:   generator,
		policy:      policy,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Extract asks for targetCount short phrases from the compressed corpus of
// one category and parses the numbered-list response. All attempts failing
// yields an empty list with a failed status, not an error.
func (o *Orchestrator) Extract(ctx context.Context, category, compressed string, targetCount int) Result {
	if targetCount <= 0 {
		targetCount = 15
	}
	if strings.TrimSpace(compressed) == "" {
		return Result{Status: domain.UnitFailed}
	}

	prompt := buildPrompt(category, compressed, targetCount)

	var raw string
	retries, err := o.policy.Do(ctx, func(ctx context.Context) error {
		response, submitErr := o.generator.Submit(ctx, prompt, o.maxTokens, o.temperature)
		if submitErr != nil {
			return submitErr
		}
		raw = response
		return nil
	})
	if err != nil {
		o.debug("extraction failed", "category", category, "retries", retries, "error", err)
		return Result{Status: domain.UnitFailed, Retries: retries}
	}

	phrases := llmtext.ParseNumberedList(raw)
	if len(phrases) > targetCount {
		phrases = phrases[:targetCount]
	}

	status := domain.UnitComplete
	switch {
	case len(phrases) == 0:
		status = domain.UnitFailed
	case len(phrases) < targetCount:
		status = domain.UnitPartial
	}

	o.debug("extraction done", "category", category, "phrases", len(phrases), "status", status)
	return Result{Phrases: phrases, Status: status, Retries: retries}
}

func buildPrompt(category, compressed string, targetCount int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Below is a compressed digest of today's %q news items, ", category))
	sb.WriteString("with snippets separated by | characters.\n\n")
	sb.WriteString(compressed)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("List exactly %d short trending phrases from this digest, ", targetCount))
	sb.WriteString("one per line, numbered like \"1. phrase\". ")
	sb.WriteString("Each phrase must be 2-4 words, no personal names, no commentary.")
	return sb.String()
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
