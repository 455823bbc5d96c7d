package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TrendScanner/internal/classify"
	"TrendScanner/internal/compress"
	"TrendScanner/internal/config"
	"TrendScanner/internal/domain"
	"TrendScanner/internal/extract"
	"TrendScanner/internal/merge"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/retry"
	"TrendScanner/internal/score"
	"TrendScanner/internal/selector"
)

// PipelineDeps wires the driven adapters into the extraction pipeline.
type PipelineDeps struct {
	Source     ports.RecordSource
	Generator  ports.TextGenerator
	Repository ports.SelectionRepository
	Options    config.PipelineConfig
	Logger     *slog.Logger
}

// Pipeline implements the trend-extraction workflow: classify, compress,
// extract, merge, re-rank, score, release.
type Pipeline struct {
	source     ports.RecordSource
	generator  ports.TextGenerator
	repository ports.SelectionRepository
	opts       config.PipelineConfig
	classifier *classify.Classifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		generator:  deps.Generator,
		repository: deps.Repository,
		opts:       deps.Options,
		classifier: classify.New(),
		logger:     deps.Logger,
	}
}

// ProcessDay fetches the day's records and runs one extraction pass.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (domain.FinalSelection, domain.PipelineReport, error) {
	if p.source == nil {
		return nil, domain.PipelineReport{}, fmt.Errorf("record source is not configured")
	}

	records, err := p.source.FetchRecords(ctx, day)
	if err != nil {
		return nil, domain.PipelineReport{}, fmt.Errorf("fetch records: %w", err)
	}

	return p.Process(ctx, records)
}

// Process runs the whole pipeline over an in-memory record set. The corpus
// is released before returning, on every path. The only hard failure is an
// empty record set; every other problem degrades into the report.
func (p *Pipeline) Process(ctx context.Context, records []domain.RawRecord) (domain.FinalSelection, domain.PipelineReport, error) {
	report := domain.PipelineReport{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Units:      map[domain.UnitKey]domain.UnitOutcome{},
		Categories: map[string]domain.UnitStatus{},
	}

	if len(records) == 0 {
		report.Overall = domain.RunFailed
		report.FinishedAt = time.Now().UTC()
		return nil, report, domain.ErrEmptyCorpus
	}

	bucket, perSource, sources := p.classifyRecords(records)
	defer func() {
		buckets := make([]domain.Bucket, 0, 1+len(perSource))
		buckets = append(buckets, bucket)
		for _, b := range perSource {
			buckets = append(buckets, b)
		}
		Release(buckets...)
	}()
	p.debug("records classified", "records", len(records), "sources", len(sources), "categories", len(bucket))

	corpora := p.compressCorpora(perSource)

	policy := retry.Policy{
		MaxAttempts:    p.opts.MaxRetries,
		Delay:          time.Second,
		BackoffFactor:  2,
		AttemptTimeout: p.opts.AttemptTimeout(),
		Cooldown:       p.opts.RateLimitCooldown(),
	}

	orchestrator := extract.New(p.generator, policy, 0, 0.3, p.logger)
	merger := merge.New(orchestrator.Extract, merge.Options{
		Mode:           p.opts.Mode,
		Target:         p.opts.ExtractionTarget,
		InterCallDelay: p.opts.InterCallDelay(),
		MaxConcurrency: p.opts.MaxConcurrency,
		OverallTimeout: p.opts.OverallTimeout(),
	}, p.logger)

	pool, outcomes := merger.Run(ctx, sources, corpora)
	report.Units = outcomes
	p.debug("candidate pool merged", "categories", len(pool))

	sel := selector.New(p.generator, policy, 0, 0.2, p.logger)
	outcome := sel.Select(ctx, pool, p.opts.MaxPhrasesPerCategory)
	for category := range outcome.Selection {
		if outcome.Degraded[category] {
			report.Categories[category] = domain.UnitDegraded
		} else {
			report.Categories[category] = domain.UnitComplete
		}
	}

	score.Apply(outcome.Selection, bucket)

	report.FinishedAt = time.Now().UTC()
	report.Overall = domain.RunComplete
	if report.Degraded() {
		report.Overall = domain.RunCompleteWithFails
	}

	if p.repository != nil {
		if err := p.repository.SaveSelection(ctx, report, outcome.Selection); err != nil {
			p.warn("persist selection", "run", report.RunID, "error", err)
		}
	}

	return outcome.Selection, report, nil
}

// classifyRecords fills the global scoring bucket and the per-source buckets
// the compressor works from. Source order follows first appearance, keeping
// sequential processing reproducible.
func (p *Pipeline) classifyRecords(records []domain.RawRecord) (domain.Bucket, map[string]domain.Bucket, []string) {
	bucket := domain.Bucket{}
	perSource := map[string]domain.Bucket{}
	var sources []string

	known := map[string]struct{}{}
	for _, category := range classify.Categories {
		known[category] = struct{}{}
	}

	for _, record := range records {
		category := record.CategoryHint
		if _, ok := known[category]; !ok {
			category = p.classifier.Classify(record.SourceName, record.URL, record.Title, record.Heading)
		}

		bucket[category] = append(bucket[category], record)

		if _, seen := perSource[record.SourceName]; !seen {
			perSource[record.SourceName] = domain.Bucket{}
			sources = append(sources, record.SourceName)
		}
		perSource[record.SourceName][category] = append(perSource[record.SourceName][category], record)
	}

	return bucket, perSource, sources
}

func (p *Pipeline) compressCorpora(perSource map[string]domain.Bucket) merge.Corpora {
	compressor := compress.New(p.opts.CompressionMaxChars, p.opts.CompressionMaxRecords, p.opts.DedupOverlapThreshold)

	corpora := merge.Corpora{}
	for source, b := range perSource {
		corpora[source] = map[string]string{}
		for category, recs := range b {
			corpora[source][category] = compressor.Compress(recs)
		}
	}
	return corpora
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
