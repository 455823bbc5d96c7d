package merge

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/extract"
)

// Scheduling modes, selected by configuration.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Corpora holds the compressed text per source and category.
type Corpora map[string]map[string]string

// ExtractFunc runs one extraction unit. Wired to extract.Orchestrator in
// production; tests substitute fakes.
type ExtractFunc func(ctx context.Context, category, compressed string, targetCount int) extract.Result

// Options tune one merge batch.
type Options struct {
	Mode           string
	Target         int
	InterCallDelay time.Duration
	MaxConcurrency int
	OverallTimeout time.Duration
}

// Merger fans extraction calls out over sources and categories and
// concatenates the results into one candidate pool per category.
type Merger struct {
	extract ExtractFunc
	opts    Options
	logger  *slog.Logger
}

// New builds a merger around an extraction function.
func New(fn ExtractFunc, opts Options, logger *slog.Logger) *Merger {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	return &Merger{extract: fn, opts: opts, logger: logger}
}

type task struct {
	source   string
	category string
	text     string
}

// Run executes every source×category unit and merges whatever completed.
// Candidate order is stable: sources in the given order, categories sorted,
// phrases in extraction order. A failed unit contributes an empty list.
func (m *Merger) Run(ctx context.Context, sources []string, corpora Corpora) (map[string][]domain.CandidatePhrase, map[domain.UnitKey]domain.UnitOutcome) {
	tasks := buildTasks(sources, corpora)
	results := make([]extract.Result, len(tasks))

	if m.opts.Mode == ModeParallel {
		m.runParallel(ctx, tasks, results)
	} else {
		m.runSequential(ctx, tasks, results)
	}

	pool := map[string][]domain.CandidatePhrase{}
	outcomes := map[domain.UnitKey]domain.UnitOutcome{}
	for i, t := range tasks {
		res := results[i]
		outcomes[domain.UnitKey{Source: t.source, Category: t.category}] = domain.UnitOutcome{
			Status:  res.Status,
			Retries: res.Retries,
		}
		for _, phrase := range res.Phrases {
			pool[t.category] = append(pool[t.category], domain.CandidatePhrase{
				Text:         phrase,
				Category:     t.category,
				OriginSource: t.source,
			})
		}
	}
	return pool, outcomes
}

func (m *Merger) runSequential(ctx context.Context, tasks []task, results []extract.Result) {
	for i, t := range tasks {
		if ctx.Err() != nil {
			results[i] = extract.Result{Status: domain.UnitFailed}
			continue
		}
		if i > 0 && m.opts.InterCallDelay > 0 {
			timer := time.NewTimer(m.opts.InterCallDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				results[i] = extract.Result{Status: domain.UnitFailed}
				continue
			case <-timer.C:
			}
		}
		results[i] = m.extract(ctx, t.category, t.text, m.opts.Target)
	}
}

func (m *Merger) runParallel(ctx context.Context, tasks []task, results []extract.Result) {
	batchCtx := ctx
	cancel := func() {}
	if m.opts.OverallTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, m.opts.OverallTimeout)
	}
	defer cancel()

	group, groupCtx := errgroup.WithContext(batchCtx)
	group.SetLimit(m.opts.MaxConcurrency)
	for i, t := range tasks {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				results[i] = extract.Result{Status: domain.UnitFailed}
				return nil
			}
			results[i] = m.extract(groupCtx, t.category, t.text, m.opts.Target)
			return nil
		})
	}
	// Tasks report failure through their result slot, never as an error.
	_ = group.Wait()

	if m.logger != nil && batchCtx.Err() != nil {
		m.logger.Warn("merge batch hit overall timeout", "tasks", len(tasks))
	}
}

func buildTasks(sources []string, corpora Corpora) []task {
	var tasks []task
	for _, source := range sources {
		categories := make([]string, 0, len(corpora[source]))
		for category := range corpora[source] {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			tasks = append(tasks, task{
				source:   source,
				category: category,
				text:     corpora[source][category],
			})
		}
	}
	return tasks
}
