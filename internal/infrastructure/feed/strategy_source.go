package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrendScanner/internal/config"
	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/scanner"
)

// StrategySource implements RecordSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.RecordSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchRecords iterates over configured sites and executes their scanners.
// Records keep the site name as SourceName for per-source merging.
func (s *StrategySource) FetchRecords(ctx context.Context, day time.Time) ([]domain.RawRecord, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch records", "sites", len(s.sites), "day", day.Format("2006-01-02"))

	var aggregated []domain.RawRecord
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Day:        day,
			SiteName:   site.Name,
			Options:    site.Options,
			Categories: toScannerCategories(site.Categories),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for i := range results {
			if results[i].SourceName == "" {
				results[i].SourceName = site.Name
			}
		}
		s.debug("site produced records", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_records", len(aggregated))
	return aggregated, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
