package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsRobot/internal/config"
	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
	"NewsRobot/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
// A source that fails to fetch is logged and skipped; one dead feed must not
// abort the weekly run.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchWeek iterates over configured sources and executes their scanners.
func (s *StrategySource) FetchWeek(ctx context.Context, since time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch week", "sources", len(s.sources), "since", since.Format("2006-01-02"))

	var aggregated []domain.Article
	for _, src := range s.sources {
		strategy, err := s.registry.Resolve(scannerName(src))
		if err != nil {
			s.warn("skip source", "source", src.Name, "error", err)
			continue
		}

		req := scanner.Request{
			Since: since,
			Source: scanner.Source{
				Name:     src.Name,
				Category: src.Category,
				URL:      src.URL,
				Options:  src.Options,
			},
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("scan source failed", "source", src.Name, "error", err)
			continue
		}

		s.debug("source produced articles", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("discovery done", "total_articles", len(aggregated))
	return aggregated, nil
}

// scannerName defaults unlabelled sources to RSS.
func scannerName(src config.SourceConfig) string {
	if src.Scanner == "" {
		return "rss"
	}
	return src.Scanner
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
