package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
	"NewsRobot/internal/selector"
)

// PipelineDeps wires all driven adapters into the weekly workflow.
type PipelineDeps struct {
	Source    ports.ArticleSource
	Bookmarks ports.BookmarkSource
	Seen      ports.SeenStore
	Writer    ports.NewsletterWriter
	Publisher ports.Publisher
	Topics    []domain.TopicRule
	Selector  selector.Selector
	SeenTTL   time.Duration
	Logger    *slog.Logger
}

// Pipeline implements the weekly curation workflow:
// discover -> select -> write -> publish -> remember.
type Pipeline struct {
	source    ports.ArticleSource
	bookmarks ports.BookmarkSource
	seen      ports.SeenStore
	writer    ports.NewsletterWriter
	publisher ports.Publisher
	topics    []domain.TopicRule
	selector  selector.Selector
	seenTTL   time.Duration
	logger    *slog.Logger
}

// RunReport summarizes one weekly execution for logs and the HTTP trigger.
type RunReport struct {
	When             time.Time       `json:"when"`
	Discovered       int             `json:"discovered"`
	Bookmarks        int             `json:"bookmarks"`
	Selected         int             `json:"selected"`
	Unmatched        int             `json:"unmatched"`
	SeenSkipped      int             `json:"seen_skipped"`
	InvalidBookmarks int             `json:"invalid_bookmarks"`
	Published        bool            `json:"published"`
	Post             *domain.PostRef `json:"post,omitempty"`
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:    deps.Source,
		bookmarks: deps.Bookmarks,
		seen:      deps.Seen,
		writer:    deps.Writer,
		publisher: deps.Publisher,
		topics:    deps.Topics,
		selector:  deps.Selector,
		seenTTL:   deps.SeenTTL,
		logger:    deps.Logger,
	}
}

// ProcessWeek runs one full weekly cycle anchored at now. An empty shortlist
// is a legitimate short week, not an error; the run ends after logging it.
func (p *Pipeline) ProcessWeek(ctx context.Context, now time.Time) (RunReport, error) {
	report := RunReport{When: now}

	articles, err := p.discover(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return report, err
	}
	report.Discovered = len(articles)

	bookmarks := p.loadBookmarks(ctx, &report)
	report.Bookmarks = len(bookmarks)

	seen, err := p.loadSeen(ctx, articles)
	if err != nil {
		return report, err
	}

	shortlist, stats := p.selector.Select(articles, bookmarks, p.topics, seen)
	report.Selected = len(shortlist)
	report.Unmatched = stats.Unmatched
	report.SeenSkipped = stats.SeenSkipped
	report.InvalidBookmarks += stats.InvalidBookmarks

	p.info("selection done",
		"discovered", report.Discovered,
		"selected", report.Selected,
		"unmatched", stats.Unmatched,
		"seen_skipped", stats.SeenSkipped,
		"invalid_topics", stats.InvalidTopics,
		"duplicates", stats.Duplicates)

	if len(shortlist) == 0 {
		p.info("no qualifying articles this week")
		return report, nil
	}

	if p.writer == nil || p.publisher == nil {
		p.info("writer or publisher not configured, stopping after selection")
		return report, nil
	}

	issue, err := p.writer.WriteNewsletter(ctx, now, shortlist)
	if err != nil {
		return report, fmt.Errorf("write newsletter: %w", err)
	}

	ref, err := p.publisher.Publish(ctx, issue)
	if err != nil {
		return report, fmt.Errorf("publish newsletter: %w", err)
	}
	report.Published = true
	report.Post = &ref
	p.info("issue published", "post_id", ref.ID, "url", ref.URL)

	if err := p.remember(ctx, shortlist, now); err != nil {
		// The issue is out; a bookkeeping failure only risks repeats next week.
		p.warn("persist seen urls failed", "error", err)
	}

	return report, nil
}

func (p *Pipeline) discover(ctx context.Context, since time.Time) ([]domain.Article, error) {
	if p.source == nil {
		return nil, nil
	}
	articles, err := p.source.FetchWeek(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch week: %w", err)
	}
	return articles, nil
}

// loadBookmarks tolerates a broken bookmark file: the weekly run proceeds
// without bookmarks rather than aborting.
func (p *Pipeline) loadBookmarks(ctx context.Context, report *RunReport) []domain.Bookmark {
	if p.bookmarks == nil {
		return nil
	}
	bookmarks, skipped, err := p.bookmarks.Load(ctx)
	if err != nil {
		p.warn("load bookmarks failed, continuing without", "error", err)
		return nil
	}
	report.InvalidBookmarks = skipped
	return bookmarks
}

func (p *Pipeline) loadSeen(ctx context.Context, articles []domain.Article) (map[string]bool, error) {
	if p.seen == nil || len(articles) == 0 {
		return map[string]bool{}, nil
	}

	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.ID
	}

	seen, err := p.seen.Seen(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load seen urls: %w", err)
	}
	return seen, nil
}

func (p *Pipeline) remember(ctx context.Context, shortlist []domain.RankedArticle, now time.Time) error {
	if p.seen == nil {
		return nil
	}

	ids := make([]string, len(shortlist))
	for i, item := range shortlist {
		ids[i] = item.ID
	}
	if err := p.seen.MarkSeen(ctx, ids, now); err != nil {
		return err
	}

	if p.seenTTL > 0 {
		pruned, err := p.seen.Prune(ctx, now.Add(-p.seenTTL))
		if err != nil {
			return err
		}
		if pruned > 0 {
			p.info("pruned stale seen urls", "count", pruned)
		}
	}
	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
