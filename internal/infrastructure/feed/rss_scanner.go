package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/scanner"
)

// RSSScanner discovers articles from RSS/Atom feeds.
type RSSScanner struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewRSSScanner wires an HTTP client; a default one is created when nil.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches the feed and returns entries published after req.Since.
// Entries without a parseable timestamp are kept; dropping them would
// silently hide feeds that omit publication dates.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.Source.URL == "" {
		return nil, fmt.Errorf("no url provided for source %s", req.Source.Name)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "NewsRobot/1.0")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", req.Source.Name, resp.Status)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	results := make([]domain.Article, 0, len(parsed.Items))
	seen := map[string]struct{}{}
	for _, item := range parsed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		id := domain.NormalizeID(link)
		if _, ok := seen[id]; ok {
			continue
		}

		published := itemTime(item)
		if !published.IsZero() && !req.Since.IsZero() && published.Before(req.Since) {
			continue
		}

		seen[id] = struct{}{}
		results = append(results, domain.Article{
			ID:          link,
			Title:       strings.TrimSpace(item.Title),
			Excerpt:     itemExcerpt(item),
			Source:      req.Source.Name,
			Category:    req.Source.Category,
			PublishedAt: published,
		})
	}

	return results, nil
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// itemExcerpt prefers the feed description over full content; the pipeline
// only ever needs excerpt-level text.
func itemExcerpt(item *gofeed.Item) string {
	if desc := strings.TrimSpace(item.Description); desc != "" {
		return desc
	}
	return strings.TrimSpace(item.Content)
}
