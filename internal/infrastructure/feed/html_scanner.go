package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/scanner"
)

const defaultMaxLinks = 50

// skipPatterns filters navigation and taxonomy links out of listing pages.
var skipPatterns = []string{
	"#",
	"javascript:",
	"mailto:",
	"/tag/",
	"/category/",
	"/author/",
	"/page/",
}

// HTMLScanner discovers article links from listing pages that expose no
// feed. Published timestamps are unknown for such pages and left zero, so
// these articles only rank through their keyword priority.
type HTMLScanner struct {
	client   *http.Client
	maxLinks int
}

// NewHTMLScanner wires an HTTP client; a default one is created when nil.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client, maxLinks: defaultMaxLinks}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan fetches the listing page and extracts candidate article links.
// The CSS selector defaults to anchors inside <article> elements and can be
// overridden per source with the "selector" option.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.Source.URL == "" {
		return nil, fmt.Errorf("no url provided for source %s", req.Source.Name)
	}

	base, err := url.Parse(req.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", req.Source.URL, err)
	}

	doc, err := h.fetchDocument(ctx, req.Source.URL)
	if err != nil {
		return nil, err
	}

	selection := "article a[href]"
	if s := req.Source.Options["selector"]; s != "" {
		selection = s
	}

	anchors := doc.Find(selection)
	if anchors.Length() == 0 {
		anchors = doc.Find("a[href]")
	}

	results := make([]domain.Article, 0, h.maxLinks)
	seen := map[string]struct{}{}
	anchors.EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || skipLink(href) {
			return true
		}

		resolved, err := base.Parse(href)
		if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return true
		}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = strings.TrimSpace(a.AttrOr("title", ""))
		}
		if title == "" {
			return true
		}

		link := resolved.String()
		id := domain.NormalizeID(link)
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}

		results = append(results, domain.Article{
			ID:       link,
			Title:    title,
			Source:   req.Source.Name,
			Category: req.Source.Category,
		})
		return len(results) < h.maxLinks
	})

	return results, nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsRobot/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func skipLink(href string) bool {
	for _, pattern := range skipPatterns {
		if strings.Contains(href, pattern) {
			return true
		}
	}
	return false
}
