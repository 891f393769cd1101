package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsRobot/internal/scanner"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>Fresh Article</title>
      <link>https://example.org/fresh</link>
      <description>Brand new piece.</description>
      <pubDate>Mon, 02 Mar 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Stale Article</title>
      <link>https://example.org/stale</link>
      <description>Last month's piece.</description>
      <pubDate>Tue, 03 Feb 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Fresh Repeat</title>
      <link>https://example.org/fresh</link>
      <description>Duplicate link.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated Article</title>
      <link>https://example.org/undated</link>
      <description>No pubDate element.</description>
    </item>
  </channel>
</rss>`

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	req := scanner.Request{
		Since: time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC),
		Source: scanner.Source{
			Name:     "example",
			Category: "tech",
			URL:      server.URL + "/feed.xml",
		},
	}

	articles, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (window + dedup applied), got %d", len(articles))
	}

	if articles[0].ID != "https://example.org/fresh" {
		t.Fatalf("unexpected first article: %s", articles[0].ID)
	}
	if articles[0].Excerpt != "Brand new piece." {
		t.Fatalf("unexpected excerpt: %q", articles[0].Excerpt)
	}
	if articles[0].Source != "example" || articles[0].Category != "tech" {
		t.Fatalf("source metadata not applied: %+v", articles[0])
	}

	if articles[1].ID != "https://example.org/undated" {
		t.Fatalf("undated entry should be kept, got %s", articles[1].ID)
	}
	if !articles[1].PublishedAt.IsZero() {
		t.Fatalf("undated entry should have zero published time")
	}
}

func TestRSSScannerRejectsBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	req := scanner.Request{Source: scanner.Source{Name: "broken", URL: server.URL}}

	if _, err := sc.Scan(context.Background(), req); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestRSSScannerRequiresURL(t *testing.T) {
	t.Parallel()

	sc := NewRSSScanner(nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{Source: scanner.Source{Name: "empty"}}); err == nil {
		t.Fatalf("expected error for missing url")
	}
}
