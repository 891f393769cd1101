package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsRobot/internal/scanner"
)

func TestHTMLScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <article><a href="/posts/first">First Post</a></article>
		  <article><a href="/posts/first">First Post repeated</a></article>
		  <article><a href="/tag/go">Tagged</a></article>
		  <article><a href="mailto:someone@example.org">Mail</a></article>
		  <article><a href="https://example.org/posts/second">Second Post</a></article>
		  <article><a href="/posts/untitled"></a></article>
		</body></html>`))
	}))
	defer server.Close()

	sc := NewHTMLScanner(server.Client())
	req := scanner.Request{
		Source: scanner.Source{Name: "blog", Category: "tech", URL: server.URL + "/archive"},
	}

	articles, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d: %+v", len(articles), articles)
	}
	if articles[0].ID != server.URL+"/posts/first" {
		t.Fatalf("relative link not resolved: %s", articles[0].ID)
	}
	if articles[0].Title != "First Post" {
		t.Fatalf("unexpected title: %q", articles[0].Title)
	}
	if articles[1].ID != "https://example.org/posts/second" {
		t.Fatalf("unexpected second link: %s", articles[1].ID)
	}
}

func TestHTMLScannerSelectorOption(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <div class="headline"><a href="/story/one">Story One</a></div>
		  <nav><a href="/about">About</a></nav>
		</body></html>`))
	}))
	defer server.Close()

	sc := NewHTMLScanner(server.Client())
	req := scanner.Request{
		Source: scanner.Source{
			Name:    "custom",
			URL:     server.URL,
			Options: map[string]string{"selector": ".headline a[href]"},
		},
	}

	articles, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Story One" {
		t.Fatalf("selector option not honored: %+v", articles)
	}
}
