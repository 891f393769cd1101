package newsletter

import (
	"context"
	"strings"
	"testing"
	"time"

	"NewsRobot/internal/domain"
)

func TestFormatIssueDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		day  int
		want string
	}{
		{1, "March 1st, 2026"},
		{2, "March 2nd, 2026"},
		{3, "March 3rd, 2026"},
		{4, "March 4th, 2026"},
		{11, "March 11th, 2026"},
		{12, "March 12th, 2026"},
		{13, "March 13th, 2026"},
		{21, "March 21st, 2026"},
		{22, "March 22nd, 2026"},
		{23, "March 23rd, 2026"},
		{30, "March 30th, 2026"},
	}
	for _, tc := range cases {
		date := time.Date(2026, time.March, tc.day, 0, 0, 0, 0, time.UTC)
		if got := FormatIssueDate(date); got != tc.want {
			t.Fatalf("day %d: got %q, want %q", tc.day, got, tc.want)
		}
	}
}

func TestIssueTitle(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC)
	if got := IssueTitle("Mark's Weekly Update", date); got != "Mark's Weekly Update: November 28th, 2025" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := IssueTitle("", date); got != "Weekly Update: November 28th, 2025" {
		t.Fatalf("unexpected default title: %q", got)
	}
}

func TestTemplateWriterRendersIssue(t *testing.T) {
	t.Parallel()

	items := []domain.RankedArticle{
		{
			Article: domain.Article{
				ID:         "https://example.org/bookmarked",
				Title:      "Bookmarked Read",
				Source:     "User Bookmark",
				IsBookmark: true,
			},
			MatchedTopic: "bookmark",
			Priority:     11,
		},
		{
			Article: domain.Article{
				ID:      "https://example.org/ml",
				Title:   "ML <matters>",
				Excerpt: "Why   models\nmatter.",
				Source:  "Example Feed",
			},
			MatchedTopic: "AI/ML",
			Priority:     10,
		},
	}

	writer := &TemplateWriter{TitlePrefix: "Weekly Update"}
	issueDate := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	n, err := writer.WriteNewsletter(context.Background(), issueDate, items)
	if err != nil {
		t.Fatalf("WriteNewsletter error: %v", err)
	}

	if n.Title != "Weekly Update: March 2nd, 2026" {
		t.Fatalf("unexpected title: %q", n.Title)
	}
	if !strings.Contains(n.HTML, "<h2>From NewsRobot:</h2>") {
		t.Fatalf("missing identifying header in:\n%s", n.HTML)
	}
	if !strings.Contains(n.HTML, "including 1 reader bookmarks") {
		t.Fatalf("intro should mention bookmarks:\n%s", n.HTML)
	}
	if !strings.Contains(n.HTML, `<a href="https://example.org/ml">Example Feed</a>`) {
		t.Fatalf("missing source link:\n%s", n.HTML)
	}
	if !strings.Contains(n.HTML, "ML &lt;matters&gt;") {
		t.Fatalf("title markup must be escaped:\n%s", n.HTML)
	}
	if !strings.Contains(n.HTML, "Why models matter.") {
		t.Fatalf("excerpt whitespace should collapse:\n%s", n.HTML)
	}
	if !strings.Contains(n.Excerpt, "2 picks") {
		t.Fatalf("unexpected excerpt: %q", n.Excerpt)
	}
}

func TestTemplateWriterRejectsEmptyShortlist(t *testing.T) {
	t.Parallel()

	writer := &TemplateWriter{}
	if _, err := writer.WriteNewsletter(context.Background(), time.Now(), nil); err == nil {
		t.Fatalf("expected error for empty shortlist")
	}
}

func TestExcerptListsLeadingTitles(t *testing.T) {
	t.Parallel()

	var items []domain.RankedArticle
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		items = append(items, domain.RankedArticle{Article: domain.Article{Title: title}})
	}

	got := Excerpt(items)
	if got != "This week's 4 picks: One; Two; Three, and more." {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}
