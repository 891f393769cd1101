package ports

import (
	"context"
	"time"

	"NewsRobot/internal/domain"
)

// ArticleSource pulls fresh articles from the configured feeds. since bounds
// how far back discovery reaches (one week for the weekly run).
type ArticleSource interface {
	FetchWeek(ctx context.Context, since time.Time) ([]domain.Article, error)
}

// BookmarkSource loads the user-maintained weekly bookmarks. The int result
// counts records dropped during validation.
type BookmarkSource interface {
	Load(ctx context.Context) ([]domain.Bookmark, int, error)
}

// SeenStore persists published article identifiers for cross-run
// deduplication. Identifiers are normalized before storage and lookup.
type SeenStore interface {
	Seen(ctx context.Context, ids []string) (map[string]bool, error)
	MarkSeen(ctx context.Context, ids []string, at time.Time) error
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewsletterWriter turns the ranked shortlist into a publishable issue.
type NewsletterWriter interface {
	WriteNewsletter(ctx context.Context, issueDate time.Time, items []domain.RankedArticle) (domain.Newsletter, error)
}

// Publisher delivers the finished newsletter to the CMS.
type Publisher interface {
	Publish(ctx context.Context, n domain.Newsletter) (domain.PostRef, error)
}

// Scheduler controls when the weekly pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
