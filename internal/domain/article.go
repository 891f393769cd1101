package domain

import (
	"strings"
	"time"
)

// Article is a candidate item discovered from a content feed. It carries
// excerpt-level metadata only; full-page content is never fetched.
type Article struct {
	ID          string // stable identifier, normally the article URL
	Title       string
	Excerpt     string
	Source      string
	Category    string
	PublishedAt time.Time
	IsBookmark  bool
}

// Bookmark is a user-submitted article reference from the weekly bookmark
// config. Bookmarks always receive top selection priority.
type Bookmark struct {
	URL         string
	Note        string
	SubmittedAt time.Time
}

// TopicRule classifies articles by keyword match and assigns a priority score.
// Rules are ordered; configuration order breaks priority ties.
type TopicRule struct {
	Name     string
	Keywords []string
	Priority int
}

// RankedArticle is an Article tagged with its selection outcome.
type RankedArticle struct {
	Article
	MatchedTopic string
	Priority     int
}

// Newsletter is a rendered weekly issue ready for publishing.
type Newsletter struct {
	Title      string
	HTML       string
	Excerpt    string
	Categories []string
}

// PostRef identifies a published post in the CMS.
type PostRef struct {
	ID      int
	URL     string
	EditURL string
}

// NormalizeID canonicalizes an article identifier for deduplication.
// Identifiers are URLs, so trimming and lowercasing is sufficient.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
