// Package bookmarks loads the user-maintained weekly bookmark file.
// Bookmarks always receive top selection priority downstream, so the loader
// is deliberately forgiving: a missing file is an empty week, and malformed
// records are dropped with a count rather than failing the run.
package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
)

// Loader reads bookmarks from a YAML file. The file is re-read on every
// call; bookmarks change weekly and must never be served from a stale cache.
type Loader struct {
	path   string
	logger *slog.Logger
}

var _ ports.BookmarkSource = (*Loader)(nil)

// NewLoader points the loader at the bookmark YAML file.
func NewLoader(path string, log *slog.Logger) *Loader {
	return &Loader{path: path, logger: log}
}

type bookmarkFile struct {
	Bookmarks []bookmarkEntry `yaml:"bookmarks"`
}

type bookmarkEntry struct {
	URL           string `yaml:"url"`
	Note          string `yaml:"note"`
	SubmittedDate string `yaml:"submitted_date"`
}

// Load returns the validated bookmarks and the number of dropped records.
func (l *Loader) Load(ctx context.Context) ([]domain.Bookmark, int, error) {
	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.debug("bookmark file not found, returning empty list", "path", l.path)
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read bookmarks %s: %w", l.path, err)
	}

	var file bookmarkFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, 0, fmt.Errorf("parse bookmarks %s: %w", l.path, err)
	}

	var (
		loaded  []domain.Bookmark
		skipped int
	)
	for _, entry := range file.Bookmarks {
		if strings.TrimSpace(entry.URL) == "" {
			skipped++
			l.warn("bookmark missing url, skipping", "note", entry.Note)
			continue
		}
		loaded = append(loaded, domain.Bookmark{
			URL:         strings.TrimSpace(entry.URL),
			Note:        entry.Note,
			SubmittedAt: parseSubmitted(entry.SubmittedDate),
		})
	}

	l.debug("loaded bookmarks", "count", len(loaded), "skipped", skipped)
	return loaded, skipped, nil
}

// parseSubmitted accepts the date formats seen in real bookmark files; an
// unparseable date degrades to the zero time instead of dropping the record.
func parseSubmitted(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (l *Loader) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Loader) warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
