package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
)

// SQLiteStore persists published article URLs for cross-run deduplication.
// It is a flat key set with a seen_at timestamp for TTL pruning; no further
// schema is warranted at this scale.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.SeenStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS seen_articles (
	url TEXT PRIMARY KEY,
	seen_at INTEGER NOT NULL
);
`

// Open creates or opens the store at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seen returns the subset of ids already recorded, keyed by normalized URL.
func (s *SQLiteStore) Seen(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(ids) == 0 {
		return result, nil
	}

	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := domain.NormalizeID(id); n != "" {
			normalized = append(normalized, n)
		}
	}

	query, args, err := sq.Select("url").
		From("seen_articles").
		Where(sq.Eq{"url": normalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// MarkSeen records ids as published at the given time. Re-marking an id
// refreshes its timestamp so active URLs survive pruning.
func (s *SQLiteStore) MarkSeen(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	builder := sq.Insert("seen_articles").
		Columns("url", "seen_at").
		Suffix("ON CONFLICT(url) DO UPDATE SET seen_at = excluded.seen_at")

	count := 0
	for _, id := range ids {
		n := domain.NormalizeID(id)
		if n == "" {
			continue
		}
		builder = builder.Values(n, at.Unix())
		count++
	}
	if count == 0 {
		return nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build mark query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// Prune deletes entries last seen before the cutoff and reports how many.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	query, args, err := sq.Delete("seen_articles").
		Where(sq.Lt{"seen_at": olderThan.Unix()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune seen: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return affected, nil
}

// Count returns the number of stored identifiers.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	query, args, err := sq.Select("COUNT(*)").From("seen_articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}
	return count, nil
}
