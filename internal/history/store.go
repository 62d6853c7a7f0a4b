// Package history persists delivered downloads for the /history command
// and admin stats. It records outcomes only; live session and task state
// never touch the database. A nil *Store is valid and turns every
// operation into a no-op, which is how the feature is disabled.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/soundpull/soundpull/core/logger"
	"github.com/soundpull/soundpull/internal/music"
)

// Entry is one delivered download.
type Entry struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Query       string    `db:"query"`
	Title       string    `db:"title"`
	Uploader    string    `db:"uploader"`
	URL         string    `db:"url"`
	Source      string    `db:"source"`
	SizeBytes   int64     `db:"size_bytes"`
	DeliveredAt time.Time `db:"delivered_at"`
}

type Store struct {
	db *sqlx.DB
}

// NewStore wraps the database handle. Pass a nil handle to disable
// history entirely.
func NewStore(db *sqlx.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Record inserts a delivered download. Failures are logged and
// swallowed; history is never allowed to break a delivery.
func (s *Store) Record(ctx context.Context, userID int64, query string, track music.Track, sizeBytes int64) {
	if s == nil {
		return
	}

	const q = `
		INSERT INTO download_history (user_id, query, title, uploader, url, source, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.db.ExecContext(ctx, q,
		userID, query, track.Title, track.Uploader, track.URL, string(track.Source), sizeBytes,
	); err != nil {
		logger.HIST.Warn("record failed",
			slog.String("event", "record"),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// Recent returns the user's latest deliveries, newest first.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}

	const q = `
		SELECT id, user_id, query, title, uploader, url, source, size_bytes, delivered_at
		FROM download_history
		WHERE user_id = $1
		ORDER BY delivered_at DESC
		LIMIT $2`
	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, q, userID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats summarizes stored deliveries.
type Stats struct {
	Deliveries int64 `db:"deliveries"`
	Users      int64 `db:"users"`
	TotalBytes int64 `db:"total_bytes"`
}

// Totals reports overall delivery counts for the admin stats command.
func (s *Store) Totals(ctx context.Context) (Stats, error) {
	if s == nil {
		return Stats{}, nil
	}

	const q = `
		SELECT COUNT(*) AS deliveries,
		       COUNT(DISTINCT user_id) AS users,
		       COALESCE(SUM(size_bytes), 0) AS total_bytes
		FROM download_history`
	var stats Stats
	if err := s.db.GetContext(ctx, &stats, q); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
