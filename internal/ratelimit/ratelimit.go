// Package ratelimit keeps request counters in Postgres so quotas hold across
// every API instance.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Counter implements fixed-window counters aligned to the window size, so an
// hourly window always starts on the hour.
type Counter struct {
	db  DB
	now func() time.Time
}

// NewCounter creates a counter backed by a pgx pool
func NewCounter(db *pgxpool.Pool) *Counter {
	return NewCounterWithDB(db)
}

// NewCounterWithDB creates a counter with custom DB interface
func NewCounterWithDB(db DB) *Counter {
	return &Counter{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Hit counts one request for key in the current window and returns the
// updated count and the time the window ends.
func (c *Counter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	windowStart := c.now().Truncate(window)
	windowEnd := windowStart.Add(window)

	// A row left over from an earlier window restarts at 1
	query := `
		INSERT INTO rate_limit_counters (key, count, window_start, window_end)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			count = CASE
				WHEN rate_limit_counters.window_start = $2 THEN rate_limit_counters.count + 1
				ELSE 1
			END,
			window_start = $2,
			window_end = $3
		RETURNING count
	`

	var count int
	if err := c.db.QueryRow(ctx, query, key, windowStart, windowEnd).Scan(&count); err != nil {
		return 0, time.Time{}, fmt.Errorf("hit rate limit counter: %w", err)
	}

	return count, windowEnd, nil
}

// CleanupExpired removes counters whose window has ended
func (c *Counter) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := c.db.Exec(ctx, `DELETE FROM rate_limit_counters WHERE window_end < $1`, c.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup rate limit counters: %w", err)
	}
	return result.RowsAffected(), nil
}
