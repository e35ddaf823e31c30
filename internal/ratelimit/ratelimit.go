package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Limiter provides PostgreSQL-based rate limiting with a sliding window,
// keyed by client address.
type Limiter struct {
	db     DB
	window time.Duration
}

// NewLimiter creates a rate limiter with a sliding window
func NewLimiter(pool *pgxpool.Pool, window time.Duration) *Limiter {
	return &Limiter{
		db:     pool,
		window: window,
	}
}

// NewLimiterWithDB creates a rate limiter with a custom DB interface
func NewLimiterWithDB(db DB, window time.Duration) *Limiter {
	return &Limiter{
		db:     db,
		window: window,
	}
}

// CheckDetectLimit counts one detection request for the client and returns
// domain.ErrRateLimited when the window budget is exhausted. A limit of
// zero or less disables the check.
func (l *Limiter) CheckDetectLimit(ctx context.Context, clientIP string, limit int) error {
	if limit <= 0 {
		return nil
	}

	now := time.Now()
	windowStart := now.Add(-l.window)
	key := fmt.Sprintf("detect_rate:%s", clientIP)

	// ON CONFLICT atomically increments the counter or starts a fresh
	// window when the previous one has passed
	query := `
		WITH current_count AS (
			INSERT INTO rate_limit_counters (key, count, window_start, window_end)
			VALUES ($1, 1, $2, $3)
			ON CONFLICT (key)
			DO UPDATE SET
				count = CASE
					WHEN rate_limit_counters.window_end < $2 THEN 1
					ELSE rate_limit_counters.count + 1
				END,
				window_start = CASE
					WHEN rate_limit_counters.window_end < $2 THEN $2
					ELSE rate_limit_counters.window_start
				END,
				window_end = $3
			RETURNING count
		)
		SELECT count FROM current_count
	`

	var count int
	err := l.db.QueryRow(ctx, query, key, windowStart, now).Scan(&count)
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}

	if count > limit {
		return domain.ErrRateLimited
	}

	return nil
}

// CurrentCount returns the live counter for a client (monitoring aid)
func (l *Limiter) CurrentCount(ctx context.Context, clientIP string) (int, error) {
	key := fmt.Sprintf("detect_rate:%s", clientIP)
	windowStart := time.Now().Add(-l.window)

	query := `
		SELECT count
		FROM rate_limit_counters
		WHERE key = $1 AND window_end > $2
	`

	var count int
	err := l.db.QueryRow(ctx, query, key, windowStart).Scan(&count)
	if err != nil {
		return 0, nil
	}

	return count, nil
}

// CleanupExpired removes stale counters
func (l *Limiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_end < NOW() - INTERVAL '1 hour'`
	result, err := l.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
