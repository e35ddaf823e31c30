package usage

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
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// NewRepositoryWithDB creates a repository with a custom DB interface
func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

// IncrementDaily bumps one counter for the given day, creating the row on
// first use. field must be one of detections, faces_found or failures.
func (r *Repository) IncrementDaily(ctx context.Context, date time.Time, field string, amount int) error {
	if field != "detections" && field != "faces_found" && field != "failures" {
		return fmt.Errorf("invalid field: %s", field)
	}

	query := fmt.Sprintf(`
		INSERT INTO detections_daily (date, %s)
		VALUES ($1, $2)
		ON CONFLICT (date)
		DO UPDATE SET %s = detections_daily.%s + EXCLUDED.%s, updated_at = NOW()
	`, field, field, field, field)

	_, err := r.db.Exec(ctx, query, date, amount)
	if err != nil {
		return fmt.Errorf("increment daily %s: %w", field, err)
	}

	return nil
}

// GetRange returns the per-day counters between startDate and endDate,
// newest first. Days without activity have no row.
func (r *Repository) GetRange(ctx context.Context, startDate, endDate time.Time) ([]DailyUsage, error) {
	query := `
		SELECT id, date, detections, faces_found, failures, created_at, updated_at
		FROM detections_daily
		WHERE date >= $1 AND date <= $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("get usage range: %w", err)
	}
	defer rows.Close()

	var records []DailyUsage
	for rows.Next() {
		var record DailyUsage
		err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.Detections,
			&record.FacesFound,
			&record.Failures,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage records: %w", err)
	}

	return records, nil
}

// AggregatePeriod sums the counters between startDate and endDate.
func (r *Repository) AggregatePeriod(ctx context.Context, startDate, endDate time.Time) (*DailyUsage, error) {
	query := `
		SELECT
			COALESCE(SUM(detections), 0) as total_detections,
			COALESCE(SUM(faces_found), 0) as total_faces_found,
			COALESCE(SUM(failures), 0) as total_failures
		FROM detections_daily
		WHERE date >= $1 AND date <= $2
	`

	var record DailyUsage
	record.Date = startDate

	err := r.db.QueryRow(ctx, query, startDate, endDate).Scan(
		&record.Detections,
		&record.FacesFound,
		&record.Failures,
	)

	if err != nil {
		return nil, fmt.Errorf("aggregate period: %w", err)
	}

	return &record, nil
}
