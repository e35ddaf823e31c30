package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

var (
	// ErrMiss is returned when no result is cached for a key
	ErrMiss = errors.New("cache miss")
	// ErrExpired is returned when the cached result has expired
	ErrExpired = errors.New("cache expired")
)

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// ResultCache stores analysis results in PostgreSQL keyed by image hash,
// so re-submitting the same frame skips the provider round trip.
type ResultCache struct {
	db  DB
	ttl time.Duration
}

// NewResultCache creates a result cache backed by a connection pool
func NewResultCache(pool *pgxpool.Pool, ttl time.Duration) *ResultCache {
	return &ResultCache{db: pool, ttl: ttl}
}

// NewResultCacheWithDB creates a result cache with a custom DB interface
func NewResultCacheWithDB(db DB, ttl time.Duration) *ResultCache {
	return &ResultCache{db: db, ttl: ttl}
}

// Key derives the cache key for an image payload
func Key(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// Get retrieves the cached analysis result for a key
func (c *ResultCache) Get(ctx context.Context, key string) ([]domain.FaceRecord, error) {
	query := `
		SELECT faces, expires_at
		FROM detection_cache
		WHERE image_hash = $1
	`

	var payload []byte
	var expiresAt time.Time

	err := c.db.QueryRow(ctx, query, key).Scan(&payload, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, err
	}

	if time.Now().After(expiresAt) {
		_ = c.Delete(ctx, key)
		return nil, ErrExpired
	}

	var faces []domain.FaceRecord
	if err := json.Unmarshal(payload, &faces); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return faces, nil
}

// Put stores an analysis result under a key
func (c *ResultCache) Put(ctx context.Context, key string, faces []domain.FaceRecord) error {
	payload, err := json.Marshal(faces)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	query := `
		INSERT INTO detection_cache (image_hash, faces, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (image_hash) DO UPDATE
		SET faces = EXCLUDED.faces,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()
	`

	expiresAt := time.Now().Add(c.ttl)
	_, err = c.db.Exec(ctx, query, key, payload, expiresAt)
	return err
}

// Delete removes a cached result
func (c *ResultCache) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM detection_cache WHERE image_hash = $1`
	_, err := c.db.Exec(ctx, query, key)
	return err
}

// CleanupExpired removes all expired results
func (c *ResultCache) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM detection_cache WHERE expires_at < NOW()`
	result, err := c.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
