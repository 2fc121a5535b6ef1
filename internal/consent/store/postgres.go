package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"agency/pkg/platform/sentinel"
)

// Schema creates the table PostgresKV expects.
const Schema = `
CREATE TABLE IF NOT EXISTS consent_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	expires_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS consent_kv_expires_at_idx ON consent_kv (expires_at);
`

// PostgresKV persists consent documents in the consent_kv table. Expired
// rows are ignored on read and removed by PurgeExpired.
type PostgresKV struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a PostgresKV.
type PostgresOption func(*PostgresKV)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresOption {
	return func(kv *PostgresKV) {
		if clock != nil {
			kv.clock = clock
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed KV.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresKV {
	kv := &PostgresKV{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(kv)
		}
	}
	return kv
}

// Migrate applies Schema.
func (kv *PostgresKV) Migrate(ctx context.Context) error {
	if _, err := kv.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate consent_kv: %w", err)
	}
	return nil
}

func (kv *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt sql.NullTime
	)
	err := kv.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM consent_kv WHERE key = $1`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get consent key: %w", err)
	}
	if expiresAt.Valid && !kv.clock().Before(expiresAt.Time) {
		return nil, sentinel.ErrNotFound
	}
	return value, nil
}

func (kv *PostgresKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := kv.clock()
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}
	query := `
		INSERT INTO consent_kv (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := kv.db.ExecContext(ctx, query, key, value, expiresAt, now); err != nil {
		return fmt.Errorf("set consent key: %w", err)
	}
	return nil
}

// Delete removes every key in one statement.
func (kv *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM consent_kv WHERE key = ANY($1)`, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete consent keys: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and reports how many went.
func (kv *PostgresKV) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := kv.db.ExecContext(ctx,
		`DELETE FROM consent_kv WHERE expires_at IS NOT NULL AND expires_at <= $1`, kv.clock())
	if err != nil {
		return 0, fmt.Errorf("purge consent keys: %w", err)
	}
	return res.RowsAffected()
}
