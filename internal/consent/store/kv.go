// Package store persists visitor consent state behind a small key-value
// capability with in-memory, Redis and PostgreSQL implementations.
package store

import (
	"context"
	"time"
)

// KV is the storage capability the consent repository needs. Get returns
// sentinel.ErrNotFound for missing or expired keys. A zero TTL keeps the key
// until it is deleted.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Clock abstracts time for stores that evaluate expiry themselves.
type Clock func() time.Time

// Key prefixes, one per stored document.
const (
	SnapshotKeyPrefix    = "user_consents:"
	HistoryKeyPrefix     = "consent_history:"
	PreferencesKeyPrefix = "consent_preferences:"
)

func snapshotKey(visitorID string) string    { return SnapshotKeyPrefix + visitorID }
func historyKey(visitorID string) string     { return HistoryKeyPrefix + visitorID }
func preferencesKey(visitorID string) string { return PreferencesKeyPrefix + visitorID }
