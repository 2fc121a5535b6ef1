package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agency/internal/consent/models"
	"agency/pkg/platform/sentinel"
)

const (
	// DefaultSnapshotMaxAge is how long a stored consent snapshot is honored.
	DefaultSnapshotMaxAge = 180 * 24 * time.Hour
	// DefaultHistoryRetention bounds how long history survives without writes.
	DefaultHistoryRetention = 2 * 365 * 24 * time.Hour
)

// snapshot is the stored form of a visitor's items.
type snapshot struct {
	Items    []models.Item `json:"items"`
	StoredAt time.Time     `json:"storedAt"`
}

type preferencesDoc struct {
	Preferences models.Preferences `json:"preferences"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Repository encodes visitor consent documents onto a KV.
type Repository struct {
	kv               KV
	clock            Clock
	snapshotMaxAge   time.Duration
	historyRetention time.Duration
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock sets the clock used to stamp and age snapshots.
func WithClock(clock Clock) RepositoryOption {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithSnapshotMaxAge overrides DefaultSnapshotMaxAge.
func WithSnapshotMaxAge(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		if d > 0 {
			r.snapshotMaxAge = d
		}
	}
}

// WithHistoryRetention overrides DefaultHistoryRetention.
func WithHistoryRetention(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		if d > 0 {
			r.historyRetention = d
		}
	}
}

// NewRepository constructs a Repository over kv.
func NewRepository(kv KV, opts ...RepositoryOption) *Repository {
	r := &Repository{
		kv:               kv,
		clock:            time.Now,
		snapshotMaxAge:   DefaultSnapshotMaxAge,
		historyRetention: DefaultHistoryRetention,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadItems returns the stored items. A snapshot older than the max age is
// deleted and reported as sentinel.ErrExpired; a missing one as
// sentinel.ErrNotFound.
func (r *Repository) LoadItems(ctx context.Context, visitorID string) ([]models.Item, error) {
	data, err := r.kv.Get(ctx, snapshotKey(visitorID))
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode consent snapshot: %w", err)
	}
	if r.clock().Sub(snap.StoredAt) > r.snapshotMaxAge {
		if err := r.kv.Delete(ctx, snapshotKey(visitorID)); err != nil {
			return nil, errors.Join(sentinel.ErrExpired, err)
		}
		return nil, sentinel.ErrExpired
	}
	return snap.Items, nil
}

// SaveItems stores items stamped with the current time.
func (r *Repository) SaveItems(ctx context.Context, visitorID string, items []models.Item) error {
	data, err := json.Marshal(snapshot{Items: items, StoredAt: r.clock()})
	if err != nil {
		return fmt.Errorf("encode consent snapshot: %w", err)
	}
	return r.kv.Set(ctx, snapshotKey(visitorID), data, r.snapshotMaxAge)
}

// LoadHistory returns the stored history, oldest first. Missing history is
// an empty list.
func (r *Repository) LoadHistory(ctx context.Context, visitorID string) ([]models.Record, error) {
	data, err := r.kv.Get(ctx, historyKey(visitorID))
	if errors.Is(err, sentinel.ErrNotFound) {
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var history []models.Record
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode consent history: %w", err)
	}
	return history, nil
}

// AppendHistory appends records and rewrites the capped list.
func (r *Repository) AppendHistory(ctx context.Context, visitorID string, records ...models.Record) error {
	if len(records) == 0 {
		return nil
	}
	history, err := r.LoadHistory(ctx, visitorID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(models.AppendHistory(history, records...))
	if err != nil {
		return fmt.Errorf("encode consent history: %w", err)
	}
	return r.kv.Set(ctx, historyKey(visitorID), data, r.historyRetention)
}

// LoadPreferences returns stored preferences or sentinel.ErrNotFound.
func (r *Repository) LoadPreferences(ctx context.Context, visitorID string) (models.Preferences, error) {
	data, err := r.kv.Get(ctx, preferencesKey(visitorID))
	if err != nil {
		return nil, err
	}
	var doc preferencesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode consent preferences: %w", err)
	}
	return doc.Preferences, nil
}

// SavePreferences stores preferences with the snapshot's lifetime.
func (r *Repository) SavePreferences(ctx context.Context, visitorID string, prefs models.Preferences) error {
	data, err := json.Marshal(preferencesDoc{Preferences: prefs, UpdatedAt: r.clock()})
	if err != nil {
		return fmt.Errorf("encode consent preferences: %w", err)
	}
	return r.kv.Set(ctx, preferencesKey(visitorID), data, r.snapshotMaxAge)
}

// Clear removes every document for a visitor.
func (r *Repository) Clear(ctx context.Context, visitorID string) error {
	return r.kv.Delete(ctx, snapshotKey(visitorID), historyKey(visitorID), preferencesKey(visitorID))
}
