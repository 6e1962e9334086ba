// Package clientdata provides persistent caching for external price source responses.
// Each logical source keeps exactly one entry: the last payload that decoded successfully.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entry is the last good payload stored for a source key.
type Entry struct {
	Key     string
	Payload json.RawMessage
	SavedAt time.Time
}

// Repository provides cache operations for client data.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Put stores payload under key, replacing any previous entry.
// Uses INSERT OR REPLACE so concurrent writers for a key resolve as last write wins.
func (r *Repository) Put(key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("cache key must not be empty")
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload for %s is not valid JSON", key)
	}

	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO price_cache (cache_key, payload, saved_at) VALUES (?, ?, ?)",
		key, string(payload), r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// Get returns the entry for key regardless of age.
// Returns nil, nil if the key doesn't exist.
func (r *Repository) Get(key string) (*Entry, error) {
	var payload string
	var savedAt int64
	err := r.db.QueryRow(
		"SELECT payload, saved_at FROM price_cache WHERE cache_key = ?", key,
	).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return &Entry{
		Key:     key,
		Payload: json.RawMessage(payload),
		SavedAt: time.UnixMilli(savedAt),
	}, nil
}

// GetIfFresh returns the entry only if it was saved within maxAge.
// A maxAge of zero or less accepts any age.
// Returns nil, nil if the key doesn't exist or the entry is too old.
func (r *Repository) GetIfFresh(key string, maxAge time.Duration) (*Entry, error) {
	entry, err := r.Get(key)
	if err != nil || entry == nil {
		return entry, err
	}
	if maxAge > 0 && r.now().Sub(entry.SavedAt) > maxAge {
		return nil, nil
	}
	return entry, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM price_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DeleteOlderThan removes entries saved more than maxAge ago.
// Returns the number of rows deleted.
func (r *Repository) DeleteOlderThan(maxAge time.Duration) (int64, error) {
	cutoff := r.now().Add(-maxAge).UnixMilli()

	result, err := r.db.Exec("DELETE FROM price_cache WHERE saved_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Keys lists every cached source key in lexical order.
func (r *Repository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT cache_key FROM price_cache ORDER BY cache_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
