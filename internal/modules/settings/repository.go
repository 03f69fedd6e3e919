// Package settings provides the durable key-value store.
// It holds small scalar state that must survive restarts: the last
// successful pull timestamp for sync and the dividend-ratio preference.
// Values are stored as strings with typed accessors on top.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Well-known keys.
const (
	// KeyLastPullAt is the epoch-millis timestamp of the last successful
	// sync pull. Missing means never pulled (treated as epoch 0).
	KeyLastPullAt = "last_pull_at"
)

// Repository handles key-value storage in the journal database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a key-value repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a value by key. Returns nil when the key is absent
// (not an error).
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM key_value WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return &value, nil
}

// Set stores a value, inserting or replacing in one statement.
func (r *Repository) Set(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := r.db.Exec(`
		INSERT INTO key_value (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// GetInt64 retrieves a value parsed as int64. Returns nil when the key is
// absent; a malformed stored value is logged and treated as absent.
func (r *Repository) GetInt64(key string) (*int64, error) {
	value, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	parsed, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse int64 setting")
		return nil, nil
	}
	return &parsed, nil
}

// SetInt64 stores an int64 value.
func (r *Repository) SetInt64(key string, value int64) error {
	return r.Set(key, strconv.FormatInt(value, 10))
}

// Delete removes a key. Idempotent.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM key_value WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// DeleteAll wipes the store. Used by the clear-all-data flow.
func (r *Repository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM key_value"); err != nil {
		return fmt.Errorf("failed to clear key-value store: %w", err)
	}
	return nil
}
