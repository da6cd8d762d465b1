package credentials

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Storage keys, matching the names the original web client used.
const (
	keyAccessToken  = "spotify_access_token"
	keyRefreshToken = "spotify_refresh_token"
	keyTokenExpiry  = "spotify_token_expiry"
	keyAuthState    = "spotify_auth_state"
)

// TokenRecord bundles an access token with its refresh token and expiry.
//
// The refresh token has no expiry tracked client-side.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the access token is still usable at the given time.
func (t TokenRecord) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// Store persists OAuth tokens and the pending authorization nonce.
//
// Load returns ok=false (not an error) when no record exists or required
// fields are missing.
type Store interface {
	Save(record TokenRecord) error
	Load() (TokenRecord, bool, error)
	Clear() error

	SaveAuthState(state string) error
	LoadAuthState() (string, bool, error)
	ClearAuthState() error
}

// SQLiteStore implements [Store] over a credentials key-value table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new [SQLiteStore] with the given database connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save writes the access token, refresh token, and expiry as a unit.
// Either all three keys are updated or none are.
func (s *SQLiteStore) Save(record TokenRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expiry := strconv.FormatInt(record.ExpiresAt.UnixMilli(), 10)
	for key, value := range map[string]string{
		keyAccessToken:  record.AccessToken,
		keyRefreshToken: record.RefreshToken,
		keyTokenExpiry:  expiry,
	} {
		if err := upsert(tx, key, value); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token record: %w", err)
	}

	return nil
}

// Load reads the stored token record. A record missing any of its three
// fields is treated as absent.
func (s *SQLiteStore) Load() (TokenRecord, bool, error) {
	access, ok, err := s.get(keyAccessToken)
	if err != nil || !ok {
		return TokenRecord{}, false, err
	}

	refresh, ok, err := s.get(keyRefreshToken)
	if err != nil || !ok {
		return TokenRecord{}, false, err
	}

	expiryRaw, ok, err := s.get(keyTokenExpiry)
	if err != nil || !ok {
		return TokenRecord{}, false, err
	}

	expiryMillis, err := strconv.ParseInt(expiryRaw, 10, 64)
	if err != nil {
		return TokenRecord{}, false, nil
	}

	return TokenRecord{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.UnixMilli(expiryMillis),
	}, true, nil
}

// Clear removes the stored token record. Safe to call when no record exists.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(
		"DELETE FROM credentials WHERE key IN (?, ?, ?)",
		keyAccessToken, keyRefreshToken, keyTokenExpiry,
	)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// SaveAuthState persists the authorization state nonce until the redirect returns.
func (s *SQLiteStore) SaveAuthState(state string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(tx, keyAuthState, state); err != nil {
		return fmt.Errorf("failed to store auth state: %w", err)
	}

	return tx.Commit()
}

// LoadAuthState reads the pending authorization state nonce.
func (s *SQLiteStore) LoadAuthState() (string, bool, error) {
	return s.get(keyAuthState)
}

// ClearAuthState invalidates the nonce once the callback has been processed.
func (s *SQLiteStore) ClearAuthState() error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", keyAuthState); err != nil {
		return fmt.Errorf("failed to clear auth state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return value, value != "", nil
}

func upsert(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
