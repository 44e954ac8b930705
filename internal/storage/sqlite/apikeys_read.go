package sqlite

import (
	"database/sql"
	"time"

	"github.com/falub/kazadigate/internal/storage/models"
)

const apiKeyColumns = `id, owner_id, label, key_hash, secret_hash, last4, type, status,
	alias_email, request_count, last_used_at, created_at, expires_at, revoked_at`

// GetAPIKey retrieves an API key record by ID
func (s *Storage) GetAPIKey(id string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	row := s.db.QueryRow(`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id)
	return scanAPIKey(row)
}

// GetAPIKeyByHash retrieves the API key record matching a SHA-256 digest.
// The hash column carries a unique constraint, so at most one record matches.
func (s *Storage) GetAPIKeyByHash(keyHash string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	row := s.db.QueryRow(`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = ?`, keyHash)
	return scanAPIKey(row)
}

// ListAPIKeysByOwner returns all key records for one owner, newest first
func (s *Storage) ListAPIKeysByOwner(ownerID string) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT `+apiKeyColumns+`
		FROM api_keys WHERE owner_id = ? ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// CountTestKeysSince counts test-type keys created at or after the given time
// for one owner. Used by the monthly issuance quota.
func (s *Storage) CountTestKeysSince(ownerID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM api_keys
		WHERE owner_id = ? AND type = ? AND created_at >= ?
	`, ownerID, models.KeyTypeTest, since.UTC()).Scan(&count)
	return count, err
}

// scanner abstracts sql.Row and sql.Rows for scanAPIKey
type scanner interface {
	Scan(dest ...any) error
}

// scanAPIKey scans one row into an APIKey
func scanAPIKey(row scanner) (*models.APIKey, error) {
	var key models.APIKey
	var lastUsedAt, expiresAt, revokedAt sql.NullTime

	err := row.Scan(
		&key.ID, &key.OwnerID, &key.Label, &key.KeyHash, &key.SecretHash,
		&key.Last4, &key.Type, &key.Status, &key.AliasEmail,
		&key.RequestCount, &lastUsedAt, &key.CreatedAt, &expiresAt, &revokedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastUsedAt.Valid {
		key.LastUsedAt = &lastUsedAt.Time
	}
	if expiresAt.Valid {
		key.ExpiresAt = &expiresAt.Time
	}
	if revokedAt.Valid {
		key.RevokedAt = &revokedAt.Time
	}

	return &key, nil
}
