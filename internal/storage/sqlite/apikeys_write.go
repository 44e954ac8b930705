package sqlite

import (
	"strings"
	"time"

	"github.com/falub/kazadigate/internal/storage/models"
	"github.com/google/uuid"
)

// CreateAPIKey inserts a new API key record. The insert is a single
// statement, so a failure leaves no partial record behind.
func (s *Storage) CreateAPIKey(key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if key.OwnerID == "" || key.KeyHash == "" {
		return ErrInvalidInput
	}

	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}

	// Timestamps are stored as text; comparisons in SQL only order
	// correctly when every stored value carries the same (UTC) offset.
	key.CreatedAt = key.CreatedAt.UTC()
	if key.ExpiresAt != nil {
		utc := key.ExpiresAt.UTC()
		key.ExpiresAt = &utc
	}

	_, err := s.db.Exec(`
		INSERT INTO api_keys (id, owner_id, label, key_hash, secret_hash, last4,
			type, status, alias_email, request_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key.ID, key.OwnerID, key.Label, key.KeyHash, key.SecretHash, key.Last4,
		key.Type, key.Status, key.AliasEmail, key.RequestCount, key.CreatedAt, key.ExpiresAt)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateKey
	}
	return err
}

// MarkExpired transitions an active key to expired. Already-expired or
// revoked keys are untouched, so re-applying is a no-op.
func (s *Storage) MarkExpired(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		UPDATE api_keys SET status = ? WHERE id = ? AND status = ?
	`, models.StatusExpired, id, models.StatusActive)
	return err
}

// MarkOverdueExpired transitions every active test key past its expiry time
// to expired. Returns the number of records updated.
func (s *Storage) MarkOverdueExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	res, err := s.db.Exec(`
		UPDATE api_keys SET status = ?
		WHERE status = ? AND type = ? AND expires_at IS NOT NULL AND expires_at <= ?
	`, models.StatusExpired, models.StatusActive, models.KeyTypeTest, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Revoke marks a key revoked. Revocation is terminal and idempotent:
// a second call finds the status already revoked and changes nothing.
func (s *Storage) Revoke(id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	res, err := s.db.Exec(`
		UPDATE api_keys SET status = ?, revoked_at = ?
		WHERE id = ? AND status != ?
	`, models.StatusRevoked, revokedAt.UTC(), id, models.StatusRevoked)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish "missing" from "already revoked"
		var status string
		err := s.db.QueryRow(`SELECT status FROM api_keys WHERE id = ?`, id).Scan(&status)
		if err != nil {
			return ErrNotFound
		}
	}
	return nil
}

// RecordUsage increments the request counter and stamps last_used_at.
// Revoked keys never accept further increments.
func (s *Storage) RecordUsage(id string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		UPDATE api_keys SET request_count = request_count + 1, last_used_at = ?
		WHERE id = ? AND status != ?
	`, usedAt.UTC(), id, models.StatusRevoked)
	return err
}
