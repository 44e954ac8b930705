package models

import "time"

// Key type constants.
const (
	KeyTypeTest       = "test"
	KeyTypeProduction = "production"
)

// Key status constants. Transitions: active -> expired (time-driven),
// active -> revoked (explicit). Expired and revoked are terminal.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusRevoked = "revoked"
)

// APIKey represents an issued Kazadi SecurePay API key.
// The raw key is never persisted; only its SHA-256 digest and last4 survive.
type APIKey struct {
	ID           string     `json:"keyId"`
	OwnerID      string     `json:"ownerId"`
	Label        string     `json:"label"`
	KeyHash      string     `json:"-"` // SHA-256 hex digest (never exposed in JSON)
	SecretHash   string     `json:"-"` // Argon2id hash of the client secret
	Last4        string     `json:"last4"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	AliasEmail   string     `json:"-"` // upstream alias identity used at mint time
	RequestCount int64      `json:"requestCount"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}

// APIKeyPreview is a safe representation for list responses (no hashes).
type APIKeyPreview struct {
	ID           string     `json:"keyId"`
	OwnerID      string     `json:"ownerId"`
	Label        string     `json:"label"`
	Last4        string     `json:"last4"`
	MaskedKey    string     `json:"maskedKey"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	RequestCount int64      `json:"requestCount"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}

// ToPreview converts APIKey to a safe preview with the status recomputed
// from the clock, so stale persisted flags never leak into list views.
func (k *APIKey) ToPreview(now time.Time) *APIKeyPreview {
	return &APIKeyPreview{
		ID:           k.ID,
		OwnerID:      k.OwnerID,
		Label:        k.Label,
		Last4:        k.Last4,
		MaskedKey:    MaskKey(k.Last4),
		Type:         k.Type,
		Status:       k.EffectiveStatus(now),
		RequestCount: k.RequestCount,
		LastUsedAt:   k.LastUsedAt,
		CreatedAt:    k.CreatedAt,
		ExpiresAt:    k.ExpiresAt,
		RevokedAt:    k.RevokedAt,
	}
}

// IsExpired reports whether a test key is past its expiry time.
// Production keys never expire by clock.
func (k *APIKey) IsExpired(now time.Time) bool {
	if k.Type != KeyTypeTest || k.ExpiresAt == nil {
		return false
	}
	return !now.Before(*k.ExpiresAt)
}

// EffectiveStatus recomputes the status from the clock. Authorization
// decisions use this, never the persisted status column alone.
func (k *APIKey) EffectiveStatus(now time.Time) string {
	if k.Status == StatusRevoked {
		return StatusRevoked
	}
	if k.IsExpired(now) {
		return StatusExpired
	}
	return k.Status
}

// MaskKey renders the masked display form of a key from its last4.
func MaskKey(last4 string) string {
	return "kazadi-sk-************" + last4
}
