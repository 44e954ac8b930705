// Package storage provides the storage interface and implementations.
package storage

import (
	"time"

	"github.com/falub/kazadigate/internal/storage/models"
	"github.com/falub/kazadigate/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	APIKey        = models.APIKey
	APIKeyPreview = models.APIKeyPreview
	UsageDay      = models.UsageDay
)

// Re-export functions from models package
var MaskKey = models.MaskKey

// Re-export errors from sqlite package
var (
	ErrNotFound      = sqlite.ErrNotFound
	ErrDuplicateKey  = sqlite.ErrDuplicateKey
	ErrInvalidInput  = sqlite.ErrInvalidInput
	ErrStorageClosed = sqlite.ErrStorageClosed
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// API key operations
	CreateAPIKey(key *models.APIKey) error
	GetAPIKey(id string) (*models.APIKey, error)
	GetAPIKeyByHash(keyHash string) (*models.APIKey, error)
	ListAPIKeysByOwner(ownerID string) ([]*models.APIKey, error)
	CountTestKeysSince(ownerID string, since time.Time) (int, error)

	// Lifecycle operations
	MarkExpired(id string) error
	MarkOverdueExpired(now time.Time) (int64, error)
	Revoke(id string, revokedAt time.Time) error

	// Usage tracking operations
	RecordUsage(id string, usedAt time.Time) error
	UpdateUsageDay(usage *models.UsageDay) error
	GetUsageDays(ownerID, startDate, endDate string) ([]*models.UsageDay, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance.
// This is the main factory function for creating storage.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
