package keys

import (
	"log/slog"
	"time"

	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/storage"
)

// DefaultSweepInterval is how often the expiry sweeper runs
const DefaultSweepInterval = 5 * time.Minute

// Lifecycle manages key status transitions: revocation and expiry.
// Authorization never depends on the persisted status being fresh; it is
// recomputed from expires_at on every read. The persisted flag is only a
// best-effort mirror kept honest here.
type Lifecycle struct {
	store   storage.Storage
	reveals *reveal.Store
	logger  *slog.Logger

	// invalidate drops any gateway auth cache entry for a key hash,
	// so revocation takes effect on the next inbound call.
	invalidate func(keyHash string)

	stop chan struct{}
}

// NewLifecycle wires a lifecycle manager. invalidate may be nil.
func NewLifecycle(store storage.Storage, reveals *reveal.Store, logger *slog.Logger, invalidate func(keyHash string)) *Lifecycle {
	return &Lifecycle{
		store:      store,
		reveals:    reveals,
		logger:     logger,
		invalidate: invalidate,
		stop:       make(chan struct{}),
	}
}

// Revoke marks a key revoked, drops its reveal entry and evicts it from the
// gateway auth cache. Terminal and idempotent: revoking an already-revoked
// key is a no-op, not an error. Returns storage.ErrNotFound for unknown IDs.
func (l *Lifecycle) Revoke(keyID string) error {
	record, err := l.store.GetAPIKey(keyID)
	if err != nil {
		return err
	}

	if err := l.store.Revoke(keyID, time.Now()); err != nil {
		return err
	}

	l.reveals.Delete(keyID)
	if l.invalidate != nil {
		l.invalidate(record.KeyHash)
	}

	l.logger.Info("key revoked", "key_id", keyID, "owner_id", record.OwnerID)
	return nil
}

// MarkExpiredAsync persists the expired flag without blocking the caller.
// The update is allowed to fail silently; reads recompute expiry anyway.
func (l *Lifecycle) MarkExpiredAsync(keyID string) {
	go func() { _ = l.store.MarkExpired(keyID) }()
}

// StartSweeper runs a background loop that flips overdue active test keys
// to expired, keeping list views honest between reads.
func (l *Lifecycle) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n, err := l.store.MarkOverdueExpired(time.Now())
				if err != nil {
					l.logger.Warn("expiry sweep failed", "error", err)
					continue
				}
				if n > 0 {
					l.logger.Info("expiry sweep", "expired", n)
				}
			case <-l.stop:
				return
			}
		}
	}()
}

// StopSweeper stops the background sweeper
func (l *Lifecycle) StopSweeper() {
	close(l.stop)
}
