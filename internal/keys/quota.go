package keys

import (
	"time"

	"github.com/falub/kazadigate/internal/storage"
)

// DefaultMonthlyQuota is the number of test keys an owner may mint per
// calendar month.
const DefaultMonthlyQuota = 3

// QuotaEnforcer decides whether an owner may mint another test key this
// calendar month. The check-then-act sequence is not serialized against
// concurrent issuance, so the ceiling is a soft limit: two racing requests
// can both pass. Accepted; the consequence is low severity.
type QuotaEnforcer struct {
	store   storage.Storage
	ceiling int
}

// NewQuotaEnforcer creates an enforcer with the given monthly ceiling.
// A ceiling <= 0 falls back to the default.
func NewQuotaEnforcer(store storage.Storage, ceiling int) *QuotaEnforcer {
	if ceiling <= 0 {
		ceiling = DefaultMonthlyQuota
	}
	return &QuotaEnforcer{store: store, ceiling: ceiling}
}

// StartOfMonth returns the start of now's calendar month in UTC
func StartOfMonth(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// CanIssue reports whether the owner is below the monthly ceiling as of now
func (q *QuotaEnforcer) CanIssue(ownerID string, now time.Time) (bool, error) {
	count, err := q.store.CountTestKeysSince(ownerID, StartOfMonth(now))
	if err != nil {
		return false, err
	}
	return count < q.ceiling, nil
}
