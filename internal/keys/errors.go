package keys

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by issuance and lifecycle operations
var (
	// ErrQuotaExceeded means the owner already minted the monthly allowance
	// of test keys. User-actionable, never retried automatically.
	ErrQuotaExceeded = errors.New("monthly test key quota reached")

	// ErrIssuanceInFlight means another issuance for the same owner has not
	// finished yet. Guards against duplicate mints from rapid resubmission.
	ErrIssuanceInFlight = errors.New("another key issuance is already in progress")

	// ErrMalformedUpstream means the upstream returned a key that does not
	// match the expected format. Fatal for the attempt, not retried.
	ErrMalformedUpstream = errors.New("malformed upstream response")
)

// ValidationError reports bad caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamAuthError means the alias bootstrap (register/login) against the
// upstream failed. Issuance aborts before any record is written.
type UpstreamAuthError struct {
	Err error
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed: %v", e.Err)
}

func (e *UpstreamAuthError) Unwrap() error { return e.Err }

// UpstreamIssuanceError means the key generation call failed. It carries the
// upstream status and body; safe to retry with a fresh idempotency token.
type UpstreamIssuanceError struct {
	Err error
}

func (e *UpstreamIssuanceError) Error() string {
	return fmt.Sprintf("upstream key generation failed: %v", e.Err)
}

func (e *UpstreamIssuanceError) Unwrap() error { return e.Err }
