// Package upstream implements the client for the Kazadi SecurePay API,
// the external system that mints keys and processes transactions.
package upstream

import (
	"fmt"
)

// Error reports a non-success response from the upstream. The raw status
// and body are preserved so callers can surface or log them; upstream
// payloads are never re-exposed as untyped maps.
type Error struct {
	Op     string // "register", "login", "generate-key", "transaction"
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s: HTTP %d: %s", e.Op, e.Status, e.Body)
}

// KeyGrant is the decoded success payload of a generate-key call
type KeyGrant struct {
	APIKey string
	KeyID  string
	Last4  string
}
