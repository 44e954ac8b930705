package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyPrefix is the prefix carried by every key minted by Kazadi SecurePay
const KeyPrefix = "kazadi-sk-"

// HashKey returns the SHA-256 hex digest of a raw API key.
// The digest is what gets persisted and looked up; the raw key never is.
// Hex encoding matches what the upstream dashboard tooling produces, so
// records stay interoperable.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Last4 returns the last four characters of a raw key for display purposes
func Last4(raw string) string {
	if len(raw) < 4 {
		return raw
	}
	return raw[len(raw)-4:]
}

// ValidKeyFormat reports whether a raw key looks like a Kazadi key:
// non-empty with the expected prefix and at least some material after it.
func ValidKeyFormat(raw string) bool {
	return strings.HasPrefix(raw, KeyPrefix) && len(raw) > len(KeyPrefix)
}
