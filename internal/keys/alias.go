package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// aliasDomain is the mail domain for generated upstream alias identities
const aliasDomain = "falub.ca"

// aliasChars is the alphabet for alias local-parts
var aliasChars = []byte("abcdefghijklmnopqrstuvwxyz0123456789")

// NewAliasEmail generates a random alias identity for upstream registration
func NewAliasEmail() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = aliasChars[int(b[i])%len(aliasChars)]
	}
	return string(b) + "@" + aliasDomain, nil
}

// AliasPassword derives the upstream password for an alias identity from the
// owner and the alias itself. Deterministic, so the password is reproducible
// without ever being stored. The "v2" suffix versions the derivation.
func AliasPassword(ownerID, aliasEmail string) string {
	sum := sha256.Sum256([]byte("kazadi:" + ownerID + ":" + aliasEmail + ":v2"))
	return "KS-" + hex.EncodeToString(sum[:])[:32]
}
