// Package auth implements credential checks for the transaction gateway.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/falub/kazadigate/internal/keys"
	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/storage/models"
	"github.com/falub/kazadigate/internal/types"
)

// Credential headers required on every gateway call
const (
	APIKeyHeader       = "x-api-key"
	ClientSecretHeader = "x-client-secret"
)

// keyContextKey is the context key for the authenticated key record.
type keyContextKey struct{}

// CachedKey holds a validated record for the lookup cache.
type CachedKey struct {
	Key        *models.APIKey
	ValidUntil time.Time
}

// CacheKey returns the cache key for a key hash. Exposed so revocation can
// evict the entry and take effect on the next inbound call.
func CacheKey(keyHash string) string {
	return "gw:" + keyHash
}

// GatewayAuth authenticates inbound transaction calls by API key and client
// secret. Every rejection uses the same message; callers never learn which
// check failed. Expiry is recomputed from expires_at on each call, so a
// stale persisted status never lets a dead key through.
func GatewayAuth(store storage.Storage, cache *ristretto.Cache[string, *CachedKey]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			clientSecret := r.Header.Get(ClientSecretHeader)
			if apiKey == "" || clientSecret == "" {
				writeUnauthorized(w)
				return
			}

			keyHash := keys.HashKey(apiKey)

			// 1. Lookup by hash, cache first
			record := lookupCached(cache, keyHash)
			if record == nil {
				var err error
				record, err = store.GetAPIKeyByHash(keyHash)
				if err != nil {
					writeUnauthorized(w)
					return
				}
				if cache != nil {
					cache.Set(CacheKey(keyHash), &CachedKey{
						Key:        record,
						ValidUntil: time.Now().Add(time.Minute),
					}, 1)
				}
			}

			// 2. Verify the client secret when one was recorded
			if record.SecretHash != "" {
				valid, err := storage.VerifySecret(clientSecret, record.SecretHash)
				if err != nil || !valid {
					writeUnauthorized(w)
					return
				}
			}

			// 3. Revocation and clock-driven expiry
			now := time.Now()
			switch record.EffectiveStatus(now) {
			case models.StatusRevoked:
				writeUnauthorized(w)
				return
			case models.StatusExpired:
				if record.Status == models.StatusActive {
					// Best-effort persistence of the recomputed state
					go func(id string) { _ = store.MarkExpired(id) }(record.ID)
				}
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), keyContextKey{}, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetKey retrieves the authenticated key record from the context.
func GetKey(ctx context.Context) *models.APIKey {
	if key, ok := ctx.Value(keyContextKey{}).(*models.APIKey); ok {
		return key
	}
	return nil
}

func lookupCached(cache *ristretto.Cache[string, *CachedKey], keyHash string) *models.APIKey {
	if cache == nil {
		return nil
	}
	cached, found := cache.Get(CacheKey(keyHash))
	if !found || time.Now().After(cached.ValidUntil) {
		return nil
	}
	return cached.Key
}

func writeUnauthorized(w http.ResponseWriter) {
	types.WriteError(w, http.StatusUnauthorized,
		types.ErrUnauthorized("invalid API key or client secret"))
}
