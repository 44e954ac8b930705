package keys

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/storage/models"
	"github.com/falub/kazadigate/internal/upstream"
	"github.com/google/uuid"
)

// DefaultTestKeyTTL is how long a freshly minted test key stays valid
const DefaultTestKeyTTL = time.Hour

// MinClientSecretLen is the minimum accepted client secret length
const MinClientSecretLen = 6

// Issued is the public result of a successful issuance. The plaintext key
// is deliberately absent; it is readable exactly once through the reveal
// store.
type Issued struct {
	KeyID string `json:"keyId"`
	Last4 string `json:"last4"`
}

// Issuer coordinates minting a test key: alias bootstrap against the
// upstream, key generation, hashing and persistence, and seeding the reveal
// store with the plaintext material.
type Issuer struct {
	store    storage.Storage
	upstream *upstream.Client
	reveals  *reveal.Store
	quota    *QuotaEnforcer
	logger   *slog.Logger

	testKeyTTL time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}

	now func() time.Time
}

// NewIssuer wires an issuer. A testKeyTTL <= 0 falls back to the default.
func NewIssuer(store storage.Storage, up *upstream.Client, reveals *reveal.Store, quota *QuotaEnforcer, logger *slog.Logger, testKeyTTL time.Duration) *Issuer {
	if testKeyTTL <= 0 {
		testKeyTTL = DefaultTestKeyTTL
	}
	return &Issuer{
		store:      store,
		upstream:   up,
		reveals:    reveals,
		quota:      quota,
		logger:     logger,
		testKeyTTL: testKeyTTL,
		inFlight:   make(map[string]struct{}),
		now:        time.Now,
	}
}

// IssueTestKey mints a new test key for the owner. On success the record is
// persisted (hash only) and the plaintext key/secret sit in the reveal store
// waiting for their one-time read.
func (i *Issuer) IssueTestKey(ctx context.Context, ownerID, label, clientSecret string) (*Issued, error) {
	if ownerID == "" {
		return nil, &ValidationError{Field: "ownerId", Reason: "required"}
	}
	if len(strings.TrimSpace(clientSecret)) < MinClientSecretLen {
		return nil, &ValidationError{Field: "clientSecret", Reason: "must be at least 6 characters"}
	}

	// One issuance per owner at a time; duplicates from rapid resubmission
	// would mint duplicate upstream keys.
	if !i.acquire(ownerID) {
		return nil, ErrIssuanceInFlight
	}
	defer i.release(ownerID)

	// All lifecycle arithmetic happens on UTC instants; the stored
	// created_at/expires_at must compare cleanly against UTC parameters.
	now := i.now().UTC()

	ok, err := i.quota.CanIssue(ownerID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	// Alias bootstrap: fresh identity, derived password, best-effort
	// register, then login for a short-lived token.
	aliasEmail, err := NewAliasEmail()
	if err != nil {
		return nil, &UpstreamAuthError{Err: err}
	}
	password := AliasPassword(ownerID, aliasEmail)

	if err := i.upstream.Register(ctx, aliasEmail, password); err != nil {
		i.logger.Warn("alias registration failed, proceeding to login",
			"alias", aliasEmail, "error", err)
	}

	token, err := i.upstream.Login(ctx, aliasEmail, password)
	if err != nil {
		return nil, &UpstreamAuthError{Err: err}
	}

	idemToken := uuid.New().String()
	grant, err := i.upstream.GenerateKey(ctx, token, aliasEmail, clientSecret, idemToken)
	if err != nil {
		return nil, &UpstreamIssuanceError{Err: err}
	}

	if !ValidKeyFormat(grant.APIKey) {
		i.logger.Error("upstream returned key with unexpected format", "alias", aliasEmail)
		return nil, ErrMalformedUpstream
	}

	keyID := grant.KeyID
	if keyID == "" {
		keyID = uuid.New().String()
	}
	last4 := grant.Last4
	if last4 == "" {
		last4 = Last4(grant.APIKey)
	}

	secretHash, err := storage.HashSecret(clientSecret, nil)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(i.testKeyTTL)
	record := &models.APIKey{
		ID:         keyID,
		OwnerID:    ownerID,
		Label:      label,
		KeyHash:    HashKey(grant.APIKey),
		SecretHash: secretHash,
		Last4:      last4,
		Type:       models.KeyTypeTest,
		Status:     models.StatusActive,
		AliasEmail: aliasEmail,
		CreatedAt:  now,
		ExpiresAt:  &expiresAt,
	}

	// If this write fails the upstream key stays orphaned; issuance is still
	// reported failed. No compensating revoke exists on the upstream yet.
	if err := i.store.CreateAPIKey(record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			i.logger.Error("key hash collision on insert", "key_id", keyID)
		}
		return nil, err
	}

	// Only place the plaintext pair is ever stored, and only transiently.
	i.reveals.Put(keyID, grant.APIKey, clientSecret)

	i.logger.Info("test key issued",
		"key_id", keyID, "owner_id", ownerID, "last4", last4,
		"expires_at", expiresAt)

	return &Issued{KeyID: keyID, Last4: last4}, nil
}

func (i *Issuer) acquire(ownerID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, busy := i.inFlight[ownerID]; busy {
		return false
	}
	i.inFlight[ownerID] = struct{}{}
	return true
}

func (i *Issuer) release(ownerID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.inFlight, ownerID)
}
