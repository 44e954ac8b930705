package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/falub/kazadigate/internal/keys"
	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler"
	gatewayhandler "github.com/falub/kazadigate/internal/transport/http/handler/gateway"
	"github.com/falub/kazadigate/internal/transport/http/handler/infra"
	keyshandler "github.com/falub/kazadigate/internal/transport/http/handler/keys"
	"github.com/falub/kazadigate/internal/transport/http/middleware/auth"
	"github.com/falub/kazadigate/internal/upstream"
)

// testEnv wires the full application against a fake payment API.
type testEnv struct {
	router   http.Handler
	store    storage.Storage
	reveals  *reveal.Store
	cache    *ristretto.Cache[string, *auth.CachedKey]
	upstream *fakePaymentAPI
}

type fakePaymentAPI struct {
	mu           sync.Mutex
	minted       int
	transactions []transactionSeen
}

type transactionSeen struct {
	body      string
	idemKey   string
	requestID string
}

func (f *fakePaymentAPI) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-e2e"})
	})
	mux.HandleFunc("POST /api/generate-key", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.minted++
		key := fmt.Sprintf("kazadi-sk-e2e%013d", f.minted)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"apiKey": key,
			"last4":  key[len(key)-4:],
		})
	})
	mux.HandleFunc("POST /api/transaction", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.transactions = append(f.transactions, transactionSeen{
			body:      string(body),
			idemKey:   r.Header.Get("x-idempotency-key"),
			requestID: r.Header.Get("x-request-id"),
		})
		f.mu.Unlock()

		if strings.Contains(string(body), "declined") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = io.WriteString(w, `{"status":"declined","reason":"insufficient funds"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"approved","txId":"tx-100"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reveals := reveal.NewStore(15 * time.Minute)
	t.Cleanup(reveals.Close)

	cache, err := ristretto.NewCache(&ristretto.Config[string, *auth.CachedKey]{
		NumCounters: 1e4,
		MaxCost:     1e3,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)

	fake := &fakePaymentAPI{}
	srv := fake.server(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	up := upstream.NewClient(srv.URL)
	quota := keys.NewQuotaEnforcer(store, 3)
	issuer := keys.NewIssuer(store, up, reveals, quota, logger, time.Hour)
	lifecycle := keys.NewLifecycle(store, reveals, logger, func(keyHash string) {
		cache.Del(auth.CacheKey(keyHash))
	})

	repo := handler.NewRepo(
		keyshandler.New(issuer, lifecycle, store, reveals, logger),
		gatewayhandler.New(up, store, logger),
		infra.New(time.Now()),
	)

	router := NewRouter(repo, &RouterOptions{
		Logger:      logger,
		Storage:     store,
		KeyCache:    cache,
		FrontOrigin: "http://localhost:3000",
	})

	return &testEnv{router: router, store: store, reveals: reveals, cache: cache, upstream: fake}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) issueKey(t *testing.T, owner string) (keyID, last4 string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/keys", map[string]string{
		"ownerId": owner, "label": "sandbox", "clientSecret": "abc123",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issuance failed: %d %s", rec.Code, rec.Body.String())
	}

	var issued struct {
		KeyID string `json:"keyId"`
		Last4 string `json:"last4"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatal(err)
	}
	return issued.KeyID, issued.Last4
}

func (e *testEnv) revealKey(t *testing.T, keyID string) (apiKey, secret string, status int) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/keys/reveal", map[string]string{"keyId": keyID}, nil)
	if rec.Code != http.StatusOK {
		return "", "", rec.Code
	}
	var out struct {
		APIKey string `json:"apiKey"`
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.APIKey, out.Secret, rec.Code
}

func TestIssueAndRevealOnce(t *testing.T) {
	env := setupEnv(t)

	keyID, last4 := env.issueKey(t, "owner-1")

	apiKey, secret, status := env.revealKey(t, keyID)
	if status != http.StatusOK {
		t.Fatalf("reveal failed: %d", status)
	}
	if !strings.HasPrefix(apiKey, "kazadi-sk-") {
		t.Errorf("unexpected key format: %s", apiKey)
	}
	if secret != "abc123" {
		t.Errorf("expected secret abc123, got %s", secret)
	}
	if !strings.HasSuffix(apiKey, last4) {
		t.Errorf("last4 %s does not match key %s", last4, apiKey)
	}

	// Exactly once: the second reveal is always 404
	if _, _, status := env.revealKey(t, keyID); status != http.StatusNotFound {
		t.Errorf("expected 404 on second reveal, got %d", status)
	}
}

func TestMonthlyQuotaEndpoint(t *testing.T) {
	env := setupEnv(t)

	for i := 0; i < 3; i++ {
		env.issueKey(t, "owner-1")
	}

	rec := env.do(t, http.MethodPost, "/keys", map[string]string{
		"ownerId": "owner-1", "label": "one too many", "clientSecret": "abc123",
	}, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}

	records, _ := env.store.ListAPIKeysByOwner("owner-1")
	if len(records) != 3 {
		t.Errorf("quota rejection wrote a record: %d", len(records))
	}
}

func TestListKeys(t *testing.T) {
	env := setupEnv(t)

	keyID, _ := env.issueKey(t, "owner-1")

	rec := env.do(t, http.MethodGet, "/keys?ownerId=owner-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}

	var out struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(out.Keys))
	}
	entry := out.Keys[0]
	if entry["keyId"] != keyID || entry["status"] != "active" {
		t.Errorf("unexpected entry: %v", entry)
	}
	last4, _ := entry["last4"].(string)
	if entry["maskedKey"] != "kazadi-sk-************"+last4 {
		t.Errorf("unexpected masked key: %v", entry["maskedKey"])
	}
	// Hashes never leave the store
	body := rec.Body.String()
	if strings.Contains(body, "keyHash") || strings.Contains(body, "secretHash") {
		t.Error("hash fields leaked into the list response")
	}

	rec = env.do(t, http.MethodGet, "/keys", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without ownerId, got %d", rec.Code)
	}
}

func TestGatewayEndToEnd(t *testing.T) {
	env := setupEnv(t)

	keyID, _ := env.issueKey(t, "owner-1")
	apiKey, secret, status := env.revealKey(t, keyID)
	if status != http.StatusOK {
		t.Fatalf("reveal failed: %d", status)
	}

	headers := map[string]string{
		"x-api-key":         apiKey,
		"x-client-secret":   secret,
		"x-idempotency-key": "idem-123",
		"X-Request-ID":      "req-456",
	}

	rec := env.do(t, http.MethodPost, "/transaction", map[string]any{"amount": 1299}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("gateway call failed: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"txId":"tx-100"`) {
		t.Errorf("upstream body not relayed verbatim: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type not relayed: %s", ct)
	}

	// Correlation headers reached the upstream
	env.upstream.mu.Lock()
	seen := env.upstream.transactions[len(env.upstream.transactions)-1]
	env.upstream.mu.Unlock()
	if seen.idemKey != "idem-123" || seen.requestID != "req-456" {
		t.Errorf("correlation headers lost: %+v", seen)
	}
	if !strings.Contains(seen.body, `"amount":1299`) {
		t.Errorf("body not forwarded verbatim: %s", seen.body)
	}

	// Non-2xx upstream outcomes are relayed, not swallowed
	rec = env.do(t, http.MethodPost, "/transaction", map[string]any{"note": "declined"}, headers)
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("expected relayed 402, got %d", rec.Code)
	}

	// Usage counters catch up asynchronously
	deadline := time.After(2 * time.Second)
	for {
		record, err := env.store.GetAPIKey(keyID)
		if err != nil {
			t.Fatal(err)
		}
		if record.RequestCount == 2 && record.LastUsedAt != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("usage counter never reached 2: %d", record.RequestCount)
		case <-time.After(10 * time.Millisecond):
		}
	}

	days, err := env.store.GetUsageDays("owner-1", "2000-01-01", "2999-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0].RequestCount != 2 || days[0].ErrorCount != 1 {
		t.Errorf("unexpected daily aggregate: %+v", days)
	}

	// The same aggregates are readable over the dashboard endpoint
	rec = env.do(t, http.MethodGet, "/usage?ownerId=owner-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("usage query failed: %d %s", rec.Code, rec.Body.String())
	}
	var usage struct {
		OwnerID string `json:"ownerId"`
		Days    []struct {
			RequestCount int64 `json:"requestCount"`
			ErrorCount   int64 `json:"errorCount"`
		} `json:"days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatal(err)
	}
	if usage.OwnerID != "owner-1" || len(usage.Days) != 1 {
		t.Fatalf("unexpected usage response: %s", rec.Body.String())
	}
	if usage.Days[0].RequestCount != 2 || usage.Days[0].ErrorCount != 1 {
		t.Errorf("unexpected usage day: %+v", usage.Days[0])
	}

	if rec := env.do(t, http.MethodGet, "/usage", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without ownerId, got %d", rec.Code)
	}
}

func TestRevokeEndpoint(t *testing.T) {
	env := setupEnv(t)

	keyID, _ := env.issueKey(t, "owner-1")
	apiKey, secret, _ := env.revealKey(t, keyID)

	// Warm the gateway cache, then revoke
	headers := map[string]string{"x-api-key": apiKey, "x-client-secret": secret}
	if rec := env.do(t, http.MethodPost, "/transaction", map[string]any{"amount": 1}, headers); rec.Code != http.StatusOK {
		t.Fatalf("pre-revoke call failed: %d", rec.Code)
	}
	env.cache.Wait()

	rec := env.do(t, http.MethodPost, "/keys/"+keyID+"/revoke", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke failed: %d %s", rec.Code, rec.Body.String())
	}
	env.cache.Wait()

	// Gateway rejects the revoked key
	if rec := env.do(t, http.MethodPost, "/transaction", map[string]any{"amount": 1}, headers); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after revocation, got %d", rec.Code)
	}

	// Idempotent revoke
	if rec := env.do(t, http.MethodPost, "/keys/"+keyID+"/revoke", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("second revoke returned %d", rec.Code)
	}

	// Unknown key
	if rec := env.do(t, http.MethodPost, "/keys/nope/revoke", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown key, got %d", rec.Code)
	}
}

func TestRevokeDeletesRevealEntry(t *testing.T) {
	env := setupEnv(t)

	keyID, _ := env.issueKey(t, "owner-1")

	rec := env.do(t, http.MethodPost, "/keys/"+keyID+"/revoke", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke failed: %d", rec.Code)
	}

	// A revoked key's plaintext is no longer revealable
	if _, _, status := env.revealKey(t, keyID); status != http.StatusNotFound {
		t.Errorf("expected 404 after revocation, got %d", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health failed: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}
