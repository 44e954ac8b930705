// Package gateway implements the authenticated transaction relay.
package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/middleware"
	"github.com/falub/kazadigate/internal/transport/http/middleware/auth"
	"github.com/falub/kazadigate/internal/types"
	"github.com/falub/kazadigate/internal/upstream"
)

// Handlers holds the dependencies for gateway HTTP handlers.
type Handlers struct {
	Upstream *upstream.Client
	Storage  storage.Storage
	Logger   *slog.Logger
}

// New creates a new instance of gateway handlers.
func New(up *upstream.Client, store storage.Storage, logger *slog.Logger) *Handlers {
	return &Handlers{Upstream: up, Storage: store, Logger: logger}
}

// Transaction forwards an authenticated call to the upstream transaction
// endpoint and relays status, content type and body verbatim. Usage
// counters are updated after the fact and never affect the relayed
// response.
func (h *Handlers) Transaction(w http.ResponseWriter, r *http.Request) {
	record := auth.GetKey(r.Context())
	if record == nil {
		types.WriteError(w, http.StatusUnauthorized,
			types.ErrUnauthorized("invalid API key or client secret"))
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	idemKey := r.Header.Get("x-idempotency-key")

	resp, err := h.Upstream.ForwardTransaction(r.Context(), r.Body, requestID, idemKey)
	if err != nil {
		h.Logger.Error("upstream transaction failed",
			"key_id", record.ID, "request_id", requestID, "error", err)
		types.WriteError(w, http.StatusInternalServerError,
			types.ErrServer("transaction processing failed"))
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.Logger.Warn("relay interrupted", "key_id", record.ID, "error", err)
	}

	// Counters are informational; losing one under failure is acceptable
	h.trackUsage(record, resp.StatusCode)
}

// trackUsage increments the key's request counter and the owner's daily
// aggregate, fire-and-forget.
func (h *Handlers) trackUsage(record *storage.APIKey, statusCode int) {
	// UTC so the daily bucket matches the usage query's date window
	now := time.Now().UTC()
	keyID, ownerID := record.ID, record.OwnerID

	go func() {
		if err := h.Storage.RecordUsage(keyID, now); err != nil {
			h.Logger.Warn("usage counter update failed", "key_id", keyID, "error", err)
		}

		errorCount := int64(0)
		if statusCode >= 400 {
			errorCount = 1
		}
		usage := &storage.UsageDay{
			Date:         now.Format("2006-01-02"),
			OwnerID:      ownerID,
			RequestCount: 1,
			ErrorCount:   errorCount,
		}
		if err := h.Storage.UpdateUsageDay(usage); err != nil {
			h.Logger.Warn("daily usage update failed", "owner_id", ownerID, "error", err)
		}
	}()
}
