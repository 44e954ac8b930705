package keys

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/falub/kazadigate/internal/keys"
	"github.com/falub/kazadigate/internal/transport/http/handler/shared"
	"github.com/falub/kazadigate/internal/types"
	"github.com/falub/kazadigate/internal/upstream"
)

// CreateKeyRequest is the body of POST /keys.
type CreateKeyRequest struct {
	OwnerID      string `json:"ownerId"`
	Label        string `json:"label"`
	ClientSecret string `json:"clientSecret"`
}

// Create issues a new test key (POST /keys). The response carries only the
// key ID and last4; the plaintext waits in the reveal store for its
// one-time read.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body"))
		return
	}

	issued, err := h.Issuer.IssueTestKey(r.Context(), req.OwnerID, req.Label, req.ClientSecret)
	if err != nil {
		h.writeIssueError(w, err)
		return
	}

	shared.WriteJSON(w, issued, http.StatusCreated)
}

// writeIssueError maps issuance errors to HTTP responses. Every branch
// produces a structured body; internals never cross the boundary.
func (h *Handlers) writeIssueError(w http.ResponseWriter, err error) {
	var validation *keys.ValidationError
	var authErr *keys.UpstreamAuthError
	var issueErr *keys.UpstreamIssuanceError

	switch {
	case errors.As(err, &validation):
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(validation.Error()))
	case errors.Is(err, keys.ErrQuotaExceeded):
		types.WriteError(w, http.StatusTooManyRequests,
			types.ErrRateLimit("monthly test key quota reached"))
	case errors.Is(err, keys.ErrIssuanceInFlight):
		types.WriteError(w, http.StatusConflict,
			types.ErrConflict("a key issuance is already in progress"))
	case errors.As(err, &authErr):
		h.Logger.Error("issuance failed at alias bootstrap", "error", err)
		types.WriteError(w, http.StatusBadGateway,
			types.ErrUpstream("could not authenticate with the payment API"))
	case errors.As(err, &issueErr):
		var up *upstream.Error
		if errors.As(err, &up) {
			h.Logger.Error("issuance failed at key generation",
				"upstream_status", up.Status, "upstream_body", up.Body)
		}
		types.WriteError(w, http.StatusBadGateway,
			types.ErrUpstream("payment API rejected key generation"))
	case errors.Is(err, keys.ErrMalformedUpstream):
		h.Logger.Error("issuance failed, malformed upstream response")
		types.WriteError(w, http.StatusBadGateway,
			types.ErrUpstream("payment API returned an unexpected key format"))
	default:
		h.Logger.Error("issuance failed", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("key issuance failed"))
	}
}
