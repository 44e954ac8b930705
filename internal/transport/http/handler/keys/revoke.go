package keys

import (
	"errors"
	"net/http"

	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler/shared"
	"github.com/falub/kazadigate/internal/types"
)

// Revoke revokes a key by ID (POST /keys/{id}/revoke). Idempotent: a second
// revocation of the same key still returns 200.
func (h *Handlers) Revoke(w http.ResponseWriter, r *http.Request) {
	keyID := r.PathValue("id")
	if keyID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("key id required"))
		return
	}

	if err := h.Lifecycle.Revoke(keyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			types.WriteError(w, http.StatusNotFound, types.ErrNotFound("key not found"))
			return
		}
		h.Logger.Error("revocation failed", "key_id", keyID, "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("revocation failed"))
		return
	}

	shared.WriteJSON(w, map[string]string{"status": "revoked", "keyId": keyID}, http.StatusOK)
}
