package keys

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/transport/http/handler/shared"
	"github.com/falub/kazadigate/internal/types"
)

// RevealRequest is the body of POST /keys/reveal.
type RevealRequest struct {
	KeyID string `json:"keyId"`
}

// RevealResponse discloses the plaintext pair exactly once.
type RevealResponse struct {
	APIKey string `json:"apiKey"`
	Secret string `json:"secret"`
}

// Reveal consumes the one-time reveal entry for a key (POST /keys/reveal).
// A second call for the same key always gets 404, whatever the first
// returned.
func (h *Handlers) Reveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.KeyID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("keyId required"))
		return
	}

	entry, err := h.Reveals.Take(req.KeyID)
	switch {
	case errors.Is(err, reveal.ErrNotFound):
		types.WriteError(w, http.StatusNotFound,
			types.ErrNotFound("not found or already revealed"))
		return
	case errors.Is(err, reveal.ErrExpired):
		types.WriteError(w, http.StatusGone, types.ErrGone("reveal window expired"))
		return
	case err != nil:
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("reveal failed"))
		return
	}

	shared.WriteJSON(w, RevealResponse{APIKey: entry.Key, Secret: entry.Secret}, http.StatusOK)
}
