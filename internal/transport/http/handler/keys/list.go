package keys

import (
	"net/http"
	"time"

	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler/shared"
	"github.com/falub/kazadigate/internal/types"
)

// ListResponse wraps the key list.
type ListResponse struct {
	Keys []*storage.APIKeyPreview `json:"keys"`
}

// List returns an owner's keys (GET /keys?ownerId=). Previews only: hashes
// never leave the store, and status is recomputed from the clock so a key
// past its expiry reads as expired even before the sweeper touches it.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("ownerId required"))
		return
	}

	records, err := h.Storage.ListAPIKeysByOwner(ownerID)
	if err != nil {
		h.Logger.Error("key list failed", "owner_id", ownerID, "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("could not list keys"))
		return
	}

	now := time.Now()
	previews := make([]*storage.APIKeyPreview, 0, len(records))
	for _, record := range records {
		if record.Status != record.EffectiveStatus(now) {
			h.Lifecycle.MarkExpiredAsync(record.ID)
		}
		previews = append(previews, record.ToPreview(now))
	}

	shared.WriteJSON(w, ListResponse{Keys: previews}, http.StatusOK)
}
