package keys

import (
	"net/http"
	"time"

	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler/shared"
	"github.com/falub/kazadigate/internal/types"
)

const usageDateFormat = "2006-01-02"

// UsageResponse wraps an owner's daily usage aggregates.
type UsageResponse struct {
	OwnerID string              `json:"ownerId"`
	From    string              `json:"from"`
	To      string              `json:"to"`
	Days    []*storage.UsageDay `json:"days"`
}

// Usage returns the owner's per-day request aggregates
// (GET /usage?ownerId=&from=&to=). The window defaults to the last 30 days;
// bounds are inclusive dates in UTC.
func (h *Handlers) Usage(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("ownerId required"))
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30).Format(usageDateFormat)
	to := now.Format(usageDateFormat)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(usageDateFormat, v)
		if err != nil {
			types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("from must be YYYY-MM-DD"))
			return
		}
		from = parsed.Format(usageDateFormat)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(usageDateFormat, v)
		if err != nil {
			types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("to must be YYYY-MM-DD"))
			return
		}
		to = parsed.Format(usageDateFormat)
	}

	days, err := h.Storage.GetUsageDays(ownerID, from, to)
	if err != nil {
		h.Logger.Error("usage query failed", "owner_id", ownerID, "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("could not load usage"))
		return
	}
	if days == nil {
		days = []*storage.UsageDay{}
	}

	shared.WriteJSON(w, UsageResponse{OwnerID: ownerID, From: from, To: to, Days: days}, http.StatusOK)
}
