package infra

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/falub/kazadigate/internal/version"
)

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"ok":      true,
		"version": version.Version,
		"uptime":  time.Since(h.StartTime).Round(time.Second).String(),
		"ts":      time.Now().UnixMilli(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
