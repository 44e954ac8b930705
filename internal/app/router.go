package app

import (
	"log/slog"
	"net/http"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler"
	"github.com/falub/kazadigate/internal/transport/http/middleware"
	"github.com/falub/kazadigate/internal/transport/http/middleware/auth"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	KeyCache    *ristretto.Cache[string, *auth.CachedKey]
	FrontOrigin string
}

// NewRouter creates and configures the HTTP router with all application
// routes. Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth)
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)

	// Key management routes, called by the dashboard
	mux.HandleFunc("POST /keys", repo.Keys.Create)
	mux.HandleFunc("GET /keys", repo.Keys.List)
	mux.HandleFunc("POST /keys/reveal", repo.Keys.Reveal)
	mux.HandleFunc("POST /keys/{id}/revoke", repo.Keys.Revoke)
	mux.HandleFunc("GET /usage", repo.Keys.Usage)

	// Transaction gateway (requires API key + client secret headers)
	gatewayAuth := auth.GatewayAuth(opts.Storage, opts.KeyCache)
	mux.Handle("POST /transaction", gatewayAuth(http.HandlerFunc(repo.Gateway.Transaction)))

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	h = middleware.RequestID(h)
	h = middleware.CORS(opts.FrontOrigin)(h)

	return h
}
