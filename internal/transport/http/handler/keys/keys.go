// Package keys implements the key management HTTP handlers.
package keys

import (
	"log/slog"

	"github.com/falub/kazadigate/internal/keys"
	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/storage"
)

// Handlers holds the dependencies for key management HTTP handlers.
type Handlers struct {
	Issuer    *keys.Issuer
	Lifecycle *keys.Lifecycle
	Storage   storage.Storage
	Reveals   *reveal.Store
	Logger    *slog.Logger
}

// New creates a new instance of key management handlers.
func New(issuer *keys.Issuer, lifecycle *keys.Lifecycle, store storage.Storage, reveals *reveal.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		Issuer:    issuer,
		Lifecycle: lifecycle,
		Storage:   store,
		Reveals:   reveals,
		Logger:    logger,
	}
}
