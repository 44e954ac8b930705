// Package handler composes the HTTP handler groups.
package handler

import (
	"github.com/falub/kazadigate/internal/transport/http/handler/gateway"
	"github.com/falub/kazadigate/internal/transport/http/handler/infra"
	"github.com/falub/kazadigate/internal/transport/http/handler/keys"
)

// Repo holds the handler groups for the HTTP surface
type Repo struct {
	Keys    *keys.Handlers
	Gateway *gateway.Handlers
	Infra   *infra.Handlers
}

// NewRepo creates a new instance of the handler repository
func NewRepo(keysHandlers *keys.Handlers, gatewayHandlers *gateway.Handlers, infraHandlers *infra.Handlers) *Repo {
	return &Repo{
		Keys:    keysHandlers,
		Gateway: gatewayHandlers,
		Infra:   infraHandlers,
	}
}
