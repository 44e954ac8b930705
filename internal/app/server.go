package app

import (
	"log"
	"net/http"
	"time"

	"github.com/falub/kazadigate/internal/config"
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
	config     *config.Config
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:         cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
	}
}

// Start begins listening and serving HTTP requests
func (s *Server) Start() error {
	log.Printf("Kazadigate listening on http://localhost%s", s.config.ServerPort)

	if err := s.httpServer.ListenAndServe(); err != nil {
		return err
	}
	return nil
}
