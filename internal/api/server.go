// Package api implements the REST handlers for notification ingest and the
// delivery audit log.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/eventbus"
	"github.com/shaharia-lab/mailcast/internal/storage"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

// Server holds all dependencies for the REST API handlers.
type Server struct {
	bus       eventbus.Bus
	store     storage.DeliveryStore
	transport transport.Transport
	processor *config.ProcessorConfig
	logger    *slog.Logger
}

// New creates a new API Server.
func New(
	bus eventbus.Bus,
	store storage.DeliveryStore,
	tr transport.Transport,
	processor *config.ProcessorConfig,
	logger *slog.Logger,
) *Server {
	return &Server{
		bus:       bus,
		store:     store,
		transport: tr,
		processor: processor,
		logger:    logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/notifications", s.handleCreateNotification)
	r.Post("/notifications/test", s.handleTestNotification)
	r.Get("/deliveries", s.handleListDeliveries)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
