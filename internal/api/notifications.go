package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/mailcast/internal/notifier"
	"github.com/shaharia-lab/mailcast/internal/storage"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

const errInvalidJSONBody = "invalid JSON body"

// createNotificationRequest is the ingest payload. The id and creation time
// are assigned server-side.
type createNotificationRequest struct {
	Origin     string                 `json:"origin"`
	User       string                 `json:"user,omitempty"`
	Payload    notifier.Payload       `json:"payload"`
	Recipients notifier.RecipientSpec `json:"recipients"`
}

// handleCreateNotification validates and enqueues a notification for
// dispatch. Delivery is asynchronous and best-effort, so the response is
// 202 Accepted with the assigned id.
func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	if req.Payload.Title == "" {
		writeError(w, http.StatusBadRequest, "payload.title is required")
		return
	}
	if err := req.Recipients.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n := notifier.Notification{
		Event: notifier.NotificationEvent{
			Origin:  req.Origin,
			ID:      uuid.NewString(),
			User:    req.User,
			Created: time.Now(),
			Payload: req.Payload,
		},
		Recipients: req.Recipients,
	}
	s.bus.Publish(n)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": n.Event.ID})
}

// handleTestNotification sends a test message directly through the
// configured transport, bypassing the bus. This lets operators verify
// transport credentials before relying on notifications.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	to := req.To
	if to == "" {
		to = s.processor.Sender
	}

	err := s.transport.Send(r.Context(), transport.Message{
		From:    s.processor.Sender,
		To:      to,
		Subject: "Test Notification",
		Text:    "Your mail transport configuration is working correctly.",
		HTML:    "<p>Your mail transport configuration is working correctly.</p>",
		ReplyTo: s.processor.ReplyTo,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDeliveries returns recent delivery log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.store.ListDeliveries(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}
	if entries == nil {
		entries = []storage.DeliveryEntry{} // always render a JSON array
	}
	writeJSON(w, http.StatusOK, entries)
}
