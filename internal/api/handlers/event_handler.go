package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// EventHandler handles HTTP requests related to the activity feed.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get the user's recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.service.GetRecentEvents(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, r, err, "", "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
