package handler

import (
	"errors"
	"net/http"

	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// HealthHandler reports whether the registry can be read
type HealthHandler struct {
	store service.GuildStore
	hub   *service.EventHub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store service.GuildStore, hub *service.EventHub) *HealthHandler {
	return &HealthHandler{store: store, hub: hub}
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Registry string `json:"registry"`
	Guilds   int    `json:"guilds"`
	Hosts    int    `json:"hosts"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "ok", Backend: h.store.Backend(), Registry: "ok"}
	if h.hub != nil {
		status.Hosts = h.hub.SubscriberCount(service.TopicHost)
	}

	reg, err := h.store.Load(r.Context())
	switch {
	case errors.Is(err, model.ErrCorruptState):
		status.Status, status.Registry = "degraded", "corrupt"
		WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	case err != nil:
		status.Status, status.Registry = "degraded", "unavailable"
		WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status.Guilds = len(reg)
	WriteJSON(w, http.StatusOK, status)
}
