package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// HostHandler receives presence updates from the game host
type HostHandler struct {
	presence *service.PresenceService
	tags     *service.NameTagService
	text     *locale.Localizer
}

// NewHostHandler creates a new host handler
func NewHostHandler(presence *service.PresenceService, tags *service.NameTagService, text *locale.Localizer) *HostHandler {
	return &HostHandler{presence: presence, tags: tags, text: text}
}

// PresenceResult reports the directory after an update
type PresenceResult struct {
	Connected int      `json:"connected"`
	Gone      []string `json:"gone,omitempty"`
	Tagged    int      `json:"tagged"`
}

// ListPlayers handles GET /v1/host/players
func (h *HostHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.presence.ListConnected()
	WriteCollection(w, http.StatusOK, players, len(players), nil)
}

// ReplacePlayers handles PUT /v1/host/players with a full snapshot
func (h *HostHandler) ReplacePlayers(w http.ResponseWriter, r *http.Request) {
	var snap model.PresenceSnapshot
	if err := DecodeJSON(r, &snap); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	gone, err := h.presence.ReplaceAll(snap.Players)
	if err != nil {
		WriteError(w, MapServiceError(h.text, err))
		return
	}
	h.tags.Forget(gone...)

	WriteData(w, http.StatusOK, PresenceResult{
		Connected: len(snap.Players),
		Gone:      gone,
		Tagged:    h.refresh(r.Context()),
	}, nil)
}

// PlayerJoined handles POST /v1/host/players/join
func (h *HostHandler) PlayerJoined(w http.ResponseWriter, r *http.Request) {
	var p model.Player
	if err := DecodeJSON(r, &p); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.presence.Join(p); err != nil {
		WriteError(w, MapServiceError(h.text, err))
		return
	}
	h.tags.Forget(p.Name)

	WriteData(w, http.StatusOK, PresenceResult{
		Connected: len(h.presence.ListConnected()),
		Tagged:    h.refresh(r.Context(), p.Name),
	}, nil)
}

// PlayerLeft handles POST /v1/host/players/leave
func (h *HostHandler) PlayerLeft(w http.ResponseWriter, r *http.Request) {
	var req model.PlayerLeftRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)
	if req.Player == "" {
		writePlayerRequired(w)
		return
	}

	var gone []string
	if h.presence.Leave(req.Player) {
		gone = []string{req.Player}
	}
	h.tags.Forget(req.Player)
	WriteData(w, http.StatusOK, PresenceResult{Connected: len(h.presence.ListConnected()), Gone: gone}, nil)
}

// SetTitle handles POST /v1/host/players/title
func (h *HostHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req model.SetTitleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)
	if req.Player == "" {
		writePlayerRequired(w)
		return
	}

	p, err := h.presence.SetTitle(req)
	if err != nil {
		WriteError(w, MapServiceError(h.text, err))
		return
	}
	h.refresh(r.Context(), p.Name)
	WriteData(w, http.StatusOK, p, nil)
}

// refresh re-renders name tags. Failures are logged, never returned.
func (h *HostHandler) refresh(ctx context.Context, players ...string) int {
	n, err := h.tags.Refresh(ctx, players...)
	if err != nil {
		slog.Warn("name tag refresh failed", slog.String("error", err.Error()))
	}
	return n
}
