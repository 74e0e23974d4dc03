package handler

import (
	"context"
	"net/http"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// GuildHandler handles guild HTTP requests
type GuildHandler struct {
	svc  *service.GuildService
	text *locale.Localizer
}

// NewGuildHandler creates a new guild handler
func NewGuildHandler(svc *service.GuildService, text *locale.Localizer) *GuildHandler {
	return &GuildHandler{svc: svc, text: text}
}

// PlayerGuild is the answer to "which guild is this player in"
type PlayerGuild struct {
	Player  string `json:"player"`
	Guild   string `json:"guild,omitempty"`
	InGuild bool   `json:"in_guild"`
}

// List handles GET /v1/guilds
func (h *GuildHandler) List(w http.ResponseWriter, r *http.Request) {
	guilds, err := h.svc.ListGuilds(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteCollection(w, http.StatusOK, guilds, len(guilds), nil)
}

// Get handles GET /v1/guilds/{name}
func (h *GuildHandler) Get(w http.ResponseWriter, r *http.Request) {
	guild, err := h.svc.GetGuild(r.Context(), r.PathValue("name"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, guild, nil)
}

// Mine handles GET /v1/guilds/mine
func (h *GuildHandler) Mine(w http.ResponseWriter, r *http.Request) {
	player := actingPlayer(r, "")
	if player == "" {
		writePlayerRequired(w)
		return
	}
	guild, err := h.svc.MyGuild(r.Context(), player)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, guild, nil)
}

// Members handles GET /v1/guilds/{name}/members and lists connected members
func (h *GuildHandler) Members(w http.ResponseWriter, r *http.Request) {
	players, err := h.svc.MembersOf(r.Context(), r.PathValue("name"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteCollection(w, http.StatusOK, players, len(players), nil)
}

// PlayerGuild handles GET /v1/players/{player}/guild
func (h *GuildHandler) PlayerGuild(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	name, ok, err := h.svc.GuildOf(r.Context(), player)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, PlayerGuild{Player: player, Guild: name, InGuild: ok}, nil)
}

// Create handles POST /v1/guilds
func (h *GuildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGuildRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)

	res, err := h.svc.CreateGuild(r.Context(), &req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, res, map[string]string{"self": "/v1/guilds/" + res.Guild.Name})
}

// Update handles PATCH /v1/guilds/mine
func (h *GuildHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateGuildRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)

	res, err := h.svc.UpdateGuild(r.Context(), &req)
	h.writeResult(w, res, err)
}

// Disband handles DELETE /v1/guilds/mine
func (h *GuildHandler) Disband(w http.ResponseWriter, r *http.Request) {
	h.asPlayer(w, r, h.svc.Disband)
}

// Leave handles POST /v1/guilds/mine/leave
func (h *GuildHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.asPlayer(w, r, h.svc.Leave)
}

// RequestJoin handles POST /v1/guilds/{name}/requests
func (h *GuildHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.asPlayer(w, r, func(ctx context.Context, player string) (*model.GuildResult, error) {
		return h.svc.RequestJoin(ctx, player, name)
	})
}

// Join handles POST /v1/guilds/{name}/join for servers without approval
func (h *GuildHandler) Join(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.asPlayer(w, r, func(ctx context.Context, player string) (*model.GuildResult, error) {
		return h.svc.JoinDirect(ctx, player, name)
	})
}

// Requests handles GET /v1/guilds/mine/requests
func (h *GuildHandler) Requests(w http.ResponseWriter, r *http.Request) {
	leader := actingPlayer(r, "")
	if leader == "" {
		writePlayerRequired(w)
		return
	}
	pending, err := h.svc.PendingRequests(r.Context(), leader)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteCollection(w, http.StatusOK, pending, len(pending), nil)
}

// Approve handles POST /v1/guilds/mine/requests/{requester}/approve
func (h *GuildHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requester := r.PathValue("requester")
	h.asPlayer(w, r, func(ctx context.Context, leader string) (*model.GuildResult, error) {
		return h.svc.Approve(ctx, leader, requester)
	})
}

// Reject handles POST /v1/guilds/mine/requests/{requester}/reject
func (h *GuildHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requester := r.PathValue("requester")
	h.asPlayer(w, r, func(ctx context.Context, leader string) (*model.GuildResult, error) {
		return h.svc.Reject(ctx, leader, requester)
	})
}

// Kick handles DELETE /v1/guilds/mine/members/{target}
func (h *GuildHandler) Kick(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("target")
	h.asPlayer(w, r, func(ctx context.Context, leader string) (*model.GuildResult, error) {
		return h.svc.Kick(ctx, leader, target)
	})
}

// AdminDelete handles DELETE /v1/admin/guilds/{name}
func (h *GuildHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.asPlayer(w, r, func(ctx context.Context, admin string) (*model.GuildResult, error) {
		return h.svc.AdminDeleteGuild(ctx, admin, name)
	})
}

// asPlayer runs op for the acting player named in an optional body
func (h *GuildHandler) asPlayer(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, player string) (*model.GuildResult, error)) {
	var req model.PlayerRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	player := actingPlayer(r, req.Player)
	if player == "" {
		writePlayerRequired(w)
		return
	}
	res, err := op(r.Context(), player)
	h.writeResult(w, res, err)
}

func (h *GuildHandler) writeResult(w http.ResponseWriter, res *model.GuildResult, err error) {
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

func (h *GuildHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(h.text, err))
}
