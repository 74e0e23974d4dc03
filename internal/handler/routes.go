package handler

import (
	"net/http"

	"github.com/forgo/guildhall/internal/middleware"
)

// Handlers bundles every handler the server mounts
type Handlers struct {
	Guilds   *GuildHandler
	Commands *CommandHandler
	Economy  *EconomyHandler
	Host     *HostHandler
	Events   *EventsHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the /v1 API on mux. Every route runs behind api;
// admin routes additionally run behind admin.
func (hs *Handlers) RegisterRoutes(mux *http.ServeMux, api, admin middleware.Middleware) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api(fn))
	}
	adminRoute := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api(admin(fn)))
	}

	if hs.Health != nil {
		mux.HandleFunc("GET /health", hs.Health.Health)
	}

	g := hs.Guilds
	route("GET /v1/guilds", g.List)
	route("POST /v1/guilds", g.Create)
	route("GET /v1/guilds/mine", g.Mine)
	route("PATCH /v1/guilds/mine", g.Update)
	route("DELETE /v1/guilds/mine", g.Disband)
	route("POST /v1/guilds/mine/leave", g.Leave)
	route("GET /v1/guilds/mine/requests", g.Requests)
	route("POST /v1/guilds/mine/requests/{requester}/approve", g.Approve)
	route("POST /v1/guilds/mine/requests/{requester}/reject", g.Reject)
	route("DELETE /v1/guilds/mine/members/{target}", g.Kick)
	route("GET /v1/guilds/{name}", g.Get)
	route("GET /v1/guilds/{name}/members", g.Members)
	route("POST /v1/guilds/{name}/requests", g.RequestJoin)
	route("POST /v1/guilds/{name}/join", g.Join)
	route("GET /v1/players/{player}/guild", g.PlayerGuild)
	adminRoute("DELETE /v1/admin/guilds/{name}", g.AdminDelete)

	c := hs.Commands
	route("POST /v1/commands", c.Dispatch)
	route("POST /v1/chat", c.Chat)
	route("POST /v1/protection/check", c.CheckBlockEdit)

	e := hs.Economy
	route("GET /v1/bank/{player}", e.Balance)
	route("POST /v1/bank/transfer", e.Transfer)
	route("POST /v1/bank/deposit", e.Deposit)
	route("GET /v1/shops", e.ListShops)
	route("GET /v1/shops/{shop}", e.GetShop)
	route("POST /v1/shops/{shop}/purchase", e.Purchase)
	route("GET /v1/buffs", e.ListBuffs)
	route("POST /v1/buffs/{buff}/purchase", e.PurchaseBuff)

	h := hs.Host
	route("GET /v1/host/players", h.ListPlayers)
	route("PUT /v1/host/players", h.ReplacePlayers)
	route("POST /v1/host/players/join", h.PlayerJoined)
	route("POST /v1/host/players/leave", h.PlayerLeft)
	route("POST /v1/host/players/title", h.SetTitle)

	route("GET /v1/host/events", hs.Events.Stream)
	route("GET /v1/host/ws", hs.Events.Socket)
}
