package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgo/guildhall/internal/catalog"
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/middleware"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
	"github.com/forgo/guildhall/internal/service"
)

var enText = locale.MustNew("en")

// testServer is the full handler stack over in-memory backends
type testServer struct {
	mux      *http.ServeMux
	store    *repository.RegistryStore
	slot     *repository.MemorySlot
	ledger   *repository.MemoryLedger
	presence *service.PresenceService
	hub      *service.EventHub
}

func passThrough(next http.Handler) http.Handler { return next }

func newTestServer(t *testing.T, rules service.GuildRules, online ...model.Player) *testServer {
	t.Helper()
	return newTestServerWith(t, middleware.ActingPlayer, passThrough, rules, online...)
}

// newTestServerWith registers the routes behind the given api and admin middleware
func newTestServerWith(t *testing.T, api, admin middleware.Middleware, rules service.GuildRules, online ...model.Player) *testServer {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	store, slot := repository.NewMemoryRegistryStore()
	ledger := repository.NewMemoryLedger(0)
	hub := service.NewEventHub()
	t.Cleanup(hub.Close)
	bridge := service.NewHostBridge(hub)

	presence := service.NewPresenceService(bridge)
	for _, p := range online {
		require.NoError(t, presence.Join(p))
	}
	tags := service.NewNameTagService(store, presence, bridge, enText)
	guilds := service.NewGuildService(service.GuildServiceConfig{
		Store:     store,
		Directory: presence,
		Bridge:    bridge,
		Ledger:    ledger,
		Tags:      tags,
		Text:      enText,
		Rules:     rules,
	})

	hs := &Handlers{
		Guilds: NewGuildHandler(guilds, enText),
		Commands: NewCommandHandler(CommandHandlerConfig{
			Guilds: guilds,
			Chat:   service.NewChatRouter(guilds, presence, bridge, enText, "ㅁ"),
			Protection: service.NewProtectionService(presence, enText, service.Region{
				Min: [3]int{-10, 0, -10}, Max: [3]int{10, 255, 10}, Dimension: "minecraft:overworld",
			}),
			Text: enText,
		}),
		Economy: NewEconomyHandler(EconomyHandlerConfig{
			Bank: service.NewBankService(service.BankServiceConfig{
				Ledger: ledger, Directory: presence, Bridge: bridge, Catalog: cat, Text: enText, TransferMax: 1_000_000,
			}),
			Shops: service.NewShopService(ledger, cat, bridge, enText, nil),
			Buffs: service.NewBuffService(guilds, ledger, cat, bridge, enText, nil),
			Text:  enText,
		}),
		Host:   NewHostHandler(presence, tags, enText),
		Events: NewEventsHandler(hub),
		Health: NewHealthHandler(store, hub),
	}

	mux := http.NewServeMux()
	hs.RegisterRoutes(mux, api, admin)

	return &testServer{mux: mux, store: store, slot: slot, ledger: ledger, presence: presence, hub: hub}
}

// do sends a request as player (empty for no X-Player header)
func (s *testServer) do(t *testing.T, method, path, player, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set(middleware.PlayerHeader, player)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return env.Data
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) model.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var p model.ProblemDetails
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func approvalRules() service.GuildRules {
	return service.GuildRules{RequireApproval: true}
}
