package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
)

// GuildLookup is the read side of the guild service other services use
type GuildLookup interface {
	GuildOf(ctx context.Context, player string) (string, bool, error)
	GetGuild(ctx context.Context, name string) (*model.Guild, error)
	MembersOf(ctx context.Context, name string) ([]model.Player, error)
}

// chat commands that open a host menu
var menuCommands = map[string]string{
	"!길드":   MenuGuild,
	"!guild": MenuGuild,
	"!길드장":  MenuLeader,
	"!leader": MenuLeader,
	"!관리자":  MenuAdmin,
	"!admin": MenuAdmin,
}

// ChatRouter decides what happens to a chat line before the host shows it
type ChatRouter struct {
	guilds    GuildLookup
	directory Directory
	bridge    Bridge
	text      *locale.Localizer
	prefix    string
}

// NewChatRouter creates a router. Lines starting with prefix go to guild chat.
func NewChatRouter(guilds GuildLookup, directory Directory, bridge Bridge, text *locale.Localizer, prefix string) *ChatRouter {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &ChatRouter{guilds: guilds, directory: directory, bridge: bridge, text: text, prefix: prefix}
}

// Route handles one chat line. Menu commands and guild chat are always
// cancelled; a guild member's public chat is re-broadcast with the guild tag
// and the original cancelled; everything else passes through untouched.
func (r *ChatRouter) Route(ctx context.Context, req model.ChatRequest) (*model.ChatDecision, error) {
	if err := requireFields(field{"player", req.Player}); err != nil {
		return nil, err
	}
	line := strings.TrimSpace(req.Message)

	if menu, ok := menuCommands[line]; ok {
		return r.openMenu(req.Player, menu), nil
	}

	guild, inGuild, err := r.guilds.GuildOf(ctx, req.Player)
	if err != nil {
		// Chat keeps working while the registry is unreadable
		slog.Warn("chat guild lookup failed",
			slog.String("player", req.Player),
			slog.String("error", err.Error()),
		)
		return &model.ChatDecision{}, nil
	}

	if r.prefix != "" && strings.HasPrefix(line, r.prefix) {
		return r.guildChat(ctx, req.Player, guild, inGuild, strings.TrimSpace(strings.TrimPrefix(line, r.prefix)))
	}

	if !inGuild {
		return &model.ChatDecision{}, nil
	}
	r.bridge.Broadcast("§8[§6" + guild + "§8] §f" + req.Player + ": " + req.Message)
	return &model.ChatDecision{Cancel: true}, nil
}

func (r *ChatRouter) openMenu(player, menu string) *model.ChatDecision {
	if menu == MenuAdmin {
		p, ok := r.directory.FindConnected(player)
		if !ok || !p.IsAdmin() {
			msg := r.text.Text(locale.ErrNotAdmin, nil)
			r.bridge.SendToPlayer(player, msg)
			return &model.ChatDecision{Cancel: true, Message: msg}
		}
	}
	r.bridge.OpenMenu(player, menu)
	return &model.ChatDecision{Cancel: true, Menu: menu}
}

func (r *ChatRouter) guildChat(ctx context.Context, player, guild string, inGuild bool, body string) (*model.ChatDecision, error) {
	if !inGuild {
		msg := r.text.Text(locale.ErrNoGuildChat, nil)
		r.bridge.SendToPlayer(player, msg)
		return &model.ChatDecision{Cancel: true, Message: msg}, nil
	}
	if body == "" {
		return &model.ChatDecision{Cancel: true}, nil
	}

	members, err := r.guilds.MembersOf(ctx, guild)
	if err != nil {
		return nil, err
	}
	line := "§8[§6" + guild + "§8] §a" + r.text.Text(locale.GuildChatTag, nil) + " §f" + player + ": " + body
	for _, m := range members {
		r.bridge.SendToPlayer(m.Name, line)
	}
	return &model.ChatDecision{Cancel: true}, nil
}
