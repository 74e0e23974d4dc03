package service

import (
	"context"
	"fmt"

	"github.com/forgo/guildhall/internal/model"
)

// GuildStore is the persisted registry. Load and Save always move the whole
// registry.
type GuildStore interface {
	Load(ctx context.Context) (model.Registry, error)
	Save(ctx context.Context, reg model.Registry) error
	Backend() string
}

// guildOf scans every record for player. Finding the player in two guilds
// means the registry is corrupt.
func guildOf(reg model.Registry, player string) (string, bool, error) {
	found := ""
	for _, name := range reg.Names() {
		if !reg[name].HasMember(player) {
			continue
		}
		if found != "" {
			return "", false, fmt.Errorf("%w: %s is a member of both %q and %q", ErrCorruptState, player, found, name)
		}
		found = name
	}
	return found, found != "", nil
}

// memberIndex maps every member to their guild in one pass
func memberIndex(reg model.Registry) (map[string]string, error) {
	index := make(map[string]string)
	for _, name := range reg.Names() {
		for _, m := range reg[name].Members {
			if other, ok := index[m]; ok {
				return nil, fmt.Errorf("%w: %s is a member of both %q and %q", ErrCorruptState, m, other, name)
			}
			index[m] = name
		}
	}
	return index, nil
}

// connectedMembers intersects rec's members with the directory, keeping
// member order
func connectedMembers(rec *model.GuildRecord, dir Directory) []model.Player {
	var out []model.Player
	for _, m := range rec.Members {
		if p, ok := dir.FindConnected(m); ok {
			out = append(out, p)
		}
	}
	return out
}

// leaderGuild returns the guild player leads
func leaderGuild(reg model.Registry, player string) (string, *model.GuildRecord, error) {
	name, ok, err := guildOf(reg, player)
	if err != nil {
		return "", nil, err
	}
	if !ok || !reg[name].IsLeader(player) {
		return "", nil, ErrNotLeader
	}
	return name, reg[name], nil
}
