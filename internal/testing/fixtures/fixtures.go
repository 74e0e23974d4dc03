package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/forgo/guildhall/internal/model"
)

// ============================================================================
// Registry Fixtures
// ============================================================================

// GuildOpts customizes a guild record
type GuildOpts struct {
	Description string
	Members     []string
	Requests    []string
}

// WithDescription sets the guild description
func WithDescription(d string) func(*GuildOpts) {
	return func(o *GuildOpts) { o.Description = d }
}

// WithMembers adds members after the leader
func WithMembers(names ...string) func(*GuildOpts) {
	return func(o *GuildOpts) { o.Members = append(o.Members, names...) }
}

// WithRequests adds pending join requests
func WithRequests(names ...string) func(*GuildOpts) {
	return func(o *GuildOpts) { o.Requests = append(o.Requests, names...) }
}

// NewRegistry returns an empty registry
func NewRegistry() model.Registry {
	return model.Registry{}
}

// AddGuild puts a guild led by leader into reg and returns its record
func AddGuild(reg model.Registry, name, leader string, opts ...func(*GuildOpts)) *model.GuildRecord {
	o := &GuildOpts{Description: "Test guild description"}
	for _, fn := range opts {
		fn(o)
	}
	rec := &model.GuildRecord{
		Leader:       leader,
		Description:  o.Description,
		Members:      append([]string{leader}, o.Members...),
		JoinRequests: append([]string{}, o.Requests...),
	}
	reg[name] = rec
	return rec
}

// Saver is anything a registry can be seeded into
type Saver interface {
	Save(ctx context.Context, reg model.Registry) error
}

// Seed saves reg into store, failing the test on error
func Seed(t *testing.T, store Saver, reg model.Registry) {
	t.Helper()
	if err := store.Save(context.Background(), reg); err != nil {
		t.Fatalf("fixtures: failed to seed registry: %v", err)
	}
}

// ============================================================================
// Player Fixtures
// ============================================================================

// Player returns a connected PC player at full health
func Player(name string, opts ...func(*model.Player)) model.Player {
	p := model.Player{
		Name:      name,
		Platform:  model.PlatformPC,
		Health:    20,
		MaxHealth: 20,
		Dimension: "minecraft:overworld",
	}
	for _, fn := range opts {
		fn(&p)
	}
	return p
}

// Players returns default players for each name
func Players(names ...string) []model.Player {
	out := make([]model.Player, 0, len(names))
	for _, n := range names {
		out = append(out, Player(n))
	}
	return out
}

// AsAdmin tags the player as an admin
func AsAdmin(p *model.Player) { p.Tags = append(p.Tags, model.AdminTag) }

// AsOp makes the player a server operator
func AsOp(p *model.Player) { p.IsOp = true }

// OnMobile marks the player as connected from a phone
func OnMobile(p *model.Player) { p.Platform = model.PlatformMobile }

// WithTitle sets the player's title
func WithTitle(title string) func(*model.Player) {
	return func(p *model.Player) { p.Title = title }
}

// WithHealth sets current and max health
func WithHealth(hp, maxHP float64) func(*model.Player) {
	return func(p *model.Player) {
		p.Health = hp
		p.MaxHealth = maxHP
	}
}

// RandomName returns prefix_ followed by six hex characters
func RandomName(prefix string) string {
	return prefix + "_" + randomID()
}

func randomID() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
