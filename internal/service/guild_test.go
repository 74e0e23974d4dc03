package service

/*
FEATURE: Guild Membership
DOMAIN: Guild registry and membership state machine

ACCEPTANCE CRITERIA:
===================

AC-GUILD-001: Create Guild
  GIVEN an unaffiliated player
  WHEN the player creates a guild with a free name
  THEN the guild exists with the player as leader and only member
  AND the player is told, and their name tag shows the guild

AC-GUILD-002: Guild Names Are Unique
  GIVEN guild "Builders" exists
  WHEN another player creates "Builders"
  THEN fails with Conflict (NameTaken)

AC-GUILD-003: One Guild Per Player
  GIVEN a player leads a guild
  WHEN the player creates a second guild
  THEN fails with Conflict (AlreadyMember) and nothing changes

AC-GUILD-004: Request Lifecycle
  GIVEN a guild and an unaffiliated player
  WHEN the player requests to join twice
  THEN the second request fails with Conflict
  AND after the leader rejects, the player may request again

AC-GUILD-005: Approve Joins And Clears Other Requests
  GIVEN a player with requests pending at two guilds
  WHEN one leader approves
  THEN the player is a member there and has no pending requests anywhere

AC-GUILD-006: Approve Rechecks Affiliation
  GIVEN a requester who has since joined another guild
  WHEN the leader approves
  THEN fails with Conflict and the request stays

AC-GUILD-007: Direct Join Requires Approval Off
  GIVEN the server requires approval
  WHEN a player joins directly
  THEN fails with Forbidden (ApprovalRequired)

AC-GUILD-008: Leader Leaving Deletes Guild
  GIVEN a guild with a leader and members
  WHEN the leader leaves
  THEN the guild no longer exists and every former member is unaffiliated

AC-GUILD-009: Kick Exclusions
  GIVEN a guild
  WHEN the leader kicks themself, a non-member, then a member
  THEN Forbidden, NotFound, then exactly that member is removed

AC-GUILD-010: Rename Is Atomic
  GIVEN guilds "Builders" and "Miners"
  WHEN Builders is renamed to "Miners"
  THEN fails with Conflict and both guilds are unchanged
  AND renaming to the current name writes nothing

AC-GUILD-011: Fees
  GIVEN a create fee
  WHEN a player without enough money creates a guild
  THEN fails with InsufficientFunds and no guild exists
  AND a player with enough money is charged once

AC-GUILD-012: Save Failure Refunds And Stays Silent
  GIVEN a store that cannot save
  WHEN a player pays to create a guild
  THEN the fee is refunded and no message or event is emitted

AC-GUILD-013: Corrupt Registry
  GIVEN the stored registry cannot be decoded
  WHEN any operation runs
  THEN it fails with CorruptState and nothing is written

AC-GUILD-014: Admin Delete
  GIVEN a connected admin
  WHEN the admin deletes a guild they do not belong to
  THEN the guild is gone and its members are told
*/

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/testing/fixtures"
)

func approvalRules() GuildRules {
	return GuildRules{RequireApproval: true}
}

func TestGuild_Create(t *testing.T) {
	// AC-GUILD-001: Create Guild
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob")...)
	ctx := context.Background()

	res, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "  Builders ", Description: "we build"})
	require.NoError(t, err)
	require.NotNil(t, res.Guild)
	assert.Equal(t, "Builders", res.Guild.Name)
	assert.Equal(t, "alice", res.Guild.Leader)
	assert.Equal(t, []string{"alice"}, res.Guild.Members)
	assert.Equal(t, "Created guild Builders. You are the leader.", res.Message)

	reg := env.load(t)
	require.Contains(t, reg, "Builders")
	assert.Equal(t, "we build", reg["Builders"].Description)

	assert.Contains(t, env.bridge.messagesTo("alice"), res.Message)
	assert.Equal(t, []EventType{EventGuildCreated}, env.bridge.eventTypes())

	tag, ok := env.bridge.tagOf("alice")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(tag, "§l§6[Builders]\n"))
}

func TestGuild_CreateNameTaken(t *testing.T) {
	// AC-GUILD-002: Guild Names Are Unique
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	_, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.NoError(t, err)

	_, err = env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "bob", Name: "Builders"})
	require.ErrorIs(t, err, ErrNameTaken)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "alice", env.load(t)["Builders"].Leader)
}

func TestGuild_CreateAlreadyMember(t *testing.T) {
	// AC-GUILD-003: One Guild Per Player
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	_, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.NoError(t, err)
	writes := env.slot.Writes()

	_, err = env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Miners"})
	require.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "You are already in guild Builders. Leave it first.", Describe(enText, err))
	assert.Len(t, env.load(t), 1)
	assert.Equal(t, writes, env.slot.Writes())
}

func TestGuild_CreateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.CreateGuildRequest
	}{
		{"blank name", model.CreateGuildRequest{Player: "alice", Name: "   "}},
		{"name too long", model.CreateGuildRequest{Player: "alice", Name: strings.Repeat("길", model.DefaultMaxGuildNameLength+1)}},
		{"description too long", model.CreateGuildRequest{Player: "alice", Name: "Ok", Description: strings.Repeat("a", model.DefaultMaxGuildDescriptionLength+1)}},
		{"no player", model.CreateGuildRequest{Name: "Ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.guilds.CreateGuild(ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, KindInvalid, KindOf(err))
		})
	}
	assert.Empty(t, env.load(t))
}

func TestGuild_RequestLifecycle(t *testing.T) {
	// AC-GUILD-004: Request Lifecycle
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob")...)
	ctx := context.Background()

	_, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.NoError(t, err)

	_, err = env.guilds.RequestJoin(ctx, "bob", "Builders")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, env.load(t)["Builders"].JoinRequests)
	assert.Contains(t, env.bridge.messagesTo("alice"), "bob asked to join your guild.")

	_, err = env.guilds.RequestJoin(ctx, "bob", "Builders")
	require.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Equal(t, KindConflict, KindOf(err))

	pending, err := env.guilds.PendingRequests(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, pending)

	_, err = env.guilds.Reject(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, env.load(t)["Builders"].JoinRequests)
	assert.Contains(t, env.bridge.messagesTo("bob"), "Your request to join Builders was rejected.")

	_, err = env.guilds.Reject(ctx, "alice", "bob")
	require.ErrorIs(t, err, ErrNoSuchRequest)

	_, err = env.guilds.RequestJoin(ctx, "bob", "Builders")
	require.NoError(t, err)
}

func TestGuild_RequestJoinFailures(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"))
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.RequestJoin(ctx, "carol", "Nowhere")
	require.ErrorIs(t, err, ErrGuildNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = env.guilds.RequestJoin(ctx, "bob", "Builders")
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestGuild_SinglePendingRequest(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, GuildRules{RequireApproval: true, SinglePendingRequest: true})
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice")
	fixtures.AddGuild(reg, "Miners", "carol")
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.RequestJoin(ctx, "bob", "Builders")
	require.NoError(t, err)
	_, err = env.guilds.RequestJoin(ctx, "bob", "Miners")
	require.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Empty(t, env.load(t)["Miners"].JoinRequests)
}

func TestGuild_ApproveClearsOtherRequests(t *testing.T) {
	// AC-GUILD-005: Approve Joins And Clears Other Requests
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob", "carol", "dave")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("dave"), fixtures.WithRequests("bob"))
	fixtures.AddGuild(reg, "Miners", "carol", fixtures.WithRequests("bob"))
	fixtures.Seed(t, env.store, reg)

	res, err := env.guilds.Approve(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "dave", "bob"}, res.Guild.Members)

	after := env.load(t)
	assert.Empty(t, after["Builders"].JoinRequests)
	assert.Empty(t, after["Miners"].JoinRequests)

	name, ok, err := env.guilds.GuildOf(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Builders", name)

	assert.Contains(t, env.bridge.messagesTo("bob"), "Your request to join Builders was approved.")
	assert.Contains(t, env.bridge.messagesTo("dave"), "bob joined the guild.")
	assert.NotContains(t, env.bridge.messagesTo("alice"), "bob joined the guild.")
}

func TestGuild_ApproveFailures(t *testing.T) {
	// AC-GUILD-006: Approve Rechecks Affiliation
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("erin"), fixtures.WithRequests("bob"))
	fixtures.AddGuild(reg, "Miners", "carol", fixtures.WithMembers("bob"))
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.Approve(ctx, "alice", "bob")
	require.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, []string{"bob"}, env.load(t)["Builders"].JoinRequests)

	_, err = env.guilds.Approve(ctx, "erin", "bob")
	require.ErrorIs(t, err, ErrNotLeader)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = env.guilds.Approve(ctx, "zed", "bob")
	require.ErrorIs(t, err, ErrNotLeader)

	_, err = env.guilds.Approve(ctx, "alice", "zed")
	require.ErrorIs(t, err, ErrNoSuchRequest)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGuild_JoinDirect(t *testing.T) {
	// AC-GUILD-007: Direct Join Requires Approval Off
	t.Parallel()
	ctx := context.Background()

	gated := newTestEnv(t, approvalRules())
	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice")
	fixtures.Seed(t, gated.store, reg)

	_, err := gated.guilds.JoinDirect(ctx, "bob", "Builders")
	require.ErrorIs(t, err, ErrApprovalRequired)
	assert.Equal(t, KindForbidden, KindOf(err))

	open := newTestEnv(t, GuildRules{})
	reg = fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice")
	fixtures.AddGuild(reg, "Miners", "carol", fixtures.WithRequests("bob"))
	fixtures.Seed(t, open.store, reg)

	res, err := open.guilds.JoinDirect(ctx, "bob", "Builders")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, res.Guild.Members)
	assert.Empty(t, open.load(t)["Miners"].JoinRequests)

	_, err = open.guilds.JoinDirect(ctx, "bob", "Miners")
	require.ErrorIs(t, err, ErrAlreadyMember)
	_, err = open.guilds.JoinDirect(ctx, "dave", "Nowhere")
	require.ErrorIs(t, err, ErrGuildNotFound)
}

func TestGuild_Leave(t *testing.T) {
	// AC-GUILD-008: Leader Leaving Deletes Guild
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob", "carol")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob", "carol"))
	fixtures.Seed(t, env.store, reg)

	res, err := env.guilds.Leave(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, res.Guild)
	assert.Equal(t, []string{"alice", "bob"}, env.load(t)["Builders"].Members)
	assert.Contains(t, env.bridge.messagesTo("bob"), "carol left the guild.")

	res, err = env.guilds.Leave(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Builders", res.Removed)
	assert.Empty(t, env.load(t))
	assert.Contains(t, env.bridge.messagesTo("bob"), "Guild Builders was disbanded.")

	for _, p := range []string{"alice", "bob", "carol"} {
		_, ok, err := env.guilds.GuildOf(ctx, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}

	_, err = env.guilds.Leave(ctx, "bob")
	require.ErrorIs(t, err, ErrNotInGuild)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGuild_Kick(t *testing.T) {
	// AC-GUILD-009: Kick Exclusions
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob", "carol")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob", "carol"))
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.Kick(ctx, "alice", "alice")
	require.ErrorIs(t, err, ErrCannotKickSelf)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = env.guilds.Kick(ctx, "alice", "zed")
	require.ErrorIs(t, err, ErrNotAMember)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = env.guilds.Kick(ctx, "bob", "carol")
	require.ErrorIs(t, err, ErrNotLeader)

	res, err := env.guilds.Kick(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, res.Guild.Members)
	assert.Contains(t, env.bridge.messagesTo("bob"), "You were removed from Builders.")
	assert.Contains(t, env.bridge.messagesTo("carol"), "bob left the guild.")
}

func TestGuild_Disband(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"))
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.Disband(ctx, "bob")
	require.ErrorIs(t, err, ErrNotLeader)

	res, err := env.guilds.Disband(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Builders", res.Removed)
	assert.Empty(t, env.load(t))
	assert.Contains(t, env.bridge.eventTypes(), EventGuildDeleted)
}

func TestGuild_Rename(t *testing.T) {
	// AC-GUILD-010: Rename Is Atomic
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("alice", "bob")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"), fixtures.WithRequests("dave"))
	fixtures.AddGuild(reg, "Miners", "carol")
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.Rename(ctx, "alice", "Miners")
	require.ErrorIs(t, err, ErrNameTaken)
	after := env.load(t)
	assert.Equal(t, "alice", after["Builders"].Leader)
	assert.Equal(t, "carol", after["Miners"].Leader)

	writes := env.slot.Writes()
	res, err := env.guilds.Rename(ctx, "alice", "Builders")
	require.NoError(t, err)
	assert.Equal(t, "Builders", res.Guild.Name)
	assert.Equal(t, writes, env.slot.Writes())

	res, err = env.guilds.Rename(ctx, "alice", "Crafters")
	require.NoError(t, err)
	assert.Equal(t, "Crafters", res.Guild.Name)

	after = env.load(t)
	assert.NotContains(t, after, "Builders")
	require.Contains(t, after, "Crafters")
	assert.Equal(t, []string{"alice", "bob"}, after["Crafters"].Members)
	assert.Equal(t, []string{"dave"}, after["Crafters"].JoinRequests)
	assert.Contains(t, env.bridge.messagesTo("bob"), "The guild is now called Crafters.")

	tag, ok := env.bridge.tagOf("bob")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(tag, "§l§6[Crafters]"))

	_, err = env.guilds.Rename(ctx, "bob", "Bobs")
	require.ErrorIs(t, err, ErrNotLeader)

	_, err = env.guilds.Rename(ctx, "alice", " ")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestGuild_EditDescription(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"))
	fixtures.Seed(t, env.store, reg)

	res, err := env.guilds.EditDescription(ctx, "alice", "new text")
	require.NoError(t, err)
	assert.Equal(t, "new text", res.Guild.Description)
	assert.Equal(t, "Guild description updated.", res.Message)

	_, err = env.guilds.EditDescription(ctx, "bob", "mine now")
	require.ErrorIs(t, err, ErrNotLeader)

	_, err = env.guilds.EditDescription(ctx, "alice", strings.Repeat("x", model.DefaultMaxGuildDescriptionLength+1))
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.Equal(t, "new text", env.load(t)["Builders"].Description)
}

func TestGuild_UpdateBoth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules())
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice")
	fixtures.Seed(t, env.store, reg)

	name, desc := "Crafters", "we craft"
	res, err := env.guilds.UpdateGuild(ctx, &model.UpdateGuildRequest{Player: "alice", Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Crafters", res.Guild.Name)
	assert.Equal(t, "we craft", res.Guild.Description)

	_, err = env.guilds.UpdateGuild(ctx, &model.UpdateGuildRequest{Player: "alice"})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestGuild_Fees(t *testing.T) {
	// AC-GUILD-011: Fees
	t.Parallel()
	env := newTestEnv(t, GuildRules{CreateFee: 100, JoinFee: 40})
	ctx := context.Background()

	env.ledger.Set("alice", 50)
	_, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, env.load(t))
	bal, _ := env.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(50), bal)

	env.ledger.Set("alice", 150)
	res, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Charged)
	bal, _ = env.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(50), bal)

	env.ledger.Set("bob", 40)
	res, err = env.guilds.JoinDirect(ctx, "bob", "Builders")
	require.NoError(t, err)
	assert.Equal(t, int64(40), res.Charged)
	bal, _ = env.ledger.Balance(ctx, "bob")
	assert.Equal(t, int64(0), bal)

	// Failed preconditions are never charged
	env.ledger.Set("carol", 1000)
	_, err = env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "carol", Name: "Builders"})
	require.ErrorIs(t, err, ErrNameTaken)
	bal, _ = env.ledger.Balance(ctx, "carol")
	assert.Equal(t, int64(1000), bal)
}

func TestGuild_SaveFailureRefunds(t *testing.T) {
	// AC-GUILD-012: Save Failure Refunds And Stays Silent
	t.Parallel()
	ctx := context.Background()

	saveErr := errors.New("disk full")
	bridge := newRecordingBridge()
	presence := NewPresenceService(bridge)
	require.NoError(t, presence.Join(fixtures.Player("alice")))
	ledger := newLedgerWith(t, map[string]int64{"alice": 500})

	svc := NewGuildService(GuildServiceConfig{
		Store:     &mockGuildStore{saveFunc: func(ctx context.Context, reg model.Registry) error { return saveErr }},
		Directory: presence,
		Bridge:    bridge,
		Ledger:    ledger,
		Text:      enText,
		Rules:     GuildRules{CreateFee: 100},
	})

	_, err := svc.CreateGuild(ctx, &model.CreateGuildRequest{Player: "alice", Name: "Builders"})
	require.ErrorIs(t, err, saveErr)
	assert.Equal(t, KindInternal, KindOf(err))

	bal, _ := ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(500), bal)
	assert.Zero(t, bridge.messageCount())
	assert.Empty(t, bridge.eventTypes())
}

func TestGuild_CorruptRegistry(t *testing.T) {
	// AC-GUILD-013: Corrupt Registry
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Player("root", fixtures.AsAdmin))
	ctx := context.Background()

	env.slot.Seed([]byte(`{"version":1,"guilds":{"A":{"leader":"kim","description":"","members":["lee"],"joinRequests":[]}}}`))

	ops := map[string]func() error{
		"create": func() error {
			_, err := env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "bob", Name: "B"})
			return err
		},
		"request": func() error { _, err := env.guilds.RequestJoin(ctx, "bob", "A"); return err },
		"approve": func() error { _, err := env.guilds.Approve(ctx, "kim", "bob"); return err },
		"leave":   func() error { _, err := env.guilds.Leave(ctx, "lee"); return err },
		"rename":  func() error { _, err := env.guilds.Rename(ctx, "kim", "C"); return err },
		"admin":   func() error { _, err := env.guilds.AdminDeleteGuild(ctx, "root", "A"); return err },
		"list":    func() error { _, err := env.guilds.ListGuilds(ctx); return err },
		"guildOf": func() error { _, _, err := env.guilds.GuildOf(ctx, "lee"); return err },
	}
	for name, op := range ops {
		err := op()
		require.ErrorIs(t, err, ErrCorruptState, name)
		assert.Equal(t, KindCorruptState, KindOf(err), name)
	}
	assert.Zero(t, env.slot.Writes())
}

func TestGuild_AdminDelete(t *testing.T) {
	// AC-GUILD-014: Admin Delete
	t.Parallel()
	env := newTestEnv(t, approvalRules(),
		fixtures.Player("root", fixtures.AsAdmin), fixtures.Player("alice"), fixtures.Player("bob"))
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"))
	fixtures.Seed(t, env.store, reg)

	_, err := env.guilds.AdminDeleteGuild(ctx, "alice", "Builders")
	require.ErrorIs(t, err, ErrNotAdmin)

	_, err = env.guilds.AdminDeleteGuild(ctx, "root", "Nowhere")
	require.ErrorIs(t, err, ErrGuildNotFound)

	res, err := env.guilds.AdminDeleteGuild(ctx, "root", "Builders")
	require.NoError(t, err)
	assert.Equal(t, "Builders", res.Removed)
	assert.Empty(t, env.load(t))
	assert.Contains(t, env.bridge.messagesTo("bob"), "An administrator deleted guild Builders.")
}

func TestGuild_MembersOfConnectedOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, approvalRules(), fixtures.Players("carol", "alice")...)
	ctx := context.Background()

	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob", "carol"))
	fixtures.Seed(t, env.store, reg)

	members, err := env.guilds.MembersOf(ctx, "Builders")
	require.NoError(t, err)
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"alice", "carol"}, names)

	padded, err := env.guilds.MembersOf(ctx, "  Builders ")
	require.NoError(t, err)
	assert.Equal(t, members, padded)

	_, err = env.guilds.MembersOf(ctx, "Nowhere")
	require.ErrorIs(t, err, ErrGuildNotFound)

	summaries, err := env.guilds.ListGuilds(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].MemberCount)
}

// TestGuild_RandomOperationsKeepInvariants drives a long random sequence of
// operations and checks the registry after each one.
func TestGuild_RandomOperationsKeepInvariants(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, GuildRules{})
	ctx := context.Background()

	players := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	names := []string{"G0", "G1", "G2", "G3"}
	rng := rand.New(rand.NewSource(42))
	pick := func(s []string) string { return s[rng.Intn(len(s))] }

	for i := 0; i < 600; i++ {
		p, q, g := pick(players), pick(players), pick(names)
		var err error
		switch rng.Intn(9) {
		case 0:
			_, err = env.guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: p, Name: g})
		case 1:
			_, err = env.guilds.RequestJoin(ctx, p, g)
		case 2:
			_, err = env.guilds.Approve(ctx, p, q)
		case 3:
			_, err = env.guilds.Reject(ctx, p, q)
		case 4:
			_, err = env.guilds.JoinDirect(ctx, p, g)
		case 5:
			_, err = env.guilds.Leave(ctx, p)
		case 6:
			_, err = env.guilds.Kick(ctx, p, q)
		case 7:
			_, err = env.guilds.Rename(ctx, p, g)
		case 8:
			_, err = env.guilds.Disband(ctx, p)
		}
		if err != nil {
			kind := KindOf(err)
			require.NotEqual(t, KindInternal, kind, "step %d: %v", i, err)
			require.NotEqual(t, KindCorruptState, kind, "step %d: %v", i, err)
		}
		require.NoError(t, env.load(t).Validate(), "step %d", i)
	}
}
