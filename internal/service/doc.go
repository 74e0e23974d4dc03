// Package service implements the guild membership state machine and the
// player economy around it.
//
// # Service Pattern
//
// Services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct or its dependencies
//   - Methods validate input, then run one operation against the store or ledger
//   - Errors are package-level sentinels, classified with KindOf
//   - Player-facing text goes out through a Bridge only after the operation succeeded
//
// # Membership
//
// GuildService serializes every mutation behind one mutex and, for shared
// backends, a repository.Locker. Each operation loads the whole registry,
// checks its preconditions against a copy, mutates the copy and saves it.
// A failed precondition or save leaves the stored registry untouched.
//
//	guilds := NewGuildService(GuildServiceConfig{
//	    Store:     store,
//	    Directory: presence,
//	    Bridge:    NewHostBridge(hub),
//	    Ledger:    ledger,
//	    Text:      text,
//	    Rules:     GuildRules{RequireApproval: true, CreateFee: 100000},
//	})
//	res, err := guilds.CreateGuild(ctx, &model.CreateGuildRequest{Player: "Steve", Name: "Builders"})
//	if errors.Is(err, ErrNameTaken) {
//	    // tell the player
//	}
//
// # Host bridge
//
// The game host subscribes to the EventHub topic TopicHost and applies
// messages, name tags, effects and item gifts it receives. PresenceService
// keeps the connected-player snapshot the host pushes and is the Directory
// the other services read.
package service
