// Package fixtures provides test data factories for guild registries and
// connected players.
//
// # Registries
//
// Build a registry with option functions:
//
//	reg := fixtures.NewRegistry()
//	fixtures.AddGuild(reg, "Builders", "alice", fixtures.WithMembers("bob"))
//	fixtures.AddGuild(reg, "Miners", "carol", fixtures.WithRequests("dave"))
//	fixtures.Seed(t, store, reg)
//
// # Players
//
//	admin := fixtures.Player("root", fixtures.AsAdmin)
//	phone := fixtures.Player("erin", fixtures.OnMobile, fixtures.WithTitle("Chef"))
//
// # Random Data
//
// Unique names are generated with RandomName:
//
//	name := fixtures.RandomName("guild") // guild_3fa9c1
package fixtures
