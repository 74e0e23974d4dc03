// Package model defines domain entities and data structures for Guildhall.
//
// The model package contains the guild registry types, the host's player
// snapshot, request/response types, and error definitions. Models are used
// across all layers of the application.
//
// # Guild Registry
//
// The registry is a map from guild name to GuildRecord, always loaded and
// saved whole:
//
//	type GuildRecord struct {
//	    Leader       string   `json:"leader"`
//	    Description  string   `json:"description"`
//	    Members      []string `json:"members"`
//	    JoinRequests []string `json:"joinRequests"`
//	}
//
// Registry.Validate enforces the structural invariants: the leader is a
// member, no player is in two guilds, and no guild has one of its members as
// a pending requester.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go. ErrCorruptState
// is the sentinel shared by the storage and service layers.
package model
