package model

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Platform is the client platform a player connected from
type Platform string

const (
	PlatformMobile Platform = "mobile"
	PlatformPC     Platform = "pc"
)

// AdminTag marks a player allowed to use the admin menu
const AdminTag = "admin"

// Player is the host's snapshot of one connected player
type Player struct {
	Name      string   `json:"name"`
	Platform  Platform `json:"platform"`
	Health    float64  `json:"health"`
	MaxHealth float64  `json:"max_health"`
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	IsOp      bool     `json:"is_op"`
	Dimension string   `json:"dimension,omitempty"`
}

// HasTag reports whether the host tagged the player with tag
func (p *Player) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// IsAdmin reports whether the player carries the admin tag
func (p *Player) IsAdmin() bool {
	return p.HasTag(AdminTag)
}

// PresenceSnapshot replaces the whole connected-player set
type PresenceSnapshot struct {
	Players []Player `json:"players"`
}

// PlayerLeftRequest reports a disconnect
type PlayerLeftRequest struct {
	Player string `json:"player"`
}

// SetTitleRequest sets or clears the caller's title
type SetTitleRequest struct {
	Player string `json:"player"`
	Title  string `json:"title"`
}

// ValidateTitle checks a player title. An empty title clears it.
func ValidateTitle(title string) []FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if title != "" && n == 0 {
		return []FieldError{{Field: "title", Message: "title must be at least 1 character"}}
	}
	if n > MaxTitleLength {
		return []FieldError{{Field: "title", Message: fmt.Sprintf("title must be %d characters or less", MaxTitleLength)}}
	}
	return nil
}

// ChatRequest is a chat line the host intercepted before broadcast
type ChatRequest struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

// BlockPos is an integer block coordinate
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// BlockEditRequest asks whether the player may break or place a block
type BlockEditRequest struct {
	Player    string   `json:"player"`
	Action    string   `json:"action"` // break, place
	Dimension string   `json:"dimension"`
	Position  BlockPos `json:"position"`
}

// BlockEditDecision is the answer to a BlockEditRequest
type BlockEditDecision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}
