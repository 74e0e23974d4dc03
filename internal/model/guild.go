package model

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// GuildRecord is the persisted state of one guild. The guild name is the
// registry key and is not repeated inside the record.
type GuildRecord struct {
	Leader       string   `json:"leader"`
	Description  string   `json:"description"`
	Members      []string `json:"members"`
	JoinRequests []string `json:"joinRequests"`
}

// Guild is a GuildRecord paired with its name
type Guild struct {
	Name string `json:"name"`
	GuildRecord
}

// GuildSummary is the public listing view of a guild
type GuildSummary struct {
	Name        string `json:"name"`
	Leader      string `json:"leader"`
	Description string `json:"description"`
	MemberCount int    `json:"member_count"`
}

// Registry maps guild name to its record. It is always loaded and saved whole.
type Registry map[string]*GuildRecord

// Business constraints
const (
	DefaultMaxGuildNameLength        = 24
	DefaultMaxGuildDescriptionLength = 200
	MaxTitleLength                   = 10
)

// HasMember reports whether player is in the member list
func (g *GuildRecord) HasMember(player string) bool {
	return slices.Contains(g.Members, player)
}

// HasRequest reports whether player has a pending join request
func (g *GuildRecord) HasRequest(player string) bool {
	return slices.Contains(g.JoinRequests, player)
}

// IsLeader reports whether player leads the guild
func (g *GuildRecord) IsLeader(player string) bool {
	return g.Leader == player
}

// RemoveMember drops player from the member list, keeping order
func (g *GuildRecord) RemoveMember(player string) bool {
	before := len(g.Members)
	g.Members = slices.DeleteFunc(g.Members, func(m string) bool { return m == player })
	return len(g.Members) != before
}

// RemoveRequest drops player from the join request list, keeping order
func (g *GuildRecord) RemoveRequest(player string) bool {
	before := len(g.JoinRequests)
	g.JoinRequests = slices.DeleteFunc(g.JoinRequests, func(r string) bool { return r == player })
	return len(g.JoinRequests) != before
}

// Clone returns a deep copy of the record
func (g *GuildRecord) Clone() *GuildRecord {
	return &GuildRecord{
		Leader:       g.Leader,
		Description:  g.Description,
		Members:      append([]string{}, g.Members...),
		JoinRequests: append([]string{}, g.JoinRequests...),
	}
}

// Summary builds the listing view for the named record
func (g *GuildRecord) Summary(name string) GuildSummary {
	return GuildSummary{
		Name:        name,
		Leader:      g.Leader,
		Description: g.Description,
		MemberCount: len(g.Members),
	}
}

// Names returns guild names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the registry
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for name, rec := range r {
		out[name] = rec.Clone()
	}
	return out
}

// Summaries lists every guild in name order
func (r Registry) Summaries() []GuildSummary {
	out := make([]GuildSummary, 0, len(r))
	for _, name := range r.Names() {
		out = append(out, r[name].Summary(name))
	}
	return out
}

// ClearRequestsBy removes player's pending requests from every guild and
// returns the names of the guilds that were touched.
func (r Registry) ClearRequestsBy(player string) []string {
	var touched []string
	for _, name := range r.Names() {
		if r[name].RemoveRequest(player) {
			touched = append(touched, name)
		}
	}
	return touched
}

// PendingGuildsOf lists the guilds player has requested to join
func (r Registry) PendingGuildsOf(player string) []string {
	var out []string
	for _, name := range r.Names() {
		if r[name].HasRequest(player) {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks the structural invariants of a registry: every guild has a
// leader who is a member, no player belongs to two guilds, and no guild lists
// one of its own members as a pending requester.
func (r Registry) Validate() error {
	owner := make(map[string]string)
	for _, name := range r.Names() {
		rec := r[name]
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("guild with empty name")
		}
		if rec == nil {
			return fmt.Errorf("guild %q has no record", name)
		}
		if len(rec.Members) == 0 {
			return fmt.Errorf("guild %q has no members", name)
		}
		if !rec.HasMember(rec.Leader) {
			return fmt.Errorf("guild %q leader %q is not a member", name, rec.Leader)
		}
		seen := make(map[string]bool, len(rec.Members))
		for _, m := range rec.Members {
			if m == "" {
				return fmt.Errorf("guild %q has an empty member name", name)
			}
			if seen[m] {
				return fmt.Errorf("guild %q lists member %q twice", name, m)
			}
			seen[m] = true
			if other, ok := owner[m]; ok {
				return fmt.Errorf("player %q is a member of both %q and %q", m, other, name)
			}
			owner[m] = name
		}
		pending := make(map[string]bool, len(rec.JoinRequests))
		for _, req := range rec.JoinRequests {
			if req == "" {
				return fmt.Errorf("guild %q has an empty join request", name)
			}
			if pending[req] {
				return fmt.Errorf("guild %q lists request %q twice", name, req)
			}
			pending[req] = true
			if seen[req] {
				return fmt.Errorf("guild %q has member %q as a pending requester", name, req)
			}
		}
	}
	return nil
}

// CreateGuildRequest represents a request to found a guild
type CreateGuildRequest struct {
	Player      string `json:"player"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateGuildRequest edits the caller's guild. Empty fields are left unchanged.
type UpdateGuildRequest struct {
	Player      string  `json:"player"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PlayerRequest carries only the acting player
type PlayerRequest struct {
	Player string `json:"player"`
}

// Validate validates the create guild request against the given limits
func (r *CreateGuildRequest) Validate(maxName, maxDesc int) []FieldError {
	var errors []FieldError
	if strings.TrimSpace(r.Player) == "" {
		errors = append(errors, FieldError{Field: "player", Message: "player is required"})
	}
	errors = append(errors, ValidateGuildName(r.Name, maxName)...)
	if utf8.RuneCountInString(r.Description) > maxDesc {
		errors = append(errors, FieldError{Field: "description", Message: fmt.Sprintf("description must be %d characters or less", maxDesc)})
	}
	return errors
}

// ValidateGuildName checks a guild name after trimming surrounding space
func ValidateGuildName(name string, maxLen int) []FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return []FieldError{{Field: "name", Message: fmt.Sprintf("name must be %d characters or less", maxLen)}}
	}
	return nil
}

// GuildResult is the outcome of a membership operation. Guild is the caller's
// guild afterwards (nil when it was deleted or left), Removed names a guild
// that no longer exists.
type GuildResult struct {
	Guild   *Guild `json:"guild,omitempty"`
	Removed string `json:"removed,omitempty"`
	Message string `json:"message"`
	Charged int64  `json:"charged,omitempty"`
}

// ChatDecision tells the host what to do with an intercepted chat line
type ChatDecision struct {
	Cancel  bool   `json:"cancel"`
	Menu    string `json:"menu,omitempty"`
	Message string `json:"message,omitempty"`
}
