package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/forgo/guildhall/internal/model"
)

// Directory answers who is connected right now
type Directory interface {
	ListConnected() []model.Player
	FindConnected(name string) (model.Player, bool)
}

// PresenceService keeps the connected-player snapshot the host pushes
type PresenceService struct {
	mu      sync.RWMutex
	players map[string]model.Player
	bridge  Bridge
}

// NewPresenceService creates an empty directory
func NewPresenceService(bridge Bridge) *PresenceService {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &PresenceService{players: make(map[string]model.Player), bridge: bridge}
}

// ReplaceAll swaps in a full snapshot and returns the names that went away
func (s *PresenceService) ReplaceAll(players []model.Player) ([]string, error) {
	next := make(map[string]model.Player, len(players))
	for _, p := range players {
		if errs := validatePlayer(p); len(errs) > 0 {
			return nil, model.NewValidationError(errs)
		}
		next[p.Name] = p
	}

	s.mu.Lock()
	var gone []string
	for name := range s.players {
		if _, ok := next[name]; !ok {
			gone = append(gone, name)
		}
	}
	s.players = next
	s.mu.Unlock()

	sort.Strings(gone)
	return gone, nil
}

// Join adds or replaces one player
func (s *PresenceService) Join(p model.Player) error {
	if errs := validatePlayer(p); len(errs) > 0 {
		return model.NewValidationError(errs)
	}
	s.mu.Lock()
	s.players[p.Name] = p
	s.mu.Unlock()
	return nil
}

// Leave removes a player and reports whether they were connected
func (s *PresenceService) Leave(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[name]; !ok {
		return false
	}
	delete(s.players, name)
	return true
}

// ListConnected returns every connected player sorted by name
func (s *PresenceService) ListConnected() []model.Player {
	s.mu.RLock()
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindConnected looks up a connected player by exact name
func (s *PresenceService) FindConnected(name string) (model.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[name]
	return p, ok
}

// SetTitle sets or clears a connected player's title and tells the host to
// store it.
func (s *PresenceService) SetTitle(req model.SetTitleRequest) (model.Player, error) {
	if errs := model.ValidateTitle(req.Title); len(errs) > 0 {
		return model.Player{}, model.NewValidationError(errs)
	}
	title := strings.TrimSpace(req.Title)

	s.mu.Lock()
	p, ok := s.players[req.Player]
	if ok {
		p.Title = title
		s.players[req.Player] = p
	}
	s.mu.Unlock()

	if !ok {
		return model.Player{}, model.NewNotFoundError("player")
	}
	s.bridge.SetTitle(p.Name, title)
	return p, nil
}

func validatePlayer(p model.Player) []model.FieldError {
	var errs []model.FieldError
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "name is required"})
	}
	if p.MaxHealth < 0 || p.Health < 0 {
		errs = append(errs, model.FieldError{Field: "health", Message: "health must not be negative"})
	}
	return errs
}
