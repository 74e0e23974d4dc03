package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
)

const (
	mobileIcon = "§l§b[Mobile] "
	pcIcon     = "§l§b[PC] "
)

// RenderNameTag builds the four-line tag shown above a player: guild, platform
// and title, name, health. The guild line is left out for unaffiliated players
// and newbie stands in for a missing title.
func RenderNameTag(p model.Player, guild, newbie string) string {
	var b strings.Builder
	if guild != "" {
		b.WriteString("§l§6[" + guild + "]\n")
	}
	if p.Platform == model.PlatformMobile {
		b.WriteString(mobileIcon)
	} else {
		b.WriteString(pcIcon)
	}
	if p.Title != "" {
		b.WriteString("§a§l[" + p.Title + "]")
	} else {
		b.WriteString(newbie + " ")
	}
	b.WriteString("\n" + p.Name + "\n")
	b.WriteString(strconv.FormatFloat(math.Round(p.Health), 'f', -1, 64))
	b.WriteString("/")
	b.WriteString(strconv.FormatFloat(p.MaxHealth, 'f', -1, 64))
	return b.String()
}

// registryLoader is the read half of GuildStore
type registryLoader interface {
	Load(ctx context.Context) (model.Registry, error)
}

// NameTagService pushes name tags to the host, sending only tags that changed
// since the last push.
type NameTagService struct {
	store     registryLoader
	directory Directory
	bridge    Bridge
	text      *locale.Localizer

	mu   sync.Mutex
	last map[string]string
}

// NewNameTagService creates a name tag renderer
func NewNameTagService(store registryLoader, directory Directory, bridge Bridge, text *locale.Localizer) *NameTagService {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &NameTagService{
		store:     store,
		directory: directory,
		bridge:    bridge,
		text:      text,
		last:      make(map[string]string),
	}
}

// Refresh renders tags for the named players, or every connected player when
// none are named, and returns how many tags were pushed. Named players who are
// not connected are skipped.
func (s *NameTagService) Refresh(ctx context.Context, players ...string) (int, error) {
	// load and push under one lock so an older snapshot never lands last
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	index, err := memberIndex(reg)
	if err != nil {
		return 0, err
	}

	var targets []model.Player
	if len(players) == 0 {
		targets = s.directory.ListConnected()
	} else {
		for _, name := range players {
			if p, ok := s.directory.FindConnected(name); ok {
				targets = append(targets, p)
			}
		}
	}

	newbie := s.text.Text(locale.NewbieTitle, nil)

	pushed := 0
	for _, p := range targets {
		tag := RenderNameTag(p, index[p.Name], newbie)
		if s.last[p.Name] == tag {
			continue
		}
		s.last[p.Name] = tag
		s.bridge.SetNameTag(p.Name, tag)
		pushed++
	}
	return pushed, nil
}

// Forget drops the cached tag so the next refresh pushes it again
func (s *NameTagService) Forget(players ...string) {
	s.mu.Lock()
	for _, p := range players {
		delete(s.last, p)
	}
	s.mu.Unlock()
}
