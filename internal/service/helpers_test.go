package service

import (
	"context"
	"sync"
	"testing"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// ============================================================================
// Recording bridge
// ============================================================================

type sent struct {
	player string
	text   string
}

type recordingBridge struct {
	mu         sync.Mutex
	messages   []sent
	broadcasts []string
	tags       map[string]string
	effects    map[string][]Effect
	gifts      map[string][]Gift
	menus      []sent
	titles     map[string]string
	events     []EventType
	changes    []GuildChange
}

func newRecordingBridge() *recordingBridge {
	return &recordingBridge{
		tags:    map[string]string{},
		effects: map[string][]Effect{},
		gifts:   map[string][]Gift{},
		titles:  map[string]string{},
	}
}

func (b *recordingBridge) SendToPlayer(player, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, sent{player, text})
}

func (b *recordingBridge) Broadcast(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts = append(b.broadcasts, text)
}

func (b *recordingBridge) SetNameTag(player, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags[player] = tag
}

func (b *recordingBridge) ApplyEffect(player string, effect Effect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.effects[player] = append(b.effects[player], effect)
}

func (b *recordingBridge) GiveItem(player string, gift Gift) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gifts[player] = append(b.gifts[player], gift)
}

func (b *recordingBridge) OpenMenu(player, menu string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menus = append(b.menus, sent{player, menu})
}

func (b *recordingBridge) SetTitle(player, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.titles[player] = title
}

func (b *recordingBridge) GuildChanged(eventType EventType, change GuildChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	b.changes = append(b.changes, change)
}

func (b *recordingBridge) messagesTo(player string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.messages {
		if m.player == player {
			out = append(out, m.text)
		}
	}
	return out
}

func (b *recordingBridge) messageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func (b *recordingBridge) eventTypes() []EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EventType{}, b.events...)
}

func (b *recordingBridge) tagOf(player string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tag, ok := b.tags[player]
	return tag, ok
}

// ============================================================================
// Mock store
// ============================================================================

type mockGuildStore struct {
	loadFunc func(ctx context.Context) (model.Registry, error)
	saveFunc func(ctx context.Context, reg model.Registry) error
}

func (m *mockGuildStore) Load(ctx context.Context) (model.Registry, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return model.Registry{}, nil
}

func (m *mockGuildStore) Save(ctx context.Context, reg model.Registry) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, reg)
	}
	return nil
}

func (m *mockGuildStore) Backend() string { return "mock" }

// ============================================================================
// Test environment
// ============================================================================

var enText = locale.MustNew("en")

type testEnv struct {
	store    *repository.RegistryStore
	slot     *repository.MemorySlot
	presence *PresenceService
	bridge   *recordingBridge
	ledger   *repository.MemoryLedger
	tags     *NameTagService
	guilds   *GuildService
}

func newTestEnv(t *testing.T, rules GuildRules, online ...model.Player) *testEnv {
	t.Helper()

	store, slot := repository.NewMemoryRegistryStore()
	bridge := newRecordingBridge()
	presence := NewPresenceService(bridge)
	for _, p := range online {
		if err := presence.Join(p); err != nil {
			t.Fatalf("join %s: %v", p.Name, err)
		}
	}
	ledger := repository.NewMemoryLedger(0)
	tags := NewNameTagService(store, presence, bridge, enText)

	guilds := NewGuildService(GuildServiceConfig{
		Store:     store,
		Directory: presence,
		Bridge:    bridge,
		Ledger:    ledger,
		Tags:      tags,
		Text:      enText,
		Rules:     rules,
	})

	return &testEnv{
		store:    store,
		slot:     slot,
		presence: presence,
		bridge:   bridge,
		ledger:   ledger,
		tags:     tags,
		guilds:   guilds,
	}
}

func (e *testEnv) load(t *testing.T) model.Registry {
	t.Helper()
	reg, err := e.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func newLedgerWith(t *testing.T, balances map[string]int64) *repository.MemoryLedger {
	t.Helper()
	ledger := repository.NewMemoryLedger(0)
	for player, amount := range balances {
		ledger.Set(player, amount)
	}
	return ledger
}
