package service

// Bridge is everything the services ask the game host to do. Calls are fire
// and forget; the host applies them when it reads its event stream.
type Bridge interface {
	SendToPlayer(player, text string)
	Broadcast(text string)
	SetNameTag(player, tag string)
	ApplyEffect(player string, effect Effect)
	GiveItem(player string, gift Gift)
	OpenMenu(player, menu string)
	SetTitle(player, title string)
	GuildChanged(eventType EventType, change GuildChange)
}

// Effect is a status effect applied to one player
type Effect struct {
	Effect          string `json:"effect"`
	Amplifier       int    `json:"amplifier"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Gift is an item stack handed to a player
type Gift struct {
	Item  string `json:"item"`
	Data  int    `json:"data,omitempty"`
	Count int    `json:"count"`
}

// GuildChange describes a guild lifecycle event
type GuildChange struct {
	Guild    string   `json:"guild"`
	Previous string   `json:"previous,omitempty"`
	Player   string   `json:"player,omitempty"`
	Members  []string `json:"members,omitempty"`
}

// Menus the host knows how to open
const (
	MenuGuild  = "guild"
	MenuLeader = "leader"
	MenuAdmin  = "admin"
)

type playerMessage struct {
	Player string `json:"player"`
	Text   string `json:"text"`
}

type worldMessage struct {
	Text string `json:"text"`
}

type nameTag struct {
	Player string `json:"player"`
	Tag    string `json:"tag"`
}

type playerEffect struct {
	Player string `json:"player"`
	Effect
}

type playerGift struct {
	Player string `json:"player"`
	Gift
}

type playerMenu struct {
	Player string `json:"player"`
	Menu   string `json:"menu"`
}

type playerTitle struct {
	Player string `json:"player"`
	Title  string `json:"title"`
}

// HostBridge publishes bridge calls to the host topic of an EventHub
type HostBridge struct {
	hub *EventHub
}

// NewHostBridge creates a bridge over hub
func NewHostBridge(hub *EventHub) *HostBridge {
	return &HostBridge{hub: hub}
}

func (b *HostBridge) SendToPlayer(player, text string) {
	if text == "" {
		return
	}
	b.hub.Publish(NewHostEvent(EventPlayerMessage, playerMessage{Player: player, Text: text}))
}

func (b *HostBridge) Broadcast(text string) {
	b.hub.Publish(NewHostEvent(EventWorldMessage, worldMessage{Text: text}))
}

func (b *HostBridge) SetNameTag(player, tag string) {
	b.hub.Publish(NewHostEvent(EventNameTag, nameTag{Player: player, Tag: tag}))
}

func (b *HostBridge) ApplyEffect(player string, effect Effect) {
	b.hub.Publish(NewHostEvent(EventEffect, playerEffect{Player: player, Effect: effect}))
}

func (b *HostBridge) GiveItem(player string, gift Gift) {
	b.hub.Publish(NewHostEvent(EventGiveItem, playerGift{Player: player, Gift: gift}))
}

func (b *HostBridge) OpenMenu(player, menu string) {
	b.hub.Publish(NewHostEvent(EventMenu, playerMenu{Player: player, Menu: menu}))
}

func (b *HostBridge) SetTitle(player, title string) {
	b.hub.Publish(NewHostEvent(EventTitle, playerTitle{Player: player, Title: title}))
}

func (b *HostBridge) GuildChanged(eventType EventType, change GuildChange) {
	b.hub.Publish(NewHostEvent(eventType, change))
}

// NopBridge drops every call
type NopBridge struct{}

func (NopBridge) SendToPlayer(string, string) {}
func (NopBridge) Broadcast(string) {}
func (NopBridge) SetNameTag(string, string) {}
func (NopBridge) ApplyEffect(string, Effect) {}
func (NopBridge) GiveItem(string, Gift) {}
func (NopBridge) OpenMenu(string, string) {}
func (NopBridge) SetTitle(string, string) {}
func (NopBridge) GuildChanged(EventType, GuildChange) {}
