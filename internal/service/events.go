package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	// Player-directed events the host applies in game
	EventPlayerMessage EventType = "player.message"
	EventWorldMessage  EventType = "world.broadcast"
	EventNameTag       EventType = "player.nametag"
	EventEffect        EventType = "player.effect"
	EventGiveItem      EventType = "player.give"
	EventTitle         EventType = "player.title"
	EventMenu          EventType = "player.menu"

	// Guild lifecycle events
	EventGuildCreated EventType = "guild.created"
	EventGuildUpdated EventType = "guild.updated"
	EventGuildDeleted EventType = "guild.deleted"
	EventMemberJoined EventType = "guild.member_joined"
	EventMemberLeft   EventType = "guild.member_left"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// TopicHost is the topic game hosts subscribe to
const TopicHost = "host"

// Event represents a server-sent event
type Event struct {
	ID    string      `json:"id"`
	Type  EventType   `json:"type"`
	Data  interface{} `json:"data"`
	Topic string      `json:"-"` // Used for routing, not sent to client
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	out := "event: " + string(e.Type) + "\n"
	if e.ID != "" {
		out += "id: " + e.ID + "\n"
	}
	return out + "data: " + string(data) + "\n\n"
}

// Subscriber represents a connected host stream
type Subscriber struct {
	ID     string
	Topic  string
	Events chan *Event
	Done   chan struct{}
}

// EventHub manages host subscriptions and event fan-out
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // topic -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return newEventHub(30 * time.Second)
}

func newEventHub(interval time.Duration) *EventHub {
	hub := &EventHub{
		subscribers: make(map[string]map[string]*Subscriber),
		done:        make(chan struct{}),
	}
	hub.heartbeat = time.NewTicker(interval)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for a topic
func (h *EventHub) Subscribe(topic, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Topic:  topic,
		Events: make(chan *Event, 100), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[string]*Subscriber)
	}
	h.subscribers[topic][subscriberID] = sub

	return sub
}

// Unsubscribe removes a subscriber
func (h *EventHub) Unsubscribe(topic, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topicSubs, ok := h.subscribers[topic]; ok {
		if sub, ok := topicSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(topicSubs, subscriberID)
		}
		if len(topicSubs) == 0 {
			delete(h.subscribers, topic)
		}
	}
}

// Publish sends an event to all subscribers of its topic. A subscriber whose
// buffer is full misses the event.
func (h *EventHub) Publish(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	topicSubs, ok := h.subscribers[event.Topic]
	if !ok {
		return
	}

	for _, sub := range topicSubs {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			for topic, topicSubs := range h.subscribers {
				event := &Event{
					Type:  EventHeartbeat,
					Topic: topic,
					Data: map[string]string{
						"timestamp": time.Now().UTC().Format(time.RFC3339),
					},
				}
				for _, sub := range topicSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the event hub and ends every subscription
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()

		for topic, topicSubs := range h.subscribers {
			for _, sub := range topicSubs {
				close(sub.Done)
				close(sub.Events)
			}
			delete(h.subscribers, topic)
		}
	})
}

// SubscriberCount returns the number of subscribers for a topic
func (h *EventHub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if topicSubs, ok := h.subscribers[topic]; ok {
		return len(topicSubs)
	}
	return 0
}

// NewHostEvent creates an event for the game hosts
func NewHostEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:  eventType,
		Topic: TopicHost,
		Data:  data,
	}
}
