package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

const (
	wsWriteWait = 5 * time.Second
	wsReadWait  = 90 * time.Second
)

// EventsHandler streams host-directed events over SSE or a WebSocket
type EventsHandler struct {
	eventHub *service.EventHub
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventHub *service.EventHub) *EventsHandler {
	return &EventsHandler{
		eventHub: eventHub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			// hosts are not browsers; auth already ran
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream handles GET /v1/host/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// the stream has no end, so the server's WriteTimeout must not apply
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		slog.Warn("event stream keeps server write deadline", slog.String("error", err.Error()))
	}

	subscriberID := uuid.New().String()
	sub := h.eventHub.Subscribe(service.TopicHost, subscriberID)
	defer h.eventHub.Unsubscribe(service.TopicHost, subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

// Socket handles GET /v1/host/ws. Each event is one JSON text frame; frames
// the host sends are read only to notice when it goes away.
func (h *EventsHandler) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	subscriberID := uuid.New().String()
	sub := h.eventHub.Subscribe(service.TopicHost, subscriberID)
	defer h.eventHub.Unsubscribe(service.TopicHost, subscriberID)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		}
	}()

	send := func(v interface{}) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v) == nil
	}

	if !send(&service.Event{Type: "connected", Data: map[string]string{"subscriber_id": subscriberID}}) {
		return
	}

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			if !send(event) {
				return
			}
			if event.Type == service.EventHeartbeat {
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
			}

		case <-sub.Done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return

		case <-closed:
			return

		case <-r.Context().Done():
			return
		}
	}
}
