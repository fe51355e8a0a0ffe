package events

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/cjrutherford/tanuki-orchestrator/internal/service/events"
)

// Handler pushes published chat messages to connected UI clients over a
// websocket.
type Handler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// New creates the events handler.
func New(hub *events.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes mounts the events endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

type outboundEvent struct {
	Event   string `json:"event"`
	Message any    `json:"message"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	messages, cancel := h.hub.Subscribe()
	defer cancel()

	// Drain client frames so close handshakes are noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	log.Printf("[events] client connected from %s", r.RemoteAddr)
	for msg := range messages {
		if err := conn.WriteJSON(outboundEvent{Event: "message.published", Message: msg}); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[events] write failed: %v", err)
			}
			return
		}
	}
}
