package events

import (
	"log"
	"sync"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
)

const subscriberBuffer = 16

// Hub fans published chat messages out to in-process subscribers (the
// websocket handler). Slow subscribers drop events rather than block the
// orchestrator.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan chat.Message]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan chat.Message]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan chat.Message, func()) {
	ch := make(chan chat.Message, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// MessagePublished delivers the message to every subscriber without blocking.
func (h *Hub) MessagePublished(msg chat.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			log.Printf("[events] dropping event for slow subscriber conversation=%s", msg.ConversationID)
		}
	}
}
