package events_test

import (
	"testing"
	"time"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/events"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := events.NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.MessagePublished(chat.Message{ID: "m1", Content: "hello"})

	select {
	case got := <-ch:
		if got.ID != "m1" {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := events.NewHub()
	ch, cancel := hub.Subscribe()
	cancel()

	// Publishing after cancel must not panic and the channel must be closed.
	hub.MessagePublished(chat.Message{ID: "m2"})

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
}

func TestHubDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := events.NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Overflow the subscriber buffer; publish must drop, not block.
		for i := 0; i < 64; i++ {
			hub.MessagePublished(chat.Message{ID: "m"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
