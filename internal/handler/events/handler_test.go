package events_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	eventsHandler "github.com/cjrutherford/tanuki-orchestrator/internal/handler/events"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/events"
)

func TestEventsEndpointPushesPublishedMessages(t *testing.T) {
	hub := events.NewHub()
	r := chi.NewRouter()
	eventsHandler.New(hub).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the subscription.
	time.Sleep(50 * time.Millisecond)
	hub.MessagePublished(chat.Message{ID: "m1", Content: "hello", Type: chat.TypeChat})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Event   string       `json:"event"`
		Message chat.Message `json:"message"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Event != "message.published" || event.Message.ID != "m1" {
		t.Fatalf("unexpected event: %+v", event)
	}
}
