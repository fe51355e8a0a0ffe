package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/orchestrator"
)

type stubService struct {
	welcomeErr error
	advanceErr error
	messages   []chat.Message

	welcomedProfile string
}

func (s *stubService) ProfileWelcome(_ context.Context, profileID string) error {
	s.welcomedProfile = profileID
	return s.welcomeErr
}

func (s *stubService) ConversationAdvance(_ context.Context, _ chat.Conversation, _ []persona.Persona) ([]chat.Message, error) {
	return s.messages, s.advanceErr
}

func setupRouter(svc *stubService) *chi.Mux {
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
}

func TestWelcomeEchoesProfileID(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	payload, _ := json.Marshal(map[string]string{"profileId": "p1"})
	req := httptest.NewRequest(http.MethodPost, "/orchestration/welcome", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	if svc.welcomedProfile != "p1" {
		t.Fatalf("service not invoked with profile id, got %q", svc.welcomedProfile)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["profileId"] != "p1" {
		t.Fatalf("response must echo the trigger, got %v", body)
	}
}

func TestWelcomeMissingProfileID(t *testing.T) {
	r := setupRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/orchestration/welcome", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAdvanceReturnsMessages(t *testing.T) {
	svc := &stubService{messages: []chat.Message{{ID: "m1"}, {ID: "m2"}}}
	r := setupRouter(svc)

	payload, _ := json.Marshal(map[string]any{
		"conversation": chat.Conversation{ID: "conv-1"},
		"personas":     []persona.Persona{{ID: "persona-a"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/orchestration/advance", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var messages []chat.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: conversation id is required", orchestrator.ErrValidation), http.StatusUnprocessableEntity},
		{"persona", fmt.Errorf("%w: gone", orchestrator.ErrPersonaNotFound), http.StatusNotFound},
		{"profile", fmt.Errorf("%w: gone", orchestrator.ErrProfileNotFound), http.StatusNotFound},
		{"gateway", fmt.Errorf("%w: boom", orchestrator.ErrGateway), http.StatusBadGateway},
		{"timeout", fmt.Errorf("%w: slow", orchestrator.ErrGatewayTimeout), http.StatusGatewayTimeout},
		{"publish", fmt.Errorf("%w: rejected", orchestrator.ErrPublish), http.StatusBadGateway},
		{"unknown", fmt.Errorf("%w: surprise", orchestrator.ErrOrchestration), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(&stubService{advanceErr: tc.err})

			payload, _ := json.Marshal(map[string]any{"conversation": chat.Conversation{ID: "conv-1"}})
			req := httptest.NewRequest(http.MethodPost, "/orchestration/advance", bytes.NewReader(payload))
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}
