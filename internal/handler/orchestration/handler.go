package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/orchestrator"
	"github.com/cjrutherford/tanuki-orchestrator/pkg/utils"
)

// Service is the orchestration boundary the HTTP layer drives.
type Service interface {
	ProfileWelcome(ctx context.Context, profileID string) error
	ConversationAdvance(ctx context.Context, conv chat.Conversation, personas []persona.Persona) ([]chat.Message, error)
}

// Handler exposes the two orchestration workflows over HTTP.
type Handler struct {
	svc Service
}

// New creates the orchestration handler.
func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the orchestration endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/orchestration/welcome", h.handleWelcome)
	r.Post("/orchestration/advance", h.handleAdvance)
}

func (h *Handler) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProfileID string `json:"profileId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ProfileID == "" {
		utils.RespondError(w, http.StatusBadRequest, "profileId is required")
		return
	}

	if err := h.svc.ProfileWelcome(r.Context(), payload.ProfileID); err != nil {
		respondOrchestrationError(w, err)
		return
	}

	// The generated message is published, not returned; echo the trigger.
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"profileId": payload.ProfileID})
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Conversation chat.Conversation `json:"conversation"`
		Personas     []persona.Persona `json:"personas"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages, err := h.svc.ConversationAdvance(r.Context(), payload.Conversation, payload.Personas)
	if err != nil {
		respondOrchestrationError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func respondOrchestrationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orchestrator.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, orchestrator.ErrPersonaNotFound), errors.Is(err, orchestrator.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orchestrator.ErrGatewayTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, orchestrator.ErrGateway), errors.Is(err, orchestrator.ErrPublish):
		status = http.StatusBadGateway
	}
	utils.RespondError(w, status, err.Error())
}
