package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	eventsHandler "github.com/cjrutherford/tanuki-orchestrator/internal/handler/events"
	"github.com/cjrutherford/tanuki-orchestrator/internal/handler/orchestration"
	middlewarePkg "github.com/cjrutherford/tanuki-orchestrator/internal/middleware"
	eventsService "github.com/cjrutherford/tanuki-orchestrator/internal/service/events"
	"github.com/cjrutherford/tanuki-orchestrator/pkg/utils"
)

// NewRouter wires HTTP routes to the orchestration service.
func NewRouter(svc orchestration.Service, hub *eventsService.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	orchestrationHandler := orchestration.New(svc)
	eventsHdl := eventsHandler.New(hub)

	r.Route("/api", func(api chi.Router) {
		orchestrationHandler.RegisterRoutes(api)
		eventsHdl.RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
